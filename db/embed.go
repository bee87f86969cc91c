// Package db holds the embedded schema applied at startup.
package db

import _ "embed"

// Schema contains the DDL for the products, orders, order_items, and
// sessions tables.
//
//go:embed migrations/001_schema.sql
var Schema string
