// Package storefront is the Go client for the patisserie API. It mirrors the
// HTTP surface: catalog browsing is anonymous, order operations attach the
// session token.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/endulzarte/patisserie-api/pkg/cart"
)

// Product is a catalog entry as served by the API.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
}

// OrderLine is one line of an order request or response.
type OrderLine struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price,omitempty"`
}

// Order is a placed order as returned by the API.
type Order struct {
	ID        int64           `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []OrderLine     `json:"items"`
}

// APIError is a non-2xx response decoded from the API's error envelope.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionToken sets the session token sent as a Bearer credential on
// order operations.
func WithSessionToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client talks to one patisserie API deployment. It is safe for concurrent
// use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client for the API at baseURL, e.g.
// "https://shop.example.com".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single catalog entry by id.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.get(ctx, "/api/products/"+strconv.FormatInt(id, 10), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProducts fetches catalog entries matching the query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	var products []Product
	path := "/api/products/search?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateOrder places an order for the given lines. Requires a session token.
func (c *Client) CreateOrder(ctx context.Context, lines []OrderLine) (*Order, error) {
	body, err := json.Marshal(struct {
		Items []OrderLine `json:"items"`
	}{Items: lines})
	if err != nil {
		return nil, errors.Wrap(err, "encode order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	var order Order
	if err := c.do(req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders fetches the authenticated user's order history, oldest first.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.get(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder submits cart items as an order, satisfying cart.OrderPlacer so a
// cart can check out straight through the client.
func (c *Client) PlaceOrder(ctx context.Context, items []cart.Item) error {
	lines := make([]OrderLine, len(items))
	for i, item := range items {
		lines[i] = OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	_, err := c.CreateOrder(ctx, lines)
	return err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	return errors.Wrap(json.Unmarshal(body, out), "decode response")
}
