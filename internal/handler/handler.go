// Package handler exposes the storefront API over HTTP: catalog reads plus
// session-authenticated order creation and listing.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/endulzarte/patisserie-api/internal/domain/order"
	"github.com/endulzarte/patisserie-api/internal/domain/product"
)

// Handler implements the storefront HTTP endpoints, delegating business
// logic to the order service and product repository.
type Handler struct {
	products     product.Repository
	orderService *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products product.Repository, orderService *order.Service) *Handler {
	return &Handler{
		products:     products,
		orderService: orderService,
	}
}

// Routes mounts all API endpoints on a chi router. The order endpoints sit
// behind the session middleware; catalog reads are public.
func (h *Handler) Routes(auth *SessionAuth) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/search", h.SearchProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/orders", h.CreateOrder)
			r.Get("/orders", h.ListOrders)
		})
	})

	return r
}

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {code, message} error envelope shared by all
// endpoints.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// writeInternalError logs the error with the request-scoped logger and
// responds with an opaque 500. Details never leak to the caller.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	e.Str(p.Price.StringFixed(2))
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("imageUrl")
	e.Str(p.ImageURL)
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("total")
	e.Str(o.Total.StringFixed(2))
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339))
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(item.ProductID)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("price")
		e.Str(item.UnitPrice.StringFixed(2))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
