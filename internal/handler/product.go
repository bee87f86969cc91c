package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/endulzarte/patisserie-api/internal/domain/product"
)

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeProductArray(w, products)
}

// SearchProducts returns catalog entries matching the q query parameter.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeProductArray(w, products)
}

// GetProduct returns a single product by path id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

func writeProductArray(w http.ResponseWriter, products []product.Product) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}
