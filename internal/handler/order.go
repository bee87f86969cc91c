package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/endulzarte/patisserie-api/internal/domain/order"
)

// maxOrderBody caps order request bodies; carts are small.
const maxOrderBody = 1 << 20

// CreateOrder converts the JSON request into line requests, delegates to the
// order service, and responds 201 with the created order header.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxOrderBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	lines, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orderService.PlaceOrder(r.Context(), userID, lines)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

// ListOrders returns the authenticated user's orders, oldest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orderService.Orders(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, o := range orders {
			encodeOrder(e, o)
		}
		e.ArrEnd()
	})
}

// decodeOrderRequest parses {"items": [{"productId": n, "quantity": n}]}.
// Unknown fields are skipped; structural errors surface with the offending
// field name.
func decodeOrderRequest(body []byte) ([]order.LineRequest, error) {
	var lines []order.LineRequest

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var line order.LineRequest
			err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "productId":
					v, err := d.Int64()
					if err != nil {
						return errors.Wrap(err, "productId")
					}
					line.ProductID = v
					return nil
				case "quantity":
					v, err := d.Int()
					if err != nil {
						return errors.Wrap(err, "quantity")
					}
					line.Quantity = v
					return nil
				default:
					return d.Skip()
				}
			})
			if err != nil {
				return err
			}
			lines = append(lines, line)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid order request")
	}
	if len(lines) == 0 {
		return nil, errors.New("items must be a non-empty array")
	}
	return lines, nil
}

// writeOrderError maps order-service errors onto the HTTP error taxonomy.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	writeInternalError(w, r, err)
}
