package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endulzarte/patisserie-api/internal/domain/order"
	"github.com/endulzarte/patisserie-api/internal/domain/product"
	"github.com/endulzarte/patisserie-api/internal/domain/session"
)

// --- Fakes ---

type fakeProductRepo struct {
	products []product.Product
}

func (f *fakeProductRepo) List(_ context.Context) ([]product.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Search(_ context.Context, query string) ([]product.Product, error) {
	if query == "" {
		return f.products, nil
	}
	q := strings.ToLower(query)
	var out []product.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders []order.Order
	nextID int64
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute)
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	byHash map[string]*session.Session
}

func (f *fakeSessionRepo) FindByHash(_ context.Context, hash string) (*session.Session, error) {
	if s, ok := f.byHash[hash]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func (f *fakeSessionRepo) Create(_ context.Context, s *session.Session) error {
	f.byHash[s.TokenHash] = s
	return nil
}

// --- Harness ---

const (
	testPepper = "test-pepper"
	testToken  = "test-token"
	testUser   = "user-42"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeOrderRepo) {
	t.Helper()

	products := &fakeProductRepo{products: []product.Product{
		{ID: 1, Name: "Red Velvet Delight", Description: "Classic red velvet cake", Price: decimal.RequireFromString("45.00"), Stock: 10, Category: "Cakes", ImageURL: "rv.jpg"},
		{ID: 2, Name: "Lemon Tart", Description: "Zesty lemon curd", Price: decimal.RequireFromString("25.00"), Stock: 20, Category: "Tarts", ImageURL: "lt.jpg"},
	}}
	orders := &fakeOrderRepo{}

	sessions := &fakeSessionRepo{byHash: map[string]*session.Session{}}
	require.NoError(t, sessions.Create(context.Background(), &session.Session{
		TokenHash: HashToken([]byte(testPepper), testToken),
		UserID:    testUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	h := NewHandler(products, order.NewService(products, orders))
	auth := NewSessionAuth(sessions, []byte(testPepper))

	srv := httptest.NewServer(h.Routes(auth))
	t.Cleanup(srv.Close)
	return srv, orders
}

func doReq(t *testing.T, method, url, body, token string) *http.Response {
	t.Helper()

	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type productJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl"`
}

type orderJSON struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"userId"`
	Total     string          `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
	Items     []orderItemJSON `json:"items"`
}

type orderItemJSON struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type errorJSON struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- Catalog ---

func TestListProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decodeBody[[]productJSON](t, resp)
	require.Len(t, products, 2)
	assert.Equal(t, "45.00", products[0].Price)
	assert.Equal(t, "Red Velvet Delight", products[0].Name)
}

func TestGetProduct(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products/2", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	p := decodeBody[productJSON](t, resp)
	assert.Equal(t, int64(2), p.ID)
	assert.Equal(t, "25.00", p.Price)
	assert.Equal(t, "Tarts", p.Category)
}

func TestGetProduct_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products/99", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	e := decodeBody[errorJSON](t, resp)
	assert.Equal(t, http.StatusNotFound, e.Code)
}

func TestGetProduct_BadID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products/cake", "", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products/search?q=tart", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decodeBody[[]productJSON](t, resp)
	require.Len(t, products, 1)
	assert.Equal(t, "Lemon Tart", products[0].Name)
}

func TestSearchProducts_EmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/products/search", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decodeBody[[]productJSON](t, resp)
	assert.Len(t, products, 2)
}

// --- Orders ---

func TestCreateOrder(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"items":[{"productId":1,"quantity":2}]}`
	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, testToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	o := decodeBody[orderJSON](t, resp)
	assert.Equal(t, "90.00", o.Total)
	assert.Equal(t, testUser, o.UserID)
	assert.Equal(t, "completed", o.Status)
	assert.NotEmpty(t, o.CreatedAt)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "45.00", o.Items[0].Price)
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	srv, orders := newTestServer(t)

	body := `{"items":[{"productId":1,"quantity":1}]}`
	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, orders.orders)
}

func TestCreateOrder_InvalidToken(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"items":[{"productId":1,"quantity":1}]}`
	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, "wrong-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOrder_SessionCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/orders",
		strings.NewReader(`{"items":[{"productId":2,"quantity":1}]}`))
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testToken})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	o := decodeBody[orderJSON](t, resp)
	assert.Equal(t, "25.00", o.Total)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", `{"items":"nope"}`, testToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	srv, orders := newTestServer(t)

	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", `{"items":[]}`, testToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, orders.orders)
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	srv, orders := newTestServer(t)

	body := `{"items":[{"productId":1,"quantity":0}]}`
	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, testToken)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, orders.orders)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	srv, orders := newTestServer(t)

	body := `{"items":[{"productId":1,"quantity":1},{"productId":777,"quantity":1}]}`
	resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, testToken)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	e := decodeBody[errorJSON](t, resp)
	assert.Contains(t, e.Message, "777")
	assert.Empty(t, orders.orders, "no partial order may be persisted")
}

func TestListOrders_RequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/orders", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListOrders_RoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{
		`{"items":[{"productId":1,"quantity":1}]}`,
		`{"items":[{"productId":2,"quantity":3}]}`,
	} {
		resp := doReq(t, http.MethodPost, srv.URL+"/api/orders", body, testToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doReq(t, http.MethodGet, srv.URL+"/api/orders", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	orders := decodeBody[[]orderJSON](t, resp)
	require.Len(t, orders, 2)
	assert.Equal(t, "45.00", orders[0].Total)
	assert.Equal(t, "75.00", orders[1].Total)
}

func TestSessionExpired(t *testing.T) {
	sessions := &fakeSessionRepo{byHash: map[string]*session.Session{}}
	require.NoError(t, sessions.Create(context.Background(), &session.Session{
		TokenHash: HashToken([]byte(testPepper), testToken),
		UserID:    testUser,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	products := &fakeProductRepo{}
	h := NewHandler(products, order.NewService(products, &fakeOrderRepo{}))
	srv := httptest.NewServer(h.Routes(NewSessionAuth(sessions, []byte(testPepper))))
	t.Cleanup(srv.Close)

	resp := doReq(t, http.MethodGet, srv.URL+"/api/orders", "", testToken)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
