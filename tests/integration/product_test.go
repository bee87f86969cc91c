//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var croissant *productResponse
	for i := range products {
		if products[i].Name == "Almond Croissant" {
			croissant = &products[i]
			break
		}
	}

	if croissant == nil {
		t.Fatal("product 'Almond Croissant' not found")
	}
	if croissant.Price != "6.50" {
		t.Errorf("price: got %q, want %q", croissant.Price, "6.50")
	}
	if croissant.Category != "Pastries" {
		t.Errorf("category: got %q, want %q", croissant.Category, "Pastries")
	}
	if croissant.Description == "" {
		t.Error("description is empty")
	}
	if croissant.ImageURL == "" {
		t.Error("imageUrl is empty")
	}
	if croissant.Stock <= 0 {
		t.Errorf("stock: got %d, want > 0", croissant.Stock)
	}
}

func TestGetProduct(t *testing.T) {
	list := doGet(t, "/api/products")
	products := decodeJSON[[]productResponse](t, list)
	list.Body.Close()
	if len(products) == 0 {
		t.Fatal("no products seeded")
	}
	want := products[0]

	resp := doGet(t, fmt.Sprintf("/api/products/%d", want.ID))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != want.ID {
		t.Errorf("id: got %d, want %d", product.ID, want.ID)
	}
	if product.Name != want.Name {
		t.Errorf("name: got %q, want %q", product.Name, want.Name)
	}
	if product.Price != want.Price {
		t.Errorf("price: got %q, want %q", product.Price, want.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestGetProduct_InvalidID(t *testing.T) {
	resp := doGet(t, "/api/products/not-a-number")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchProducts(t *testing.T) {
	resp := doGet(t, "/api/products/search?q=tart")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 match, got %d", len(products))
	}
	if products[0].Name != "Lemon Tart" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Lemon Tart")
	}
}

func TestSearchProducts_Category(t *testing.T) {
	resp := doGet(t, "/api/products/search?q=cakes")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(products))
	}
}

func TestSearchProducts_NoMatches(t *testing.T) {
	resp := doGet(t, "/api/products/search?q=zzzzzz")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 0 {
		t.Fatalf("expected no matches, got %d", len(products))
	}
}
