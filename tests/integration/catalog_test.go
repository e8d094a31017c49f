//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	products := expect[[]productResponse](t, http.MethodGet, "/api/products", nil, http.StatusOK)
	if len(products) != 12 {
		t.Fatalf("expected 12 products, got %d", len(products))
	}
}

func TestSearchProducts(t *testing.T) {
	products := expect[[]productResponse](t, http.MethodGet, "/api/products?q=MILK&category=Dairy", nil, http.StatusOK)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].ID != "prod-001" {
		t.Errorf("id: got %q, want prod-001", products[0].ID)
	}

	products = expect[[]productResponse](t, http.MethodGet, "/api/products?category=all", nil, http.StatusOK)
	if len(products) != 12 {
		t.Errorf("category=all: got %d products, want 12", len(products))
	}
}

func TestGetProduct_Fields(t *testing.T) {
	p := expect[productResponse](t, http.MethodGet, "/api/products/prod-012", nil, http.StatusOK)
	if p.Name != "Dish Soap 750ml" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Price != 2.15 {
		t.Errorf("price: got %v, want 2.15", p.Price)
	}
	if p.Stock != -3 {
		t.Errorf("stock: got %d, want -3", p.Stock)
	}
	if p.SKU != "7790005000017" {
		t.Errorf("sku: got %q", p.SKU)
	}
}

func TestGetProductBySKU(t *testing.T) {
	p := expect[productResponse](t, http.MethodGet, "/api/products/sku/7790003000026", nil, http.StatusOK)
	if p.ID != "prod-009" {
		t.Errorf("id: got %q, want prod-009", p.ID)
	}
	e := expect[errorResponse](t, http.MethodGet, "/api/products/sku/0000000000000", nil, http.StatusNotFound)
	if e.Code != http.StatusNotFound {
		t.Errorf("code: got %d", e.Code)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	e := expect[errorResponse](t, http.MethodGet, "/api/products/nope", nil, http.StatusNotFound)
	if e.Message == "" {
		t.Error("expected error message")
	}
}

func TestListCategories(t *testing.T) {
	got := expect[[]string](t, http.MethodGet, "/api/categories", nil, http.StatusOK)
	want := []string{"Bakery", "Beverages", "Dairy", "Grocery", "Household"}
	if len(got) != len(want) {
		t.Fatalf("categories: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListClients(t *testing.T) {
	clients := expect[[]clientResponse](t, http.MethodGet, "/api/clients", nil, http.StatusOK)
	if len(clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(clients))
	}
}
