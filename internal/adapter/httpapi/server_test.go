package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/microstore-service/internal/adapter/docstore"
	"github.com/example/microstore-service/internal/adapter/gateway"
	"github.com/example/microstore-service/internal/adapter/notify"
	"github.com/example/microstore-service/internal/domain"
	"github.com/example/microstore-service/internal/usecase"
)

func newTestServer(t *testing.T) (*Server, *docstore.Memory) {
	t.Helper()
	mem := docstore.NewMemory()
	mem.EnsureUniqueField("store", "slug")
	sellers := usecase.SellerRegistry{Store: mem}
	slugs := usecase.SlugRegistry{Store: mem}
	catalog := usecase.CatalogService{Store: mem, Sellers: sellers, Slugs: slugs}
	orders := usecase.OrderService{
		Store:   mem,
		Gateway: gateway.Mock{},
		Sink:    notify.Store{Docs: mem},
		Catalog: &catalog,
	}
	return NewServer(sellers, catalog, orders, mem), mem
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestEndToEndCheckout(t *testing.T) {
	s, mem := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/signup", map[string]any{
		"name":  "Jane",
		"phone": "254700000000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	sellerID := decode(t, w)["seller_id"].(string)

	w = do(t, s, http.MethodPost, "/api/store", map[string]any{
		"owner_id": sellerID,
		"name":     "Jane Shop",
		"slug":     "jane-shop",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPost, "/api/products", map[string]any{
		"store_slug": "jane-shop",
		"name":       "Mandazi",
		"price":      20.0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	productID := decode(t, w)["product_id"].(string)

	// mixed-case slug must be accepted and normalized
	w = do(t, s, http.MethodPost, "/api/checkout", map[string]any{
		"store_slug": "JANE-SHOP",
		"items": []map[string]any{
			{"product_id": productID, "name": "Mandazi", "price": 20.0, "quantity": 3},
		},
		"customer": map[string]any{"phone": "254711111111"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "paid", resp["status"])
	orderID := resp["order_id"].(string)
	require.NotEmpty(t, orderID)

	doc, found, err := mem.FindOne(context.Background(), "order", domain.Filter{"id": orderID})
	require.NoError(t, err)
	require.True(t, found)
	var order domain.Order
	require.NoError(t, domain.FromDocument(doc, &order))
	assert.Equal(t, "jane-shop", order.StoreSlug)
	assert.InDelta(t, 60.0, order.Total, 1e-9)
	assert.Equal(t, "paid", order.Status)
	assert.Equal(t, "success", order.Mpesa["status"])

	// notification side channel got the paid event
	notes, err := mem.FindMany(context.Background(), "notification", domain.Filter{"order_id": orderID})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "whatsapp", notes[0]["type"])
	assert.Equal(t, "New order paid: 1 items, KES 60.00 from 254711111111", notes[0]["message"])
}

func TestHTTPErrors(t *testing.T) {
	s, _ := newTestServer(t)

	sellerID := decode(t, do(t, s, http.MethodPost, "/api/signup", map[string]any{
		"name": "Jane", "phone": "254700000000",
	}))["seller_id"].(string)
	w := do(t, s, http.MethodPost, "/api/store", map[string]any{
		"owner_id": sellerID, "name": "Jane Shop", "slug": "jane-shop",
	})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{
			"signup without phone",
			http.MethodPost, "/api/signup",
			map[string]any{"name": "Jane"},
			http.StatusBadRequest,
		},
		{
			"store with unknown owner",
			http.MethodPost, "/api/store",
			map[string]any{"owner_id": "ghost", "name": "X", "slug": "x-shop"},
			http.StatusNotFound,
		},
		{
			"duplicate slug case-variant",
			http.MethodPost, "/api/store",
			map[string]any{"owner_id": sellerID, "name": "X", "slug": "JANE-SHOP"},
			http.StatusBadRequest,
		},
		{
			"store lookup missing",
			http.MethodGet, "/api/store/ghost",
			nil,
			http.StatusNotFound,
		},
		{
			"product for unknown store",
			http.MethodPost, "/api/products",
			map[string]any{"store_slug": "ghost", "name": "Mandazi", "price": 20.0},
			http.StatusNotFound,
		},
		{
			"product with negative price",
			http.MethodPost, "/api/products",
			map[string]any{"store_slug": "jane-shop", "name": "Mandazi", "price": -1.0},
			http.StatusBadRequest,
		},
		{
			"checkout with empty items",
			http.MethodPost, "/api/checkout",
			map[string]any{"store_slug": "jane-shop", "items": []any{}, "customer": map[string]any{"phone": "254711111111"}},
			http.StatusBadRequest,
		},
		{
			"checkout with zero quantity",
			http.MethodPost, "/api/checkout",
			map[string]any{
				"store_slug": "jane-shop",
				"items":      []map[string]any{{"name": "Mandazi", "price": 20.0, "quantity": 0}},
				"customer":   map[string]any{"phone": "254711111111"},
			},
			http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestGetStoreAndListProducts(t *testing.T) {
	s, _ := newTestServer(t)

	sellerID := decode(t, do(t, s, http.MethodPost, "/api/signup", map[string]any{
		"name": "Jane", "phone": "254700000000",
	}))["seller_id"].(string)
	do(t, s, http.MethodPost, "/api/store", map[string]any{
		"owner_id": sellerID, "name": "Jane Shop", "slug": "jane-shop",
	})

	w := do(t, s, http.MethodGet, "/api/store/JANE-SHOP", nil)
	require.Equal(t, http.StatusOK, w.Code)
	store := decode(t, w)
	assert.Equal(t, "jane-shop", store["slug"])
	assert.NotEmpty(t, store["id"])
	// whatsapp falls back to the owner's phone
	assert.Equal(t, "254700000000", store["whatsapp_number"])

	// empty catalog renders as [], not null
	w = do(t, s, http.MethodGet, "/api/products/jane-shop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	do(t, s, http.MethodPost, "/api/products", map[string]any{
		"store_slug": "jane-shop", "name": "Mandazi", "price": 20.0,
	})
	w = do(t, s, http.MethodGet, "/api/products/jane-shop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "Mandazi", products[0]["name"])
	assert.Equal(t, true, products[0]["is_active"])
}

func TestRootAndDiag(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Microstore API running", decode(t, w)["message"])

	w = do(t, s, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	diag := decode(t, w)
	assert.Equal(t, "running", diag["backend"])
	assert.Equal(t, "connected", diag["storage"])
}

func BenchmarkListProducts(b *testing.B) {
	mem := docstore.NewMemory()
	mem.EnsureUniqueField("store", "slug")
	sellers := usecase.SellerRegistry{Store: mem}
	slugs := usecase.SlugRegistry{Store: mem}
	catalog := usecase.CatalogService{Store: mem, Sellers: sellers, Slugs: slugs}
	orders := usecase.OrderService{Store: mem, Gateway: gateway.Mock{}, Catalog: &catalog}

	ctx := context.Background()
	ownerID, err := sellers.Register(ctx, domain.Seller{Name: "Jane", Phone: "254700000000"})
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		slug := fmt.Sprintf("store-%d", i)
		if _, err := catalog.CreateStore(ctx, domain.Store{OwnerID: ownerID, Name: slug, Slug: slug}); err != nil {
			b.Fatal(err)
		}
		for j := 0; j < 10; j++ {
			if _, err := catalog.CreateProduct(ctx, domain.Product{
				StoreSlug: slug, Name: fmt.Sprintf("item-%d", j), Price: float64(j),
			}); err != nil {
				b.Fatal(err)
			}
		}
	}
	router := NewServer(sellers, catalog, orders, mem).Router

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			path := fmt.Sprintf("/api/products/store-%d", i%100)
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			i++
		}
	})
}
