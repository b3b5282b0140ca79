package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/autoparts-storefront/api/middleware"
	"github.com/angelmondragon/autoparts-storefront/internal/cart"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/checkout"
	"github.com/angelmondragon/autoparts-storefront/internal/newsletter"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	cfg := &config.Config{
		App:     config.AppConfig{Env: config.AppEnvDev, CORSOrigins: []string{"http://localhost:3000"}},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Catalog: config.CatalogConfig{FeaturedCount: 4, RelatedCount: 4, PriceCeiling: 500},
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg)
	rules := pricing.DefaultRules()
	checkoutService, err := checkout.NewService(rules, 0, logg, m)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	news := newsletter.NewService(0, logg)
	t.Cleanup(news.Close)

	sessions := cart.NewSessions(cart.NewMemoryPersister(), logg, m)
	return NewRouter(cfg, logg, reg, nil, cat, rules, sessions, checkoutService, news)
}

func TestRouterServesPublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products?category=brakes&brand=Bosch", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/featured", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/1", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/9999", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/brands", "", http.StatusOK},
		{http.MethodGet, "/api/v1/categories", "", http.StatusOK},
		{http.MethodGet, "/api/v1/vehicles/makes", "", http.StatusOK},
		{http.MethodGet, "/api/v1/vehicles/makes/Toyota/models", "", http.StatusOK},
		{http.MethodGet, "/api/v1/vehicles/makes/Yugo/models", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/vehicles/years", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cart", "", http.StatusOK},
		{http.MethodPost, "/api/v1/newsletter", `{"email":"a@b.co"}`, http.StatusAccepted},
		{http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterCartSessionRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, add)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	session := rec.Header().Get(middleware.CartSessionHeader)
	if session == "" {
		t.Fatal("expected a minted cart session header")
	}

	get := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	get.Header.Set(middleware.CartSessionHeader, session)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)

	var envelope struct {
		Data struct {
			SessionID string `json:"session_id"`
			Count     int    `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SessionID != session || envelope.Data.Count != 2 {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	other.Header.Set(middleware.CartSessionHeader, "someone-else")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, other)
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Count != 0 {
		t.Fatalf("sessions must not share carts, got %d items", envelope.Data.Count)
	}
}

func TestRouterMetricsExposeCartCounters(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":1}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `cart_mutations_total{op="add"} 1`) {
		t.Fatalf("expected add counter in metrics output:\n%s", rec.Body.String())
	}
}
