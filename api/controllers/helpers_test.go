package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/autoparts-storefront/api/middleware"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Product{
		{ID: 1, Name: "Ceramic Brake Pads", Description: "Low dust pads", Price: decimal.NewFromInt(100), Category: "brakes", Brand: "Bosch", InStock: true,
			Compatibility: []string{"Toyota Camry 2018-2023"}},
		{ID: 2, Name: "Iridium Spark Plug", Description: "Long life", Price: decimal.NewFromInt(50), Category: "engine-parts", Brand: "NGK", InStock: true},
		{ID: 3, Name: "Brake Rotor", Description: "Vented rotor", Price: decimal.NewFromInt(80), Discount: 25, Category: "brakes", Brand: "Moog", InStock: true},
		{ID: 4, Name: "AGM Battery", Description: "Deep cycle", Price: decimal.NewFromInt(250), Category: "electrical", Brand: "Optima", InStock: false},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

type requestOption func(*http.Request) *http.Request

func withParam(key, value string) requestOption {
	return func(r *http.Request) *http.Request {
		routeCtx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
		if !ok {
			routeCtx = chi.NewRouteContext()
		}
		routeCtx.URLParams.Add(key, value)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
	}
}

func withSession(sessionID string) requestOption {
	return func(r *http.Request) *http.Request {
		return r.WithContext(middleware.WithCartSession(r.Context(), sessionID))
	}
}

func serve(h http.Handler, method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for _, opt := range opts {
		req = opt(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Error
}
