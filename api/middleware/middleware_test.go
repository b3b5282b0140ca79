package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/types"
)

func testLogger(out io.Writer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: out})
}

func TestCartSessionMintsAndEchoes(t *testing.T) {
	var seen string
	handler := CartSession(testLogger(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("expected a minted session in context")
	}
	if got := rec.Header().Get(CartSessionHeader); got != seen {
		t.Fatalf("expected header %q to echo %q", got, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartSessionHeader, " shopper-1 ")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "shopper-1" || rec.Header().Get(CartSessionHeader) != "shopper-1" {
		t.Fatalf("expected provided session to be kept, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartSessionHeader, strings.Repeat("x", maxCartSessionLen+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if len(seen) > maxCartSessionLen {
		t.Fatal("oversized session header must be replaced")
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var logs bytes.Buffer
	logg := testLogger(&logs)
	handler := RequestID(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id echoed, got %q", rec.Header().Get(requestIDHeader))
	}
	if !strings.Contains(logs.String(), `"request_id":"req-123"`) {
		t.Fatalf("expected request id in logs, got %s", logs.String())
	}
}

func TestRequestIDReplacesUnprintableIDs(t *testing.T) {
	var seen string
	handler := RequestID(testLogger(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := rec.Header().Get(requestIDHeader)
	if got == "bad id" || got == "" {
		t.Fatalf("expected a minted request id, got %q", got)
	}
	if seen != got {
		t.Fatalf("expected context id %q to match header %q", seen, got)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	handler := Recoverer(testLogger(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var logs bytes.Buffer
	handler := Logging(testLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	if !strings.Contains(logs.String(), `"status":418`) || !strings.Contains(logs.String(), `"path":"/brew"`) {
		t.Fatalf("expected status and path in logs, got %s", logs.String())
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %v", rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected allow header for unknown origin")
	}
}
