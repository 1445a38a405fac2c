package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTracingMiddleware(t *testing.T) {
	var seen string
	h := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "trace-123" || rec.Header().Get(TraceHeader) != "trace-123" {
		t.Fatalf("incoming trace id must be kept, got %q / %q", seen, rec.Header().Get(TraceHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "trace-123" || rec.Header().Get(TraceHeader) != seen {
		t.Fatalf("expected a generated trace id, got %q", seen)
	}
}

func TestTraceIDMissing(t *testing.T) {
	if _, ok := TraceID(context.Background()); ok {
		t.Fatalf("background context has no trace id")
	}
	if _, ok := TraceID(WithTraceID(context.Background(), "")); ok {
		t.Fatalf("empty trace id must be treated as missing")
	}
}
