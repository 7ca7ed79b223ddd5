package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubRates struct {
	snap      domain.RateSnapshot
	refreshed int
	converted int
}

func (s *stubRates) Current(ctx context.Context) domain.RateSnapshot { return s.snap }

func (s *stubRates) Refresh(ctx context.Context) domain.RateSnapshot {
	s.refreshed++
	return s.snap
}

func (s *stubRates) Convert(ctx context.Context, amount string, from, to domain.Currency) (string, domain.RateSnapshot, error) {
	s.converted++
	out, err := rates.Convert(s.snap.Rates, amount, from, to)
	return out, s.snap, err
}

func fallbackRates() *stubRates {
	return &stubRates{snap: rates.Fallback(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := New(testTracer, fallbackRates(), nil, nil)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if body != `{"rates_source":"fallback","status":"healthy"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHealthReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := New(testTracer, fallbackRates(), nil, nil)
	h.AddHealthCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	h.AddHealthCheck("price_source", func(ctx context.Context) error { return nil })
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	want := `{"checks":{"price_source":"ok","redis":"connection refused"},"rates_source":"fallback","status":"degraded"}`
	if body := w.Body.String(); body != want {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHealthChecksPass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := New(testTracer, nil, nil, nil)
	h.AddHealthCheck("redis", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("missing deadline")
		}
		return nil
	})
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"checks":{"redis":"ok"},"status":"healthy"}` {
		t.Errorf("unexpected body: %s", body)
	}
}
