package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/metrics"
	"smartchange/internal/rates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func fullPrices() domain.Prices {
	prices := make(domain.Prices)
	for _, crypto := range domain.CryptoCurrencies {
		prices[crypto.Code] = make(map[domain.Currency]float64)
		for _, fiat := range domain.FiatCurrencies {
			prices[crypto.Code][fiat.Code] = 10
		}
	}
	return prices
}

func TestRateService_RefreshLive(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{prices: fullPrices()}
	redis := newFakeRedis()
	svc := NewRateService(testTracer, provider, redis, nil, nil)

	snap := svc.Refresh(context.Background())
	if snap.Source != domain.SourceLive {
		t.Fatalf("expected live source, got %s", snap.Source)
	}
	if snap.Advisory != "" {
		t.Fatalf("expected no advisory, got %q", snap.Advisory)
	}
	if r, _ := snap.Rates.Rate(domain.USD, domain.BTC); r != 0.1 {
		t.Fatalf("expected reciprocal 0.1, got %v", r)
	}
	if _, ok := redis.data[snapshotCacheKey]; !ok {
		t.Fatal("snapshot not cached")
	}
}

func TestRateService_RefreshProviderErrorUsesFallback(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{priceErr: errors.New("boom")}
	redis := newFakeRedis()
	svc := NewRateService(testTracer, provider, redis, nil, nil)

	snap := svc.Refresh(context.Background())
	if snap.Source != domain.SourceFallback || snap.Advisory != rates.Advisory {
		t.Fatalf("expected fallback snapshot, got %+v", snap)
	}
	if r, _ := snap.Rates.Rate(domain.USD, domain.BTC); r != 0.000033 {
		t.Fatalf("expected fallback rate, got %v", r)
	}
	if _, ok := redis.data[snapshotCacheKey]; ok {
		t.Fatal("fallback snapshot should not be cached")
	}
	if got := svc.Current(context.Background()); got.Source != domain.SourceFallback {
		t.Fatalf("current should hold fallback, got %s", got.Source)
	}
}

func TestRateService_RefreshPartial(t *testing.T) {
	t.Parallel()

	prices := fullPrices()
	delete(prices, domain.XRP)
	core, logs := observer.New(zap.WarnLevel)
	svc := NewRateService(testTracer, &mockProvider{prices: prices}, nil, zap.New(core), nil)

	snap := svc.Refresh(context.Background())
	if snap.Source != domain.SourcePartial {
		t.Fatalf("expected partial source, got %s", snap.Source)
	}
	if len(snap.Substituted) != len(domain.FiatCurrencies) {
		t.Fatalf("expected %d substituted pairs, got %d", len(domain.FiatCurrencies), len(snap.Substituted))
	}
	if r, _ := snap.Rates.Rate(domain.USD, domain.XRP); r != 1.5 {
		t.Fatalf("expected fallback XRP rate, got %v", r)
	}
	if n := logs.FilterMessage("price data incomplete, substituted fallback rates").Len(); n != 1 {
		t.Fatalf("expected one substitution warning, got %d", n)
	}
}

func TestRateService_CancelledRefreshKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{prices: fullPrices()}
	svc := NewRateService(testTracer, provider, nil, nil, nil)
	svc.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider.priceErr = context.Canceled

	if snap := svc.Refresh(ctx); snap.Source != domain.SourceFallback {
		t.Fatalf("expected fallback result, got %s", snap.Source)
	}
	if got := svc.Current(context.Background()); got.Source != domain.SourceLive {
		t.Fatalf("expected live snapshot kept, got %s", got.Source)
	}
}

func TestRateService_CurrentUsesCache(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	cached := rates.Build(fullPrices(), time.Now())
	data, _ := json.Marshal(cached)
	_ = redis.Set(context.Background(), snapshotCacheKey, data, 0)

	provider := &mockProvider{}
	svc := NewRateService(testTracer, provider, redis, nil, nil)

	got := svc.Current(context.Background())
	if got.Source != domain.SourceLive {
		t.Fatalf("expected cached live snapshot, got %s", got.Source)
	}
	if provider.fetchPricesCalls != 0 {
		t.Fatalf("expected no fetch, got %d", provider.fetchPricesCalls)
	}
}

func TestRateService_CurrentFetchesOnce(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{prices: fullPrices()}
	redis := newFakeRedis()
	redis.getErr = errors.New("redis down")
	svc := NewRateService(testTracer, provider, redis, nil, nil)

	svc.Current(context.Background())
	svc.Current(context.Background())

	if provider.fetchPricesCalls != 1 {
		t.Fatalf("expected fetch once, got %d", provider.fetchPricesCalls)
	}
}

func TestRateService_Convert(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewRateService(testTracer, &mockProvider{priceErr: errors.New("offline")}, nil, nil, m)

	got, snap, err := svc.Convert(context.Background(), "1000", domain.USD, domain.BTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0.03300000" {
		t.Fatalf("expected 0.03300000, got %s", got)
	}
	if snap.Advisory == "" {
		t.Fatal("expected the fallback snapshot with its advisory")
	}
	if _, _, err := svc.Convert(context.Background(), "1", domain.USD, domain.EUR); !errors.Is(err, rates.ErrRateUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, _, err := svc.Convert(context.Background(), "1e10000000", domain.USD, domain.BTC); !errors.Is(err, rates.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	n, err := testutil.GatherAndCount(reg, "smartchange_conversions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 conversion outcomes recorded, got %d", n)
	}
}

type mockProvider struct {
	prices   domain.Prices
	priceErr error

	fetchPricesCalls int
}

func (m *mockProvider) FetchPrices(ctx context.Context) (domain.Prices, error) {
	m.fetchPricesCalls++
	if m.priceErr != nil {
		return nil, m.priceErr
	}
	return m.prices, nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
