package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/metrics"
	"smartchange/internal/rates"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	snapshotCacheKey = "rates:latest"
	snapshotCacheTTL = 90 * time.Second
)

// PriceProvider fetches crypto spot prices in fiat currencies.
type PriceProvider interface {
	FetchPrices(ctx context.Context) (domain.Prices, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RateService owns the current rate snapshot. Refreshes never fail: a
// provider error degrades to the fallback table. Concurrent refreshes are
// last-write-wins.
type RateService struct {
	tracer   trace.Tracer
	provider PriceProvider
	redis    RedisClient
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	current atomic.Pointer[domain.RateSnapshot]
}

func NewRateService(
	tracer trace.Tracer,
	provider PriceProvider,
	redisClient RedisClient,
	logger *zap.Logger,
	m *metrics.Metrics,
) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		tracer:   tracer,
		provider: provider,
		redis:    redisClient,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Refresh fetches prices and rebuilds the rate matrix.
func (s *RateService) Refresh(ctx context.Context) domain.RateSnapshot {
	ctx, span := s.tracer.Start(ctx, "rate-service.refresh")
	defer span.End()

	start := s.now()
	prices, err := s.provider.FetchPrices(ctx)

	var snap domain.RateSnapshot
	if err != nil {
		snap = rates.Fallback(s.now())
		s.logger.Warn("price source unavailable, using fallback rates", zap.Error(err))
	} else {
		snap = rates.Build(prices, s.now())
		if len(snap.Substituted) > 0 {
			s.logger.Warn("price data incomplete, substituted fallback rates",
				zap.Strings("pairs", pairNames(snap.Substituted)))
		}
	}
	span.SetAttributes(
		attribute.String("rates.source", string(snap.Source)),
		attribute.Int("rates.substituted", len(snap.Substituted)),
	)
	s.metrics.ObserveRefresh(snap, s.now().Sub(start))

	// A caller that went away should not replace good rates with the
	// fallback table.
	if err != nil && ctx.Err() != nil && s.current.Load() != nil {
		return snap
	}
	s.current.Store(&snap)

	if s.redis != nil && snap.Source != domain.SourceFallback {
		if err := s.setSnapshotCache(ctx, snap); err != nil {
			s.logger.Warn("redis cache write error", zap.Error(err))
		}
	}
	return snap
}

// Current returns the latest snapshot. On first use it is read from the
// Redis cache when present, otherwise fetched.
func (s *RateService) Current(ctx context.Context) domain.RateSnapshot {
	if snap := s.current.Load(); snap != nil {
		return *snap
	}

	ctx, span := s.tracer.Start(ctx, "rate-service.current")
	defer span.End()

	if s.redis != nil {
		cached, err := s.getSnapshotCache(ctx)
		if err != nil {
			s.logger.Warn("redis cache read error", zap.Error(err))
		}
		if cached != nil {
			s.current.CompareAndSwap(nil, cached)
			return *s.current.Load()
		}
	}
	return s.Refresh(ctx)
}

// Convert converts amount using the current snapshot and returns that
// snapshot too, so callers can show its advisory next to the result.
func (s *RateService) Convert(ctx context.Context, amount string, from, to domain.Currency) (string, domain.RateSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "rate-service.convert")
	defer span.End()
	span.SetAttributes(attribute.String("from", string(from)), attribute.String("to", string(to)))

	snap := s.Current(ctx)
	out, err := rates.Convert(snap.Rates, amount, from, to)
	s.metrics.ObserveConversion(err)
	return out, snap, err
}

func (s *RateService) setSnapshotCache(ctx context.Context, snap domain.RateSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err()
}

func (s *RateService) getSnapshotCache(ctx context.Context) (*domain.RateSnapshot, error) {
	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.RateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func pairNames(pairs []domain.Pair) []string {
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.String()
	}
	return names
}
