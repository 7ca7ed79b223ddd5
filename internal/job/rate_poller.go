package job

import (
	"context"
	"time"

	"smartchange/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RateRefresher interface {
	Refresh(ctx context.Context) domain.RateSnapshot
}

// RatePoller refreshes the rate snapshot on a fixed interval.
type RatePoller struct {
	tracer       trace.Tracer
	rates        RateRefresher
	logger       *zap.Logger
	pollInterval time.Duration
}

func NewRatePoller(tracer trace.Tracer, rates RateRefresher, logger *zap.Logger, pollIntervalSecs int) *RatePoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatePoller{
		tracer:       tracer,
		rates:        rates,
		logger:       logger,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Enabled reports whether a positive interval was configured. Without one,
// rates are only fetched on demand.
func (p *RatePoller) Enabled() bool {
	return p.pollInterval > 0
}

// Start polls until ctx is cancelled. It returns at once when disabled.
func (p *RatePoller) Start(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Info("rate poller disabled")
		return
	}
	p.logger.Info("rate poller starting", zap.Duration("interval", p.pollInterval))

	p.poll(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("rate poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *RatePoller) poll(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "rate-poller.poll")
	defer span.End()

	snap := p.rates.Refresh(ctx)
	p.logger.Debug("rates refreshed",
		zap.String("source", string(snap.Source)),
		zap.Int("substituted", len(snap.Substituted)),
	)
}
