package rates

import (
	"math"
	"time"

	"smartchange/internal/domain"
)

// Build derives the rate matrix from live prices. The live crypto→fiat price
// is authoritative and fiat→crypto is its reciprocal. Pairs whose price is
// missing, non-positive or non-finite fall back to the static table and are
// listed in Substituted.
func Build(prices domain.Prices, now time.Time) domain.RateSnapshot {
	m := make(domain.Matrix)
	var substituted []domain.Pair

	for _, fiat := range domain.FiatCurrencies {
		for _, crypto := range domain.CryptoCurrencies {
			price := prices[crypto.Code][fiat.Code]
			if price > 0 && !math.IsInf(price, 0) {
				m.Set(crypto.Code, fiat.Code, price)
				m.Set(fiat.Code, crypto.Code, 1/price)
				continue
			}

			substituted = append(substituted, domain.Pair{From: fiat.Code, To: crypto.Code})
			if r, ok := FallbackRate(fiat.Code, crypto.Code); ok {
				setPair(m, fiat.Code, crypto.Code, r)
			}
		}
	}

	source := domain.SourceLive
	if len(substituted) > 0 {
		source = domain.SourcePartial
	}
	return domain.RateSnapshot{
		Rates:       m,
		Source:      source,
		Substituted: substituted,
		UpdatedAt:   now.UTC(),
	}
}

// Fallback is the snapshot used when the price source failed entirely.
func Fallback(now time.Time) domain.RateSnapshot {
	return domain.RateSnapshot{
		Rates:     FallbackMatrix(),
		Source:    domain.SourceFallback,
		Advisory:  Advisory,
		UpdatedAt: now.UTC(),
	}
}
