package rates

import (
	"testing"
	"time"

	"smartchange/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func livePrices() domain.Prices {
	return domain.Prices{
		domain.BTC:  {domain.USD: 60000, domain.EUR: 55000, domain.RUB: 5500000, domain.KZT: 27000000, domain.CNY: 430000},
		domain.ETH:  {domain.USD: 3000, domain.EUR: 2750, domain.RUB: 275000, domain.KZT: 1350000, domain.CNY: 21500},
		domain.USDT: {domain.USD: 1, domain.EUR: 0.92, domain.RUB: 92, domain.KZT: 450, domain.CNY: 7.2},
		domain.BNB:  {domain.USD: 400, domain.EUR: 370, domain.RUB: 37000, domain.KZT: 180000, domain.CNY: 2900},
		domain.XRP:  {domain.USD: 0.5, domain.EUR: 0.46, domain.RUB: 46, domain.KZT: 225, domain.CNY: 3.6},
	}
}

func TestBuildLivePricesAreReciprocal(t *testing.T) {
	// Arrange
	prices := livePrices()

	// Act
	snap := Build(prices, testNow)

	// Assert
	assert.Equal(t, domain.SourceLive, snap.Source)
	assert.Empty(t, snap.Substituted)
	assert.Empty(t, snap.Advisory)
	assert.False(t, snap.Approximate())
	assert.Equal(t, testNow, snap.UpdatedAt)

	for _, fiat := range domain.FiatCurrencies {
		for _, crypto := range domain.CryptoCurrencies {
			forward, ok := snap.Rates.Rate(fiat.Code, crypto.Code)
			require.True(t, ok, "%s/%s", fiat.Code, crypto.Code)
			reverse, ok := snap.Rates.Rate(crypto.Code, fiat.Code)
			require.True(t, ok, "%s/%s", crypto.Code, fiat.Code)

			assert.Equal(t, prices[crypto.Code][fiat.Code], reverse)
			assert.InDelta(t, 1, forward*reverse, 1e-12)
		}
	}
}

func TestBuildLeavesSameCategoryPairsAbsent(t *testing.T) {
	snap := Build(livePrices(), testNow)

	all := append(domain.Codes(domain.FiatCurrencies), domain.Codes(domain.CryptoCurrencies)...)
	for _, c := range all {
		_, ok := snap.Rates[c][c]
		assert.False(t, ok, "%s/%s should be absent", c, c)
	}
	for _, a := range domain.FiatCurrencies {
		for _, b := range domain.FiatCurrencies {
			_, ok := snap.Rates[a.Code][b.Code]
			assert.False(t, ok, "%s/%s should be absent", a.Code, b.Code)
		}
	}
	for _, a := range domain.CryptoCurrencies {
		for _, b := range domain.CryptoCurrencies {
			_, ok := snap.Rates[a.Code][b.Code]
			assert.False(t, ok, "%s/%s should be absent", a.Code, b.Code)
		}
	}
}

func TestBuildSubstitutesMissingAndInvalidEntries(t *testing.T) {
	// Arrange
	prices := domain.Prices{
		domain.BTC: {domain.USD: 60000, domain.EUR: 0},
		domain.ETH: {domain.USD: -3},
	}

	// Act
	snap := Build(prices, testNow)

	// Assert
	assert.Equal(t, domain.SourcePartial, snap.Source)
	assert.Empty(t, snap.Advisory)
	assert.Contains(t, snap.Substituted, domain.Pair{From: domain.EUR, To: domain.BTC})
	assert.Contains(t, snap.Substituted, domain.Pair{From: domain.USD, To: domain.ETH})
	assert.NotContains(t, snap.Substituted, domain.Pair{From: domain.USD, To: domain.BTC})
	assert.Len(t, snap.Substituted, len(domain.FiatCurrencies)*len(domain.CryptoCurrencies)-1)

	eurBTC, ok := snap.Rates.Rate(domain.EUR, domain.BTC)
	require.True(t, ok)
	assert.Equal(t, 0.000031, eurBTC)

	btcEUR, ok := snap.Rates.Rate(domain.BTC, domain.EUR)
	require.True(t, ok)
	assert.InDelta(t, 1/0.000031, btcEUR, 1e-6)

	usdETH, ok := snap.Rates.Rate(domain.USD, domain.ETH)
	require.True(t, ok)
	assert.Equal(t, 0.00045, usdETH)
}

func TestFallbackEqualsStaticTable(t *testing.T) {
	snap := Fallback(testNow)

	assert.True(t, snap.Approximate())
	assert.Equal(t, Advisory, snap.Advisory)
	assert.Empty(t, snap.Substituted)

	for fiat, row := range fallbackRates {
		for crypto, r := range row {
			assert.Equal(t, r, snap.Rates[fiat][crypto])
			assert.Equal(t, 1/r, snap.Rates[crypto][fiat])
		}
	}

	entries := 0
	for _, row := range snap.Rates {
		entries += len(row)
	}
	assert.Equal(t, 2*len(domain.FiatCurrencies)*len(domain.CryptoCurrencies), entries)
}

func TestFallbackTableCoversEveryPair(t *testing.T) {
	for _, fiat := range domain.FiatCurrencies {
		for _, crypto := range domain.CryptoCurrencies {
			_, ok := FallbackRate(fiat.Code, crypto.Code)
			assert.True(t, ok, "missing fallback for %s/%s", fiat.Code, crypto.Code)
		}
	}
	_, ok := FallbackRate(domain.USD, domain.EUR)
	assert.False(t, ok)
}

func TestBuildWithNoPricesMatchesFallbackRates(t *testing.T) {
	snap := Build(nil, testNow)

	assert.Equal(t, domain.SourcePartial, snap.Source)
	assert.Equal(t, FallbackMatrix(), snap.Rates)
}
