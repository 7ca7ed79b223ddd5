package rates

import (
	"strings"
	"testing"

	"smartchange/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixOf(entries map[domain.Pair]float64) domain.Matrix {
	m := make(domain.Matrix)
	for p, r := range entries {
		m.Set(p.From, p.To, r)
	}
	return m
}

func TestConvertFormatsByDestination(t *testing.T) {
	m := matrixOf(map[domain.Pair]float64{
		{From: domain.USD, To: domain.BTC}:  0.000033,
		{From: domain.USD, To: domain.XRP}:  1.5,
		{From: domain.USD, To: domain.ETH}:  0.00045,
		{From: domain.BTC, To: domain.USD}:  30000,
		{From: domain.USD, To: domain.USDT}: 1,
	})

	tests := []struct {
		amount   string
		from, to domain.Currency
		want     string
	}{
		{"1000", domain.USD, domain.BTC, "0.03300000"},
		{"1000", domain.USD, domain.XRP, "1500.0000"},
		{"1000", domain.USD, domain.ETH, "0.450000"},
		{"1000.00", domain.USD, domain.USDT, "1000.0000"},
		{"0.5", domain.BTC, domain.USD, "15000.00"},
		{" 2 ", domain.BTC, domain.USD, "60000.00"},
	}
	for _, tt := range tests {
		got, err := Convert(m, tt.amount, tt.from, tt.to)
		require.NoError(t, err, "%s %s→%s", tt.amount, tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s %s→%s", tt.amount, tt.from, tt.to)
	}
}

func TestConvertRejectsInvalidAmounts(t *testing.T) {
	m := FallbackMatrix()

	for _, amount := range []string{"0", "-5", "", "  ", "abc", "NaN", "1,5"} {
		got, err := Convert(m, amount, domain.USD, domain.BTC)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amount)
		assert.Empty(t, got)
		assert.Empty(t, Display(got, err))
	}
}

func TestConvertUnavailablePair(t *testing.T) {
	m := matrixOf(map[domain.Pair]float64{
		{From: domain.USD, To: domain.BTC}: 0.000033,
	})

	got, err := Convert(m, "1000", domain.USD, domain.ETH)
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Equal(t, UnavailableMarker, Display(got, err))

	got, err = Convert(m, "1000", domain.USD, domain.EUR)
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Equal(t, UnavailableMarker, Display(got, err))

	got, err = Convert(m, "1000", domain.BTC, domain.USD)
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Equal(t, UnavailableMarker, Display(got, err))
}

func TestConvertInvalidAmountWinsOverMissingRate(t *testing.T) {
	_, err := Convert(domain.Matrix{}, "-1", domain.USD, domain.ETH)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestServiceFee(t *testing.T) {
	assert.Equal(t, "30.00", ServiceFee("1000.00"))
	assert.Equal(t, "0.05", ServiceFee("1.5"))
	assert.Equal(t, "", ServiceFee("0"))
	assert.Equal(t, "", ServiceFee("oops"))
}

func TestParseAmountRejectsOversizedInput(t *testing.T) {
	for _, amount := range []string{
		"1e10000000",
		"1e-10000000",
		"1e30",
		"1000000000000000000000000000000",
		"0." + strings.Repeat("0", 30) + "1",
		strings.Repeat("1", maxAmountLen+1),
	} {
		_, err := ParseAmount(amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amount)
	}

	for _, amount := range []string{"1e29", "999999999999999999999999999999", "0.000000000000000000000000000001", "2.5E3"} {
		_, err := ParseAmount(amount)
		assert.NoError(t, err, "amount %q", amount)
	}
}

func TestConvertHugeExponentIsInvalid(t *testing.T) {
	got, err := Convert(FallbackMatrix(), "1e10000000", domain.USD, domain.BTC)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, got)
	assert.Empty(t, ServiceFee("1e10000000"))
}
