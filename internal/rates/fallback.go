package rates

import "smartchange/internal/domain"

// Advisory is shown to users when the whole matrix comes from the fallback table.
const Advisory = "Live rates are unavailable; approximate rates are in use."

// fallbackRates holds approximate fiat→crypto rates (crypto units per one
// fiat unit). The crypto→fiat direction is always derived as the reciprocal.
// KZT and CNY rows are the USD row at 450 KZT/USD and 7.2 CNY/USD.
var fallbackRates = map[domain.Currency]map[domain.Currency]float64{
	domain.USD: {domain.BTC: 0.000033, domain.ETH: 0.00045, domain.USDT: 1, domain.BNB: 0.0033, domain.XRP: 1.5},
	domain.EUR: {domain.BTC: 0.000031, domain.ETH: 0.00042, domain.USDT: 0.93, domain.BNB: 0.0031, domain.XRP: 1.4},
	domain.RUB: {domain.BTC: 0.0000003, domain.ETH: 0.000004, domain.USDT: 0.009, domain.BNB: 0.00003, domain.XRP: 0.014},
	domain.KZT: {domain.BTC: 0.0000000733, domain.ETH: 0.000001, domain.USDT: 0.00222, domain.BNB: 0.00000733, domain.XRP: 0.00333},
	domain.CNY: {domain.BTC: 0.00000458, domain.ETH: 0.0000625, domain.USDT: 0.139, domain.BNB: 0.000458, domain.XRP: 0.208},
}

// FallbackRate returns the approximate fiat→crypto rate for the pair.
func FallbackRate(fiat, crypto domain.Currency) (float64, bool) {
	r, ok := fallbackRates[fiat][crypto]
	return r, ok && r > 0
}

// FallbackMatrix builds the full matrix from the fallback table plus reciprocals.
func FallbackMatrix() domain.Matrix {
	m := make(domain.Matrix)
	for _, fiat := range domain.FiatCurrencies {
		for _, crypto := range domain.CryptoCurrencies {
			if r, ok := FallbackRate(fiat.Code, crypto.Code); ok {
				setPair(m, fiat.Code, crypto.Code, r)
			}
		}
	}
	return m
}

// setPair stores the fiat→crypto rate and its reciprocal.
func setPair(m domain.Matrix, fiat, crypto domain.Currency, fiatToCrypto float64) {
	m.Set(fiat, crypto, fiatToCrypto)
	m.Set(crypto, fiat, 1/fiatToCrypto)
}
