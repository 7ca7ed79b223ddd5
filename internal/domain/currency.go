package domain

import "strings"

// Currency is an upper-case currency code such as "USD" or "BTC".
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
	KZT Currency = "KZT"
	CNY Currency = "CNY"

	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	USDT Currency = "USDT"
	BNB  Currency = "BNB"
	XRP  Currency = "XRP"
)

// Asset describes a selectable currency.
type Asset struct {
	Code  Currency `json:"code"`
	Label string   `json:"label"`
}

// FiatCurrencies lists the supported fiat currencies in display order.
var FiatCurrencies = []Asset{
	{Code: USD, Label: "US Dollar"},
	{Code: EUR, Label: "Euro"},
	{Code: RUB, Label: "Russian Ruble"},
	{Code: KZT, Label: "Kazakhstani Tenge"},
	{Code: CNY, Label: "Chinese Yuan"},
}

// CryptoCurrencies lists the supported crypto assets in display order.
var CryptoCurrencies = []Asset{
	{Code: BTC, Label: "Bitcoin"},
	{Code: ETH, Label: "Ethereum"},
	{Code: USDT, Label: "Tether"},
	{Code: BNB, Label: "Binance Coin"},
	{Code: XRP, Label: "Ripple"},
}

// CoinGeckoID maps crypto codes to CoinGecko API identifiers.
var CoinGeckoID = map[Currency]string{
	BTC:  "bitcoin",
	ETH:  "ethereum",
	USDT: "tether",
	BNB:  "binancecoin",
	XRP:  "ripple",
}

// CoinGeckoIDToCurrency is the reverse mapping.
var CoinGeckoIDToCurrency map[string]Currency

var (
	fiatSet   map[Currency]bool
	cryptoSet map[Currency]bool
)

func init() {
	CoinGeckoIDToCurrency = make(map[string]Currency, len(CoinGeckoID))
	for code, id := range CoinGeckoID {
		CoinGeckoIDToCurrency[id] = code
	}

	fiatSet = make(map[Currency]bool, len(FiatCurrencies))
	for _, a := range FiatCurrencies {
		fiatSet[a.Code] = true
	}
	cryptoSet = make(map[Currency]bool, len(CryptoCurrencies))
	for _, a := range CryptoCurrencies {
		cryptoSet[a.Code] = true
	}
}

// ParseCurrency normalizes s and reports whether it is a supported code.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.IsFiat() || c.IsCrypto()
}

func (c Currency) IsFiat() bool   { return fiatSet[c] }
func (c Currency) IsCrypto() bool { return cryptoSet[c] }

func (c Currency) String() string { return string(c) }

// FractionDigits is the number of fraction digits used when displaying an
// amount in c. The table is fixed and does not depend on magnitude.
func (c Currency) FractionDigits() int32 {
	switch c {
	case BTC:
		return 8
	case ETH, BNB:
		return 6
	case XRP, USDT:
		return 4
	default:
		return 2
	}
}

// Codes returns the codes of assets in order.
func Codes(assets []Asset) []Currency {
	out := make([]Currency, len(assets))
	for i, a := range assets {
		out[i] = a.Code
	}
	return out
}
