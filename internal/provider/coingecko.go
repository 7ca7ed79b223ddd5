package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartchange/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	defaultTimeout   = 10 * time.Second
)

// DefaultVsCurrencies are the fiat codes requested from the price source.
var DefaultVsCurrencies = []string{"usd", "eur", "rub"}

// CoinGeckoConfig tunes the provider. Zero values select the defaults.
type CoinGeckoConfig struct {
	BaseURL      string
	VsCurrencies []string
	Timeout      time.Duration

	// RequestsPerMinute caps outbound calls. The free tier allows about 8.
	RequestsPerMinute int
}

// CoinGeckoProvider fetches spot prices from the CoinGecko free API.
type CoinGeckoProvider struct {
	client       *http.Client
	baseURL      string
	vsCurrencies []string
	tracer       trace.Tracer
	budget       *RequestBudget
}

// NewCoinGeckoProvider creates a provider that stays inside the configured
// request budget.
func NewCoinGeckoProvider(tracer trace.Tracer, cfg CoinGeckoConfig) *CoinGeckoProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = coingeckoBaseURL
	}
	if len(cfg.VsCurrencies) == 0 {
		cfg.VsCurrencies = DefaultVsCurrencies
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &CoinGeckoProvider{
		client:       &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		vsCurrencies: cfg.VsCurrencies,
		tracer:       tracer,
		budget:       NewRequestBudget(cfg.RequestsPerMinute),
	}
}

// FetchPrices fetches current prices for all supported crypto assets in a
// single API call. Identifiers or fiat codes the response omits are simply
// absent from the result.
func (p *CoinGeckoProvider) FetchPrices(ctx context.Context) (domain.Prices, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-prices")
	defer span.End()

	ids := make([]string, 0, len(domain.CryptoCurrencies))
	for _, c := range domain.CryptoCurrencies {
		ids = append(ids, domain.CoinGeckoID[c.Code])
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		p.baseURL, strings.Join(ids, ","), strings.Join(p.vsCurrencies, ","))
	span.SetAttributes(attribute.String("coingecko.url", url))

	body, err := p.doRequest(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch prices")
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	// Response shape: {"bitcoin": {"usd": 97000, "eur": 90000, "rub": 9000000}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse prices")
		return nil, fmt.Errorf("parse prices: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parse prices: empty payload")
	}

	result := make(domain.Prices, len(raw))
	for cgID, quotes := range raw {
		crypto, ok := domain.CoinGeckoIDToCurrency[cgID]
		if !ok {
			continue
		}
		row := make(map[domain.Currency]float64, len(quotes))
		for vs, price := range quotes {
			if fiat, ok := domain.ParseCurrency(vs); ok && fiat.IsFiat() {
				row[fiat] = price
			}
		}
		result[crypto] = row
	}
	span.SetAttributes(attribute.Int("coingecko.assets", len(result)))

	return result, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.budget.Take(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
