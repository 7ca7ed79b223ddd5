package handler

import (
	"net/http"
	"strings"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RatesResponse is the rate matrix with its provenance and the rate board.
type RatesResponse struct {
	Base        domain.Currency    `json:"base"`
	Source      domain.RateSource  `json:"source"`
	Approximate bool               `json:"approximate"`
	Advisory    string             `json:"advisory,omitempty"`
	Substituted []string           `json:"substituted,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Rates       domain.Matrix      `json:"rates"`
	Board       []rates.BoardEntry `json:"board"`
}

type currenciesResponse struct {
	Fiat   []domain.Asset `json:"fiat"`
	Crypto []domain.Asset `json:"crypto"`
}

// ListCurrencies godoc
// @Summary      List supported currencies
// @Description  Returns the fiat and crypto currencies with their display labels
// @Tags         rates
// @Produce      json
// @Success      200  {object}  currenciesResponse
// @Router       /api/currencies [get]
func (h *Handler) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, currenciesResponse{
		Fiat:   domain.FiatCurrencies,
		Crypto: domain.CryptoCurrencies,
	})
}

// GetRates godoc
// @Summary      Get the current rate matrix
// @Description  Returns every available rate, whether the rates are approximate, and the rate board priced in base
// @Tags         rates
// @Produce      json
// @Param        base  query  string  false  "Board currency (e.g., USD, EUR)"  default(USD)
// @Success      200  {object}  RatesResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/rates [get]
func (h *Handler) GetRates(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-rates")
	defer span.End()

	base, ok := parseBase(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("base", string(base)))

	c.JSON(http.StatusOK, newRatesResponse(h.rates.Current(ctx), base))
}

// RefreshRates godoc
// @Summary      Refetch live rates
// @Description  Fetches prices now and rebuilds the matrix. Falls back to approximate rates when the source is unavailable.
// @Tags         rates
// @Produce      json
// @Param        base       query   string  false  "Board currency (e.g., USD, EUR)"  default(USD)
// @Param        X-API-Key  header  string  false  "Admin key, when configured"
// @Success      200  {object}  RatesResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/rates/refresh [post]
func (h *Handler) RefreshRates(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-rates")
	defer span.End()

	base, ok := parseBase(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newRatesResponse(h.rates.Refresh(ctx), base))
}

func parseBase(c *gin.Context) (domain.Currency, bool) {
	raw := c.DefaultQuery("base", string(domain.USD))
	base, ok := domain.ParseCurrency(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency: " + strings.ToUpper(raw)})
		return "", false
	}
	if !base.IsFiat() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base must be a fiat currency: " + string(base)})
		return "", false
	}
	return base, true
}

func newRatesResponse(snap domain.RateSnapshot, base domain.Currency) RatesResponse {
	resp := RatesResponse{
		Base:        base,
		Source:      snap.Source,
		Approximate: snap.Approximate(),
		Advisory:    snap.Advisory,
		UpdatedAt:   snap.UpdatedAt,
		Rates:       snap.Rates,
		Board:       rates.Board(snap.Rates, base),
	}
	for _, p := range snap.Substituted {
		resp.Substituted = append(resp.Substituted, p.String())
	}
	return resp
}
