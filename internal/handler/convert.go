package handler

import (
	"net/http"

	"smartchange/internal/domain"
	"smartchange/internal/metrics"
	"smartchange/internal/rates"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type convertRequest struct {
	Amount string `json:"amount"`
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
}

// ConvertResponse carries the widget output. Amount is empty for an invalid
// amount and "rate unavailable" when the pair has no rate.
type ConvertResponse struct {
	Amount   string `json:"amount"`
	Status   string `json:"status"`
	Fee      string `json:"fee"`
	Summary  string `json:"summary"`
	Advisory string `json:"advisory,omitempty"`
}

type swapRequest struct {
	FromAmount string `json:"from_amount"`
	ToAmount   string `json:"to_amount"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
}

// SessionView is a conversion widget state after a transition.
type SessionView struct {
	FromAmount string             `json:"from_amount"`
	ToAmount   string             `json:"to_amount"`
	From       domain.Currency    `json:"from"`
	To         domain.Currency    `json:"to"`
	Ready      bool               `json:"ready"`
	Fee        string             `json:"fee"`
	Summary    string             `json:"summary"`
	Advisory   string             `json:"advisory,omitempty"`
	Board      []rates.BoardEntry `json:"board"`
}

// Convert godoc
// @Summary      Convert an amount
// @Description  Converts amount between two supported currencies using the current rates
// @Tags         convert
// @Accept       json
// @Produce      json
// @Param        request  body  convertRequest  true  "Amount and currency pair"
// @Success      200  {object}  ConvertResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/convert [post]
func (h *Handler) Convert(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.convert")
	defer span.End()

	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, ok := parsePair(c, req.From, req.To)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("from", string(from)), attribute.String("to", string(to)))

	value, snap, err := h.rates.Convert(ctx, req.Amount, from, to)

	session := rates.Session{FromAmount: req.Amount, ToAmount: rates.Display(value, err), From: from, To: to}
	c.JSON(http.StatusOK, ConvertResponse{
		Amount:   session.ToAmount,
		Status:   metrics.ConversionStatus(err),
		Fee:      session.Fee(),
		Summary:  session.Summary(),
		Advisory: snap.Advisory,
	})
}

// Swap godoc
// @Summary      Swap the currency pair
// @Description  Exchanges from and to. A numeric to_amount becomes the new from_amount and the output is recomputed.
// @Tags         convert
// @Accept       json
// @Produce      json
// @Param        request  body  swapRequest  true  "Current widget state"
// @Success      200  {object}  SessionView
// @Failure      400  {object}  map[string]string
// @Router       /api/swap [post]
func (h *Handler) Swap(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.swap")
	defer span.End()

	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, ok := parsePair(c, req.From, req.To)
	if !ok {
		return
	}

	session := rates.Session{
		FromAmount: req.FromAmount,
		ToAmount:   req.ToAmount,
		From:       from,
		To:         to,
		Snapshot:   h.rates.Current(ctx),
	}.Swap()
	c.JSON(http.StatusOK, newSessionView(session))
}

func parsePair(c *gin.Context, rawFrom, rawTo string) (domain.Currency, domain.Currency, bool) {
	from, ok := domain.ParseCurrency(rawFrom)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency: " + rawFrom})
		return "", "", false
	}
	to, ok := domain.ParseCurrency(rawTo)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency: " + rawTo})
		return "", "", false
	}
	return from, to, true
}

func newSessionView(s rates.Session) SessionView {
	return SessionView{
		FromAmount: s.FromAmount,
		ToAmount:   s.ToAmount,
		From:       s.From,
		To:         s.To,
		Ready:      s.Ready(),
		Fee:        s.Fee(),
		Summary:    s.Summary(),
		Advisory:   s.Snapshot.Advisory,
		Board:      s.Board(),
	}
}
