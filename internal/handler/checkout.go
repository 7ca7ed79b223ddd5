package handler

import (
	"net/http"
	"strings"

	"smartchange/internal/checkout"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type startCheckoutRequest struct {
	Email       string `json:"email" binding:"required"`
	AcceptTerms bool   `json:"accept_terms"`
}

type exchangeRequest struct {
	FromAmount string `json:"from_amount" binding:"required"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type cardRequest struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// StartCheckout godoc
// @Summary      Start a checkout
// @Description  Opens a checkout session for a valid email once the terms are accepted
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request  body  startCheckoutRequest  true  "Email and terms acceptance"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/checkout [post]
func (h *Handler) StartCheckout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.start-checkout")
	defer span.End()

	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.checkout.Start(ctx, req.Email, req.AcceptTerms)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID})
}

// GetCheckout godoc
// @Summary      Get a checkout session
// @Tags         checkout
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  domain.CheckoutSession
// @Failure      404  {object}  map[string]string
// @Router       /api/checkout/{id} [get]
func (h *Handler) GetCheckout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-checkout")
	defer span.End()

	session, err := h.checkout.Get(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetExchange godoc
// @Summary      Choose the exchange
// @Description  Prices a fiat to crypto purchase with the current rates and stores it on the session
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id       path  string           true  "Session ID"
// @Param        request  body  exchangeRequest  true  "Amount and currency pair"
// @Success      200  {object}  domain.CheckoutSession
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/checkout/{id}/exchange [put]
func (h *Handler) SetExchange(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.set-exchange")
	defer span.End()

	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, ok := parsePair(c, req.From, req.To)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("from", string(from)), attribute.String("to", string(to)))

	session, err := h.checkout.SetExchange(ctx, c.Param("id"), checkout.ExchangeRequest{
		FromAmount: req.FromAmount,
		From:       from,
		To:         to,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetAddress godoc
// @Summary      Set the crypto address
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "Session ID"
// @Param        request  body  addressRequest  true  "Wallet address"
// @Success      200  {object}  domain.CheckoutSession
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/checkout/{id}/address [put]
func (h *Handler) SetAddress(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.set-address")
	defer span.End()

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.checkout.SetAddress(ctx, c.Param("id"), req.Address)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// AddCard godoc
// @Summary      Add a payment card
// @Description  Validates the card, stores it masked and selects it. The CVV is never stored.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id       path  string       true  "Session ID"
// @Param        request  body  cardRequest  true  "Card details"
// @Success      201  {object}  domain.CheckoutSession
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/checkout/{id}/cards [post]
func (h *Handler) AddCard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-card")
	defer span.End()

	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.checkout.AddCard(ctx, c.Param("id"), checkout.CardInput{
		Number: req.Number,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// SelectCard godoc
// @Summary      Select a stored card
// @Tags         checkout
// @Produce      json
// @Param        id       path  string  true  "Session ID"
// @Param        card_id  path  string  true  "Card ID"
// @Success      200  {object}  domain.CheckoutSession
// @Failure      404  {object}  map[string]string
// @Router       /api/checkout/{id}/cards/{card_id}/select [put]
func (h *Handler) SelectCard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.select-card")
	defer span.End()

	session, err := h.checkout.SelectCard(ctx, c.Param("id"), c.Param("card_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitReceipt godoc
// @Summary      Submit the payment receipt
// @Description  Finishes the checkout. Requires exchange details, an address and a selected card. The session is removed on success.
// @Tags         checkout
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      string  true   "Session ID"
// @Param        receipt  formData  file    true   "Receipt file"
// @Param        comment  formData  string  false  "Comment"
// @Success      201  {object}  domain.Receipt
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      413  {object}  map[string]string
// @Router       /api/checkout/{id}/receipt [post]
func (h *Handler) SubmitReceipt(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.submit-receipt")
	defer span.End()

	upload := checkout.ReceiptUpload{Comment: c.PostForm("comment")}
	if fh, err := c.FormFile("receipt"); err == nil {
		upload.FileName = strings.TrimSpace(fh.Filename)
		upload.Size = fh.Size
	}
	span.SetAttributes(attribute.Int64("receipt.size", upload.Size))

	receipt, err := h.checkout.SubmitReceipt(ctx, c.Param("id"), upload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}
