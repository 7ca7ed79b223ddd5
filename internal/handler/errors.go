package handler

import (
	"errors"
	"net/http"

	"smartchange/internal/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var cardErr *checkout.CardError
	switch {
	case errors.As(err, &cardErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card", "fields": cardErr.Fields})
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, checkout.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrTermsNotAccepted),
		errors.Is(err, checkout.ErrInvalidEmail),
		errors.Is(err, checkout.ErrInvalidPair),
		errors.Is(err, checkout.ErrInvalidAmount),
		errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, checkout.ErrReceiptRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrReceiptTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrSessionIncomplete),
		errors.Is(err, checkout.ErrNoCardSelected),
		errors.Is(err, checkout.ErrRateUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
