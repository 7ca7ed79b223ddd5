package handler

import (
	"context"

	"smartchange/internal/checkout"
	"smartchange/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RateService interface {
	Current(ctx context.Context) domain.RateSnapshot
	Refresh(ctx context.Context) domain.RateSnapshot
	Convert(ctx context.Context, amount string, from, to domain.Currency) (string, domain.RateSnapshot, error)
}

type CheckoutService interface {
	Start(ctx context.Context, email string, acceptTerms bool) (*domain.CheckoutSession, error)
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	SetExchange(ctx context.Context, id string, req checkout.ExchangeRequest) (*domain.CheckoutSession, error)
	SetAddress(ctx context.Context, id, address string) (*domain.CheckoutSession, error)
	AddCard(ctx context.Context, id string, in checkout.CardInput) (*domain.CheckoutSession, error)
	SelectCard(ctx context.Context, id, cardID string) (*domain.CheckoutSession, error)
	SubmitReceipt(ctx context.Context, id string, upload checkout.ReceiptUpload) (domain.Receipt, error)
}

type Handler struct {
	tracer   trace.Tracer
	rates    RateService
	checkout CheckoutService
	logger   *zap.Logger
	checks   map[string]HealthCheck
}

func New(
	tracer trace.Tracer,
	rateService RateService,
	checkoutService CheckoutService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tracer:   tracer,
		rates:    rateService,
		checkout: checkoutService,
		logger:   logger,
	}
}

// RegisterRoutes mounts the API. adminKey guards manual rate refreshes; an
// empty key leaves them open.
func (h *Handler) RegisterRoutes(r *gin.Engine, adminKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/currencies", h.ListCurrencies)
	api.GET("/rates", h.GetRates)
	api.POST("/rates/refresh", APIKeyAuth(adminKey), h.RefreshRates)
	api.POST("/convert", h.Convert)
	api.POST("/swap", h.Swap)

	if h.checkout == nil {
		return
	}
	api.POST("/checkout", h.StartCheckout)
	api.GET("/checkout/:id", h.GetCheckout)
	api.PUT("/checkout/:id/exchange", h.SetExchange)
	api.PUT("/checkout/:id/address", h.SetAddress)
	api.POST("/checkout/:id/cards", h.AddCard)
	api.PUT("/checkout/:id/cards/:card_id/select", h.SelectCard)
	api.POST("/checkout/:id/receipt", h.SubmitReceipt)
}
