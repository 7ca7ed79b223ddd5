package checkout

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultReceiptDelay    = 1500 * time.Millisecond
	DefaultReceiptMaxBytes = 5 << 20
)

type Store interface {
	Save(ctx context.Context, session *domain.CheckoutSession) error
	Load(ctx context.Context, id string) (*domain.CheckoutSession, error)
	Delete(ctx context.Context, id string) error
}

// RateSource supplies the snapshot exchanges are priced with.
type RateSource interface {
	Current(ctx context.Context) domain.RateSnapshot
}

type Config struct {
	ReceiptDelay    time.Duration
	ReceiptMaxBytes int64
}

// ExchangeRequest is the purchase chosen on the conversion widget.
type ExchangeRequest struct {
	FromAmount string
	From       domain.Currency
	To         domain.Currency
}

// ReceiptUpload describes the uploaded payment receipt.
type ReceiptUpload struct {
	FileName string
	Size     int64
	Comment  string
}

// Service walks a checkout session through its steps: start, exchange,
// address, card, receipt.
type Service struct {
	tracer   trace.Tracer
	store    Store
	rates    RateSource
	logger   *zap.Logger
	delay    time.Duration
	maxBytes int64

	now   func() time.Time
	newID func() string
}

func NewService(tracer trace.Tracer, store Store, rateSource RateSource, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReceiptMaxBytes <= 0 {
		cfg.ReceiptMaxBytes = DefaultReceiptMaxBytes
	}
	if cfg.ReceiptDelay < 0 {
		cfg.ReceiptDelay = 0
	}
	return &Service{
		tracer:   tracer,
		store:    store,
		rates:    rateSource,
		logger:   logger,
		delay:    cfg.ReceiptDelay,
		maxBytes: cfg.ReceiptMaxBytes,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

func (s *Service) Start(ctx context.Context, email string, acceptTerms bool) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.start")
	defer span.End()

	if !acceptTerms {
		return nil, ErrTermsNotAccepted
	}
	email, ok := normalizeEmail(email)
	if !ok {
		return nil, ErrInvalidEmail
	}

	session := &domain.CheckoutSession{
		ID:        s.newID(),
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("checkout.id", session.ID))
	s.logger.Info("checkout started", zap.String("session_id", session.ID))
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.get")
	defer span.End()

	return s.store.Load(ctx, id)
}

// SetExchange prices the request with the current rates and stores it.
func (s *Service) SetExchange(ctx context.Context, id string, req ExchangeRequest) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.set-exchange")
	defer span.End()

	if !req.From.IsFiat() || !req.To.IsCrypto() {
		return nil, ErrInvalidPair
	}
	amount, err := rates.ParseAmount(req.FromAmount)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := s.rates.Current(ctx)
	rate, ok := snap.Rates.Rate(req.From, req.To)
	if !ok {
		return nil, ErrRateUnavailable
	}
	fromAmount := rates.Format(amount, req.From)
	toAmount, err := rates.Convert(snap.Rates, fromAmount, req.From, req.To)
	if err != nil {
		return nil, err
	}

	session.Exchange = &domain.ExchangeDetails{
		FromAmount:   fromAmount,
		ToAmount:     toAmount,
		FromCurrency: req.From,
		ToCurrency:   req.To,
		Email:        session.Email,
		Rate:         rate,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("rates.source", string(snap.Source)))
	return session, nil
}

func (s *Service) SetAddress(ctx context.Context, id, address string) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.set-address")
	defer span.End()

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.CryptoAddress = address
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddCard validates the card, stores it masked and selects it.
func (s *Service) AddCard(ctx context.Context, id string, in CardInput) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.add-card")
	defer span.End()

	card, err := ValidateCard(in, s.now())
	if err != nil {
		return nil, err
	}
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	card.ID = s.newID()
	session.Cards = append(session.Cards, card)
	session.SelectedCardID = card.ID
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) SelectCard(ctx context.Context, id, cardID string) (*domain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.select-card")
	defer span.End()

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range session.Cards {
		if c.ID == cardID {
			session.SelectedCardID = cardID
			if err := s.store.Save(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
	}
	return nil, ErrCardNotFound
}

// SubmitReceipt finishes the checkout. After the processing delay the
// session is removed; a cancelled ctx leaves it in place.
func (s *Service) SubmitReceipt(ctx context.Context, id string, upload ReceiptUpload) (domain.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.submit-receipt")
	defer span.End()

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}
	if session.Exchange == nil || session.CryptoAddress == "" {
		return domain.Receipt{}, ErrSessionIncomplete
	}
	card, ok := session.SelectedCard()
	if !ok {
		return domain.Receipt{}, ErrNoCardSelected
	}
	if upload.FileName == "" || upload.Size <= 0 {
		return domain.Receipt{}, ErrReceiptRequired
	}
	if upload.Size > s.maxBytes {
		return domain.Receipt{}, ErrReceiptTooLarge
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:            s.newID(),
		SessionID:     session.ID,
		Exchange:      *session.Exchange,
		CryptoAddress: session.CryptoAddress,
		Card:          card,
		FileName:      upload.FileName,
		FileSize:      upload.Size,
		Comment:       strings.TrimSpace(upload.Comment),
		SubmittedAt:   s.now().UTC(),
	}
	s.logger.Info("receipt submitted",
		zap.String("session_id", session.ID),
		zap.String("receipt_id", receipt.ID),
		zap.Int64("file_size", upload.Size),
	)
	return receipt, nil
}

func normalizeEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		return "", false
	}
	return email, true
}
