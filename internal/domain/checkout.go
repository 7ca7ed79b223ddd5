package domain

import "time"

// ExchangeDetails is the purchase a checkout session is paying for.
type ExchangeDetails struct {
	FromAmount   string   `json:"from_amount"`
	ToAmount     string   `json:"to_amount"`
	FromCurrency Currency `json:"from_currency"`
	ToCurrency   Currency `json:"to_currency"`
	Email        string   `json:"email"`
	Rate         float64  `json:"rate"`
}

type CardType string

const (
	CardVisa       CardType = "visa"
	CardMastercard CardType = "mastercard"
)

// Card is a payment card as kept in a checkout session. Only the masked
// number is stored; the CVV never is.
type Card struct {
	ID     string   `json:"id"`
	Number string   `json:"number"`
	Expiry string   `json:"expiry"`
	Type   CardType `json:"type"`
}

// CheckoutSession is the transient state handed off between checkout steps.
type CheckoutSession struct {
	ID             string           `json:"id"`
	Email          string           `json:"email"`
	Exchange       *ExchangeDetails `json:"exchange_details,omitempty"`
	CryptoAddress  string           `json:"crypto_address,omitempty"`
	Cards          []Card           `json:"cards,omitempty"`
	SelectedCardID string           `json:"selected_card_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SelectedCard returns the selected card, if any.
func (s *CheckoutSession) SelectedCard() (Card, bool) {
	for _, c := range s.Cards {
		if c.ID == s.SelectedCardID {
			return c, true
		}
	}
	return Card{}, false
}

// Receipt acknowledges a submitted payment receipt.
type Receipt struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Exchange      ExchangeDetails `json:"exchange_details"`
	CryptoAddress string          `json:"crypto_address"`
	Card          Card            `json:"card"`
	FileName      string          `json:"file_name"`
	FileSize      int64           `json:"file_size"`
	Comment       string          `json:"comment,omitempty"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}
