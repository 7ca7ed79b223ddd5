package rates

import (
	"fmt"

	"smartchange/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	DefaultFromAmount = "1000.00"
	boardSize         = 4
	notAvailable      = "N/A"
)

// Session is the state of one conversion widget. Transitions return a new
// value and never mutate the receiver.
type Session struct {
	FromAmount string              `json:"from_amount"`
	ToAmount   string              `json:"to_amount"`
	From       domain.Currency     `json:"from"`
	To         domain.Currency     `json:"to"`
	Snapshot   domain.RateSnapshot `json:"-"`
}

// NewSession starts a widget at 1000.00 USD → BTC.
func NewSession(snap domain.RateSnapshot) Session {
	return Session{
		FromAmount: DefaultFromAmount,
		From:       domain.USD,
		To:         domain.BTC,
		Snapshot:   snap,
	}.recompute()
}

func (s Session) WithAmount(amount string) Session {
	s.FromAmount = amount
	return s.recompute()
}

func (s Session) WithFrom(c domain.Currency) Session {
	s.From = c
	return s.recompute()
}

func (s Session) WithTo(c domain.Currency) Session {
	s.To = c
	return s.recompute()
}

// WithSnapshot replaces the rates and recomputes the output.
func (s Session) WithSnapshot(snap domain.RateSnapshot) Session {
	s.Snapshot = snap
	return s.recompute()
}

// Swap exchanges the selected currencies. A numeric output becomes the new
// input; otherwise the input is kept. The conversion is always recomputed,
// so a missing reverse rate shows the unavailable marker.
func (s Session) Swap() Session {
	next := s
	next.From, next.To = s.To, s.From
	if _, err := ParseAmount(s.ToAmount); err == nil {
		next.FromAmount = s.ToAmount
	}
	return next.recompute()
}

func (s Session) recompute() Session {
	s.ToAmount = Display(Convert(s.Snapshot.Rates, s.FromAmount, s.From, s.To))
	return s
}

// Ready reports whether ToAmount holds a numeric result.
func (s Session) Ready() bool {
	_, err := ParseAmount(s.ToAmount)
	return err == nil
}

// Fee is the service fee in the source currency.
func (s Session) Fee() string {
	return ServiceFee(s.FromAmount)
}

// Summary reads like "0.03300000 BTC for 1000.00 USD".
func (s Session) Summary() string {
	return fmt.Sprintf("%s %s for %s %s", s.ToAmount, s.To, s.FromAmount, s.From)
}

// BoardEntry is one line of the current-rates panel.
type BoardEntry struct {
	Crypto domain.Currency `json:"crypto"`
	Base   domain.Currency `json:"base"`
	Rate   string          `json:"rate"`
}

func (e BoardEntry) String() string {
	return fmt.Sprintf("1 %s = %s %s", e.Crypto, e.Rate, e.Base)
}

// Board lists the first four crypto assets priced in base, "N/A" when no
// rate exists.
func Board(m domain.Matrix, base domain.Currency) []BoardEntry {
	n := boardSize
	if n > len(domain.CryptoCurrencies) {
		n = len(domain.CryptoCurrencies)
	}
	entries := make([]BoardEntry, 0, n)
	for _, crypto := range domain.CryptoCurrencies[:n] {
		rate := notAvailable
		if r, ok := m.Rate(crypto.Code, base); ok {
			rate = decimal.NewFromFloat(r).StringFixed(2)
		}
		entries = append(entries, BoardEntry{Crypto: crypto.Code, Base: base, Rate: rate})
	}
	return entries
}

// Board is the rate panel priced in the session's source currency.
func (s Session) Board() []BoardEntry {
	return Board(s.Snapshot.Rates, s.From)
}
