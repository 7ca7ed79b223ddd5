package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"smartchange/internal/domain"
)

const cardNumberLength = 16

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cvvPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// CardInput is a card as entered by the customer.
type CardInput struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// ValidateCard checks the card cosmetically and returns it masked. The CVV is
// checked and dropped. All failing fields are reported in one *CardError.
func ValidateCard(in CardInput, now time.Time) (domain.Card, error) {
	fields := make(map[string]string)

	digits := digitsOnly(in.Number)
	switch {
	case len(digits) != cardNumberLength:
		fields["number"] = "card number must have 16 digits"
	case !luhnValid(digits):
		fields["number"] = "card number is invalid"
	}

	if msg := checkExpiry(strings.TrimSpace(in.Expiry), now); msg != "" {
		fields["expiry"] = msg
	}
	if !cvvPattern.MatchString(strings.TrimSpace(in.CVV)) {
		fields["cvv"] = "CVV must have 3 or 4 digits"
	}

	if len(fields) > 0 {
		return domain.Card{}, &CardError{Fields: fields}
	}

	cardType := domain.CardMastercard
	if strings.HasPrefix(digits, "4") {
		cardType = domain.CardVisa
	}
	return domain.Card{
		Number: MaskNumber(digits),
		Expiry: strings.TrimSpace(in.Expiry),
		Type:   cardType,
	}, nil
}

// MaskNumber keeps the last four digits: "************1234".
func MaskNumber(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// A card is valid through the last day of its expiry month.
func checkExpiry(expiry string, now time.Time) string {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return "expiry must be MM/YY"
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	now = now.UTC()
	if 2000+year < now.Year() || (2000+year == now.Year() && time.Month(month) < now.Month()) {
		return "card has expired"
	}
	return ""
}
