package checkout

import (
	"errors"
	"testing"
	"time"

	"smartchange/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func TestValidateCard_Visa(t *testing.T) {
	// Act
	card, err := ValidateCard(CardInput{Number: "4111 1111 1111 1111", Expiry: "10/26", CVV: "123"}, cardNow)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "************1111", card.Number)
	assert.Equal(t, domain.CardVisa, card.Type)
	assert.Equal(t, "10/26", card.Expiry)
}

func TestValidateCard_Mastercard(t *testing.T) {
	card, err := ValidateCard(CardInput{Number: "5555-5555-5555-4444", Expiry: "01/30", CVV: "1234"}, cardNow)

	require.NoError(t, err)
	assert.Equal(t, "************4444", card.Number)
	assert.Equal(t, domain.CardMastercard, card.Type)
}

func TestValidateCard_Failures(t *testing.T) {
	tests := []struct {
		name   string
		in     CardInput
		fields []string
	}{
		{"short number", CardInput{Number: "4111 1111", Expiry: "10/26", CVV: "123"}, []string{"number"}},
		{"bad checksum", CardInput{Number: "4111111111111112", Expiry: "10/26", CVV: "123"}, []string{"number"}},
		{"bad expiry format", CardInput{Number: "4111111111111111", Expiry: "13/26", CVV: "123"}, []string{"expiry"}},
		{"expired last month", CardInput{Number: "4111111111111111", Expiry: "09/26", CVV: "123"}, []string{"expiry"}},
		{"expired last year", CardInput{Number: "4111111111111111", Expiry: "12/25", CVV: "123"}, []string{"expiry"}},
		{"short cvv", CardInput{Number: "4111111111111111", Expiry: "10/26", CVV: "12"}, []string{"cvv"}},
		{"letters in cvv", CardInput{Number: "4111111111111111", Expiry: "10/26", CVV: "12a"}, []string{"cvv"}},
		{"everything wrong", CardInput{}, []string{"number", "expiry", "cvv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCard(tt.in, cardNow)

			var cardErr *CardError
			require.True(t, errors.As(err, &cardErr), "expected CardError, got %v", err)
			assert.Len(t, cardErr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, cardErr.Fields, f)
			}
		})
	}
}

func TestCardErrorMessageIsSorted(t *testing.T) {
	err := &CardError{Fields: map[string]string{"number": "n", "cvv": "c"}}

	assert.Equal(t, "invalid card: cvv: c; number: n", err.Error())
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "************1234", MaskNumber("1111222233331234"))
	assert.Equal(t, "123", MaskNumber("123"))
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, luhnValid("4111111111111111"))
	assert.True(t, luhnValid("5555555555554444"))
	assert.False(t, luhnValid("1234567812345678"))
}
