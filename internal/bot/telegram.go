package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	ratesUsage   = "Usage: /rates [FIAT]"
	convertUsage = "Usage: /convert <amount> <FROM> <TO>\nExample: /convert 1000 USD BTC"
)

type RateSource interface {
	Current(ctx context.Context) domain.RateSnapshot
}

var newBot = tele.NewBot

// StartTelegramBot starts long polling in the background. It returns nil
// without error when token is empty.
func StartTelegramBot(ctx context.Context, token string, rateSource RateSource, logger *zap.Logger) (*tele.Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/rates", func(c tele.Context) error {
		return c.Send(RatesMessage(rateSource.Current(ctx), c.Args()))
	})

	b.Handle("/convert", func(c tele.Context) error {
		return c.Send(ConvertMessage(rateSource.Current(ctx), c.Args()))
	})

	logger.Info("telegram bot started")
	go b.Start()
	return b, nil
}

// RatesMessage renders the rate board, in USD unless a currency is given.
func RatesMessage(snap domain.RateSnapshot, args []string) string {
	base := domain.USD
	if len(args) > 0 {
		c, ok := domain.ParseCurrency(args[0])
		if !ok {
			return fmt.Sprintf("Unknown currency: %s\nSupported: %s\n%s", args[0], supported(), ratesUsage)
		}
		if !c.IsFiat() {
			return fmt.Sprintf("Rates are quoted in fiat, %s is not one.\n%s", c, ratesUsage)
		}
		base = c
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rates in %s\n", base)
	for _, entry := range rates.Board(snap.Rates, base) {
		b.WriteString(entry.String())
		b.WriteByte('\n')
	}
	if snap.Advisory != "" {
		b.WriteString(snap.Advisory)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// ConvertMessage answers /convert with the result and the service fee.
func ConvertMessage(snap domain.RateSnapshot, args []string) string {
	if len(args) != 3 {
		return convertUsage
	}
	from, ok := domain.ParseCurrency(args[1])
	if !ok {
		return fmt.Sprintf("Unknown currency: %s\nSupported: %s", args[1], supported())
	}
	to, ok := domain.ParseCurrency(args[2])
	if !ok {
		return fmt.Sprintf("Unknown currency: %s\nSupported: %s", args[2], supported())
	}

	session := rates.NewSession(snap).WithFrom(from).WithTo(to).WithAmount(args[0])
	switch {
	case session.ToAmount == "":
		return "Amount must be a positive number\n" + convertUsage
	case !session.Ready():
		return fmt.Sprintf("%s → %s: %s", from, to, session.ToAmount)
	}

	msg := fmt.Sprintf("%s\nService fee: %s %s", session.Summary(), session.Fee(), from)
	if snap.Advisory != "" {
		msg += "\n" + snap.Advisory
	}
	return msg
}

func supported() string {
	codes := append(domain.Codes(domain.FiatCurrencies), domain.Codes(domain.CryptoCurrencies)...)
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
