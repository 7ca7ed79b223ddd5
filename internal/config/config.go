package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultReceiptMaxBytes = 5 << 20

type Config struct {
	AppEnv         string
	HTTPPort       int
	RedisURL       string
	TracingEnabled bool

	AdminAPIKey        string
	CORSAllowedOrigins []string

	CoinGeckoBaseURL        string
	CoinGeckoVsCurrencies   []string
	CoinGeckoTimeoutSecs    int
	CoinGeckoRequestsPerMin int
	RatesPollSecs           int

	CheckoutTTLMins int
	ReceiptDelayMs  int
	ReceiptMaxBytes int64

	TelegramBotToken string

	SSHPort        int
	SSHHostKeyPath string
}

func (c *Config) CoinGeckoTimeout() time.Duration {
	return time.Duration(c.CoinGeckoTimeoutSecs) * time.Second
}

func (c *Config) CheckoutTTL() time.Duration {
	return time.Duration(c.CheckoutTTLMins) * time.Minute
}

func (c *Config) ReceiptDelay() time.Duration {
	return time.Duration(c.ReceiptDelayMs) * time.Millisecond
}

// Load reads configuration from the environment. Invalid numbers keep the
// default and are reported on logger.
func Load(logger *zap.Logger) *Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := &Config{
		AppEnv:           strings.TrimSpace(os.Getenv("APP_ENV")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		CoinGeckoBaseURL: strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminAPIKey:      strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		SSHHostKeyPath:   strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH")),
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/smartchange_ed25519"
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")

	cfg.CoinGeckoVsCurrencies = []string{"usd", "eur", "rub"}
	if codes := envList("COINGECKO_VS_CURRENCIES"); len(codes) > 0 {
		for i := range codes {
			codes[i] = strings.ToLower(codes[i])
		}
		cfg.CoinGeckoVsCurrencies = codes
	}

	cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	if origins := envList("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.CORSAllowedOrigins = origins
	}

	cfg.HTTPPort = envInt(logger, "HTTP_PORT", 8080, 1)
	cfg.CoinGeckoTimeoutSecs = envInt(logger, "COINGECKO_TIMEOUT_SECS", 10, 1)
	cfg.CoinGeckoRequestsPerMin = envInt(logger, "COINGECKO_REQUESTS_PER_MIN", 8, 1)
	cfg.RatesPollSecs = envInt(logger, "RATES_POLL_SECS", 0, 0)
	cfg.CheckoutTTLMins = envInt(logger, "CHECKOUT_TTL_MINS", 30, 1)
	cfg.ReceiptDelayMs = envInt(logger, "RECEIPT_DELAY_MS", 1500, 0)
	cfg.ReceiptMaxBytes = int64(envInt(logger, "RECEIPT_MAX_BYTES", defaultReceiptMaxBytes, 1))
	cfg.SSHPort = envInt(logger, "SSH_PORT", 2222, 1)

	return cfg
}

func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt(logger *zap.Logger, key string, def, min int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		logger.Warn("invalid integer setting, using default",
			zap.String("key", key), zap.String("value", v), zap.Int("default", def))
		return def
	}
	return n
}
