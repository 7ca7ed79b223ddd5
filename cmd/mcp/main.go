package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smartchange/internal/cache"
	"smartchange/internal/config"
	"smartchange/internal/metrics"
	"smartchange/internal/provider"
	"smartchange/internal/service"
	"smartchange/pkg/logger"
	"smartchange/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	loadEnvFunc      = godotenv.Load
	newLoggerFunc    = logger.New
	loadConfigFunc   = config.Load
	connectRedisFunc = cache.Connect
	initTracerFunc   = tracing.InitTracer
	newProviderFunc  = func(tracer trace.Tracer, cfg *config.Config) service.PriceProvider {
		return provider.NewCoinGeckoProvider(tracer, provider.CoinGeckoConfig{
			BaseURL:           cfg.CoinGeckoBaseURL,
			VsCurrencies:      cfg.CoinGeckoVsCurrencies,
			Timeout:           cfg.CoinGeckoTimeout(),
			RequestsPerMinute: cfg.CoinGeckoRequestsPerMin,
		})
	}
	runServerFunc = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
)

// The MCP server speaks JSON-RPC on stdout, so all logging goes to stderr.
func main() {
	_ = loadEnvFunc()
	log := newLoggerFunc("smartchange-mcp", os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()
	cfg := loadConfigFunc(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, "smartchange-mcp", cfg.TracingEnabled)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	var rateCache service.RedisClient
	redisClient, err := connectRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, rates will not be shared", zap.Error(err))
	} else {
		rateCache = redisClient
		defer func(c *redis.Client) { _ = c.Close() }(redisClient)
	}

	rateService := service.NewRateService(tracer, newProviderFunc(tracer, cfg), rateCache, log, metrics.New(nil))

	server := mcp.NewServer(&mcp.Implementation{Name: "smartchange", Version: "1.0.0"}, nil)
	registerTools(server, rateService)

	log.Info("MCP server running on stdio")
	if err := runServerFunc(ctx, server); err != nil && ctx.Err() == nil {
		log.Error("mcp server stopped", zap.Error(err))
	}
}
