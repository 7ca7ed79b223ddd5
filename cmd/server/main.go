package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartchange/internal/bot"
	"smartchange/internal/cache"
	"smartchange/internal/checkout"
	"smartchange/internal/config"
	"smartchange/internal/handler"
	"smartchange/internal/job"
	"smartchange/internal/metrics"
	"smartchange/internal/provider"
	"smartchange/internal/service"
	"smartchange/pkg/logger"
	"smartchange/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	_ "smartchange/docs"
)

const serviceName = "smartchange"

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
	newRateServiceFunc     = service.NewRateService
	newRatePollerFunc      = job.NewRatePoller
	startPollerFunc        = func(p *job.RatePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           SmartChange API
// @version         1.0
// @description     Fiat and crypto conversion with live rates, approximate fallbacks and a checkout flow.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()
	log := newLoggerFunc(serviceName, os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()

	cfg := loadConfigFunc(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, serviceName, cfg.TracingEnabled)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	redisClient, err := connectRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	rateService := newRateServiceFunc(tracer, newProviderFunc(tracer, cfg), redisClient, log, m)
	checkoutService := checkout.NewService(tracer,
		checkout.NewRedisStore(redisClient, cfg.CheckoutTTL()),
		rateService, log,
		checkout.Config{ReceiptDelay: cfg.ReceiptDelay(), ReceiptMaxBytes: cfg.ReceiptMaxBytes},
	)

	// Background refresh is off unless RATES_POLL_SECS is set.
	poller := newRatePollerFunc(tracer, rateService, log, cfg.RatesPollSecs)
	startPollerFunc(poller, ctx)

	telegram, err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, rateService, log)
	if err != nil {
		log.Error("telegram bot disabled", zap.Error(err))
	}

	h := newHandlerFunc(tracer, rateService, checkoutService, log)
	h.AddHealthCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestLogger(log), handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r, cfg.AdminAPIKey)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("shutting down server")

	cancel()
	if telegram != nil {
		telegram.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
