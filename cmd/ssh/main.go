package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"smartchange/internal/cache"
	"smartchange/internal/config"
	"smartchange/internal/metrics"
	"smartchange/internal/provider"
	"smartchange/internal/service"
	"smartchange/internal/tui"
	"smartchange/pkg/logger"
	"smartchange/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
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
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	log := newLoggerFunc("smartchange-ssh", os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()
	cfg := loadConfigFunc(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "smartchange-ssh", cfg.TracingEnabled)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Redis only warms the rate cache here; the widget works without it.
	var rateCache service.RedisClient
	redisClient, err := connectRedisFunc(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, rates will not be shared", zap.Error(err))
	} else {
		rateCache = redisClient
		defer func(c *redis.Client) { _ = c.Close() }(redisClient)
	}

	rateService := service.NewRateService(tracer, newProviderFunc(tracer, cfg), rateCache, log, metrics.New(nil))

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewWidgetModel(s.Context(), rateService)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatal("failed to create SSH server", zap.Error(err))
	}

	if srv != nil {
		go func() {
			log.Info("SSH server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Error("SSH server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("SSH server shutdown error", zap.Error(err))
		}
	}

	log.Info("SSH server exited")
}
