package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"smartchange/internal/config"
	"smartchange/internal/domain"
	"smartchange/internal/service"

	"github.com/charmbracelet/ssh"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type nopProvider struct{}

func (nopProvider) FetchPrices(ctx context.Context) (domain.Prices, error) {
	return nil, errors.New("offline")
}

func TestMainBootstrap(t *testing.T) {
	var serverCreated bool
	restore := stubSSHDeps(&serverCreated)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if !serverCreated {
		t.Fatal("expected wish server to be created")
	}
}

func stubSSHDeps(serverCreated *bool) func() {
	origLoadEnv := loadEnvFunc
	origNewLogger := newLoggerFunc
	origLoadConfig := loadConfigFunc
	origConnectRedis := connectRedisFunc
	origInitTracer := initTracerFunc
	origNewProvider := newProviderFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	newLoggerFunc = func(string, string) *zap.Logger { return zap.NewNop() }
	loadConfigFunc = func(*zap.Logger) *config.Config {
		return &config.Config{
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	connectRedisFunc = func(context.Context, string, *zap.Logger) (*redis.Client, error) {
		return nil, errors.New("no redis in tests")
	}
	initTracerFunc = func(ctx context.Context, name string, enabled bool) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newProviderFunc = func(trace.Tracer, *config.Config) service.PriceProvider { return nopProvider{} }
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		*serverCreated = true
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		newLoggerFunc = origNewLogger
		loadConfigFunc = origLoadConfig
		connectRedisFunc = origConnectRedis
		initTracerFunc = origInitTracer
		newProviderFunc = origNewProvider
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
