package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zalogw/gateway/internal/adminhttp"
	"github.com/zalogw/gateway/internal/config"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/pluginstore"
	"github.com/zalogw/gateway/internal/registry"
	"github.com/zalogw/gateway/internal/session"
	"github.com/zalogw/gateway/internal/tracing"
	"github.com/zalogw/gateway/internal/zalodriver"
	"github.com/zalogw/gateway/internal/zalopersonal/protocol"
)

func runGateway() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    tracingEndpoint(cfg),
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
		Protocol:    cfg.Telemetry.Protocol,
	})
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	pluginsDir := config.ExpandHome(cfg.Plugins.StorageDir)
	store, err := pluginstore.Open(pluginsDir)
	if err != nil {
		slog.Error("failed to open plugin store", "error", err)
		os.Exit(1)
	}

	reg := registry.New()
	sessMgr := session.NewManager(reg, newDriverFactory(cfg), store.Load)

	stopWatch, err := store.Watch(func() {
		slog.Info("plugin configuration changed on disk")
	})
	if err != nil {
		slog.Warn("plugin store watch disabled", "error", err)
	} else {
		defer stopWatch()
	}

	admin := adminhttp.New(reg, sessMgr, store, cfg.Gateway.Token)
	addr := fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: admin.Mux(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("graceful shutdown initiated", "signal", sig)
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("admin http shutdown failed", "error", err)
		}
	}()

	slog.Info("zalogw gateway starting", "version", Version, "addr", addr, "plugins_dir", pluginsDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("admin http server error", "error", err)
		os.Exit(1)
	}
}

// tracingEndpoint returns cfg's telemetry endpoint, or the empty string if
// telemetry is disabled — tracing.Setup treats an empty endpoint as "export
// nothing" regardless of how Enabled got set.
func tracingEndpoint(cfg *config.Config) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return cfg.Telemetry.Endpoint
}

// newDriverFactory builds a session.Factory that constructs a fresh Zalo
// Personal driver for every new login flow. Only session.ZaloPersonal is
// wired today.
func newDriverFactory(cfg *config.Config) session.Factory {
	return func(p session.Protocol) (driver.Driver, error) {
		if p != session.ZaloPersonal {
			return nil, fmt.Errorf("zalogw: unsupported protocol %q", p)
		}
		sess := protocol.NewSession()
		return zalodriver.New(sess, slog.Default()), nil
	}
}
