// Command gateway is the Gateway process bootstrap: it dials the
// Analytics Engine (C7), wires the Statistics Composition Service (C8)
// behind the connect-go RPC Server (C9), gates it with the CredentialStore
// stub, and serves everything over HTTP/1.1 + H2C, the same construction
// the teacher's services/gateway-svc/cmd/main.go uses.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hctx/analytics-platform/internal/gateway/authstub"
	"github.com/hctx/analytics-platform/internal/gateway/engineclient"
	"github.com/hctx/analytics-platform/internal/gateway/httphealth"
	gatewayrpc "github.com/hctx/analytics-platform/internal/gateway/rpcserver"
	"github.com/hctx/analytics-platform/internal/gateway/statistics"
	"github.com/hctx/analytics-platform/pkg/config"
	"github.com/hctx/analytics-platform/pkg/logger"
	"github.com/hctx/analytics-platform/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("error")
		logger.Log.Error("failed to load config", "error", err)
		return
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	logger.Log.Info("starting gateway",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := engineclient.New(ctx, cfg.Engine)
	if err != nil {
		logger.Log.Error("failed to connect to analytics engine", "error", err)
		return
	}
	defer engine.Close()

	stats := statistics.New(engine, observability.Get())
	gwServer := gatewayrpc.New(stats)
	gate := authstub.New(cfg.Auth)

	mux := http.NewServeMux()
	path, handler := gatewayrpc.NewGatewayServiceHandler(gwServer, connect.WithInterceptors(gate.Interceptor()))
	mux.Handle(path, handler)

	healthMux := httphealth.Handler(engine)
	mux.Handle("/health", healthMux)
	mux.Handle("/ready", healthMux)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      h2c.NewHandler(mux, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Log.Info("gateway listening",
			"addr", cfg.HTTP.ListenAddr,
			"protocol", "HTTP/1.1 + H2C (connect)",
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("gateway server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down gateway...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("gateway shutdown error", "error", err)
	}

	logger.Log.Info("gateway stopped")
}
