// Command engine is the Analytics Engine process bootstrap: it wires
// the Registry (C1), Alternate-Language Bridge (C3), Dispatcher (C4)
// and RPC Server (C6) together behind pkg/server's grpc.Server, the
// same shape the teacher's services/*-svc/cmd/main.go binaries use.
package main

import (
	"github.com/hctx/analytics-platform/internal/engine/bridge"
	"github.com/hctx/analytics-platform/internal/engine/dispatch"
	"github.com/hctx/analytics-platform/internal/engine/registry"
	"github.com/hctx/analytics-platform/internal/engine/rpcserver"
	"github.com/hctx/analytics-platform/pkg/config"
	"github.com/hctx/analytics-platform/pkg/logger"
	"github.com/hctx/analytics-platform/pkg/observability"
	"github.com/hctx/analytics-platform/pkg/server"
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

	logger.Log.Info("starting analytics engine",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var br *bridge.Bridge
	if cfg.Bridge.Enabled {
		br = bridge.Probe(4)
	} else {
		br = bridge.Disabled()
	}

	var bridgeDescriptors []registry.Descriptor
	if br.Available() {
		for _, name := range br.EntryPoints() {
			bridgeDescriptors = append(bridgeDescriptors, registry.Descriptor{Name: name, Alternate: true})
		}
	}
	reg := registry.New(bridgeDescriptors)

	sink := observability.Get()
	dispatcher := dispatch.New(reg, br, sink)

	engineServer := rpcserver.New(dispatcher, reg, br)

	grpcServer := server.New(cfg)
	rpcserver.RegisterEngineServer(grpcServer.GetEngine(), engineServer)

	if err := grpcServer.Run(); err != nil {
		logger.Log.Error("engine server exited with error", "error", err)
	}
}
