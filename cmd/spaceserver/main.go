// Package main provides the space server binary: the real-time
// multiplayer session engine serving websocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/config"
	"github.com/nexus-xr/nexus/internal/observability"
	"github.com/nexus-xr/nexus/internal/room"
	"github.com/nexus-xr/nexus/internal/server"
	"github.com/nexus-xr/nexus/internal/space"
	"github.com/nexus-xr/nexus/internal/transport/httpapi"
	"github.com/nexus-xr/nexus/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting space server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("tick_interval", cfg.Room.TickInterval),
	)

	catalog := space.Default()
	if path := cfg.Environments.CatalogPath; path != "" {
		catalog, err = space.LoadCatalogFromFile(path)
		if err != nil {
			logger.Fatal("loading environment catalog", zap.Error(err))
		}
	}
	logger.Info("environment catalog loaded",
		zap.Int("environments", catalog.Len()),
		zap.String("default", catalog.DefaultKey()),
	)

	registry := room.NewRegistry(catalog, room.Config{
		TickInterval: cfg.Room.TickInterval,
		QueueSize:    cfg.Room.QueueSize,
	}, logger)

	wsServer := ws.NewServer(registry, cfg.Room, logger)
	apiHandler := httpapi.NewHandler(registry, logger)
	router := httpapi.NewRouter(apiHandler, wsServer)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	lc := server.NewLifecycle(logger)

	roomsDone := make(chan struct{})
	lc.Add("rooms", &server.FuncService{
		StartFn: func() error {
			<-roomsDone
			return nil
		},
		StopFn: func() {
			registry.Shutdown()
			close(roomsDone)
		},
	})

	lc.Add("http", &server.FuncService{
		StartFn: func() error {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
