package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"taxifleet/internal/config"
	"taxifleet/internal/server"
	"taxifleet/internal/tenant"
	"taxifleet/internal/util"
	"taxifleet/pkg/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	registry := tenant.NewRegistry(cfg.TenantCodes)
	slog.Info("registered tenant codes", "codes", registry.Codes())

	recordStore := store.NewMemoryStore(registry.Codes(), cfg.SeedCarsPerTenant)

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxy cidrs: %v", err)
	}

	httpServer, err := server.New(server.Config{
		Store:                   recordStore,
		Tenants:                 registry,
		MaxCarsPerTenant:        cfg.MaxCarsPerTenant,
		StaticDir:               cfg.StaticDir,
		RedisAddr:               cfg.RedisAddr,
		RedisPassword:           cfg.RedisPassword,
		WriteRateLimitPerMinute: cfg.WriteRateLimitPerMinute,
		TrustedProxies:          trusted,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
