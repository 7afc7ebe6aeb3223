package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	loaderconfig "github.com/quantumauth-io/contract-loader/cmd/contract-loader/config"
	"github.com/quantumauth-io/contract-loader/internal/chains"
	loaderhttp "github.com/quantumauth-io/contract-loader/internal/http"
	"github.com/quantumauth-io/contract-loader/internal/loader"
	"github.com/quantumauth-io/contract-loader/internal/networks"
	"github.com/quantumauth-io/contract-loader/internal/registry"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log.Info("contract-loader",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loaderconfig.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}

	catalog, err := chains.NewStaticCatalog(&cfg.Chains)
	if err != nil {
		log.Fatal("failed to build network catalog", "error", err)
	}

	targets := networks.NewTargets(catalog, cfg.DefaultActiveNetwork)
	tracker, err := networks.NewTracker(catalog, targets, cfg.DefaultActiveNetwork)
	if err != nil {
		log.Fatal("failed to init network tracker", "error", err)
	}

	contracts := registry.NewStore(registry.Seed())

	form, err := loader.NewForm(catalog, tracker, contracts, loader.Config{
		ContractName: cfg.ContractName,
		Reference:    registry.Seed(),
		Guard:        registry.DefaultGuard(cfg.StrictGuards),
	})
	if err != nil {
		log.Fatal("failed to init contract form", "error", err)
	}

	handler := loaderhttp.NewRouter(
		loaderhttp.NewHandler(form, catalog, contracts, targets),
		cfg.ClientSettings.AllowedOrigins,
	)

	addr := net.JoinHostPort(cfg.ClientSettings.LocalHost, cfg.ClientSettings.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr, "active_network", tracker.Active())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}
