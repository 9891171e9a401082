package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/tillgate/marketplace/internal/api"
	"github.com/tillgate/marketplace/internal/gateway"
	"github.com/tillgate/marketplace/internal/gateway/stripegw"
	"github.com/tillgate/marketplace/internal/service"
	"github.com/tillgate/marketplace/internal/storage/sqlite"
	"github.com/tillgate/marketplace/pkg/logging"
)

type config struct {
	Addr            string `env:"ADDR" envDefault:":8080"`
	DBPath          string `env:"DB_PATH" envDefault:"./data/marketplace.db"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`

	// DryRun serves against an in-memory fake gateway instead of Stripe.
	DryRun bool `env:"DRY_RUN" envDefault:"false"`
}

func main() {
	logging.Setup()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("Failed to parse configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var gw gateway.Gateway
	switch {
	case cfg.DryRun:
		slog.Warn("Dry-run mode: using the in-memory fake gateway")
		gw = gateway.NewFake()
	case cfg.StripeSecretKey == "":
		slog.Error("STRIPE_SECRET_KEY is required unless DRY_RUN=true")
		os.Exit(1)
	default:
		gw = stripegw.New(cfg.StripeSecretKey)
	}

	router := api.NewRouter(
		service.NewSettlementService(store, gw),
		service.NewOnboardingService(store, gw),
		service.NewListingService(store),
		store,
	)

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
