package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/api/routes"
	"github.com/bawasa/bawasa-backend/internal/auth"
	"github.com/bawasa/bawasa-backend/internal/billing"
	"github.com/bawasa/bawasa-backend/internal/consumers"
	"github.com/bawasa/bawasa-backend/internal/dashboard"
	"github.com/bawasa/bawasa-backend/internal/meterchange"
	"github.com/bawasa/bawasa-backend/internal/payments"
	"github.com/bawasa/bawasa-backend/internal/readings"
	"github.com/bawasa/bawasa-backend/internal/users"
	"github.com/bawasa/bawasa-backend/pkg/auth/session"
	"github.com/bawasa/bawasa-backend/pkg/config"
	"github.com/bawasa/bawasa-backend/pkg/db"
	"github.com/bawasa/bawasa-backend/pkg/logger"
	"github.com/bawasa/bawasa-backend/pkg/migrate"
	"github.com/bawasa/bawasa-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildServices wires every domain service against the shared database
// client. Tx-scoped store factories rebind the repositories so multi-write
// operations commit or roll back as one unit.
func buildServices(cfg *config.Config, dbClient *db.Client, sessions *session.Manager) (routes.Services, error) {
	consumersRepo := consumers.NewRepository(dbClient.DB())
	readingsRepo := readings.NewRepository(dbClient.DB())
	billsRepo := billing.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	consumersService, err := consumers.NewService(consumersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	readingsService, err := readings.NewService(readingsRepo, consumersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	meterChangeService, err := meterchange.NewService(dbClient, consumersRepo, func(tx *gorm.DB) meterchange.ReadingStore {
		return readingsRepo.WithTx(tx)
	})
	if err != nil {
		return routes.Services{}, err
	}

	billingService, err := billing.NewService(
		dbClient,
		consumersRepo,
		billsRepo,
		func(tx *gorm.DB) billing.BillStore { return billsRepo.WithTx(tx) },
		func(tx *gorm.DB) billing.ReadingSource { return readingsRepo.WithTx(tx) },
		billing.DefaultTariff(),
		cfg.Billing.DueDays,
	)
	if err != nil {
		return routes.Services{}, err
	}

	paymentsService, err := payments.NewService(
		dbClient,
		paymentsRepo,
		func(tx *gorm.DB) payments.PaymentStore { return paymentsRepo.WithTx(tx) },
		func(tx *gorm.DB) payments.BillStore { return billsRepo.WithTx(tx) },
	)
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(usersRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(usersRepo, sessions, cfg.JWT)
	if err != nil {
		return routes.Services{}, err
	}

	dashboardService, err := dashboard.NewService(consumersRepo, billsRepo, paymentsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authService,
		Users:       usersService,
		Consumers:   consumersService,
		Readings:    readingsService,
		MeterChange: meterChangeService,
		Billing:     billingService,
		Payments:    paymentsService,
		Dashboard:   dashboardService,
	}, nil
}
