package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/distrigas/distrigas-backend/api/routes"
	"github.com/distrigas/distrigas-backend/internal/catalog"
	"github.com/distrigas/distrigas-backend/internal/customers"
	"github.com/distrigas/distrigas-backend/internal/deliveries"
	"github.com/distrigas/distrigas-backend/internal/employees"
	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/internal/payments"
	"github.com/distrigas/distrigas-backend/internal/pricing"
	"github.com/distrigas/distrigas-backend/internal/settings"
	"github.com/distrigas/distrigas-backend/pkg/auth/session"
	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/metrics"
	"github.com/distrigas/distrigas-backend/pkg/migrate"
	"github.com/distrigas/distrigas-backend/pkg/redis"
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
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
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

func buildServices(cfg *config.Config, dbClient *db.Client, sessions *session.Manager) (routes.Services, error) {
	gdb := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	settingsSvc, err := settings.NewService(settings.NewRepository(gdb), cfg.Points)
	if err != nil {
		return routes.Services{}, err
	}
	loyaltySvc, err := loyalty.NewService(loyalty.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	pricingResolver, err := pricing.NewResolver(pricing.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	inventorySvc, err := inventory.NewService(inventory.NewRepository(gdb), dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(gdb), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	ordersRepo := orders.NewRepository(gdb)
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Tx:       dbClient,
		Pricing:  pricingResolver,
		Stock:    inventorySvc,
		Ledger:   loyaltySvc,
		Settings: settingsSvc,
		Metrics:  orderMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(gdb),
		Orders:  ordersRepo,
		Tx:      dbClient,
		Ledger:  loyaltySvc,
		Metrics: paymentMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	deliveriesSvc, err := deliveries.NewService(deliveries.ServiceParams{
		Repo:     deliveries.NewRepository(gdb),
		Orders:   ordersRepo,
		Payments: paymentsSvc,
		Tx:       dbClient,
		Metrics:  orderMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	customersSvc, err := customers.NewService(customers.ServiceParams{
		Repo:     customers.NewRepository(gdb),
		Ledger:   loyaltySvc,
		Settings: settingsSvc,
		Tx:       dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	employeesSvc, err := employees.NewService(employees.ServiceParams{
		Repo:     employees.NewRepository(gdb),
		Sessions: sessions,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:    catalogSvc,
		Customers:  customersSvc,
		Deliveries: deliveriesSvc,
		Employees:  employeesSvc,
		Inventory:  inventorySvc,
		Orders:     ordersSvc,
		Payments:   paymentsSvc,
		Settings:   settingsSvc,
	}, nil
}
