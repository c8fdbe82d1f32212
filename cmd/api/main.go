package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/quickcart-app/quickcart-backend/api"
	"github.com/quickcart-app/quickcart-backend/api/routes"
	authsvc "github.com/quickcart-app/quickcart-backend/internal/auth"
	cartsvc "github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	checkoutsvc "github.com/quickcart-app/quickcart-backend/internal/checkout"
	ordersvc "github.com/quickcart-app/quickcart-backend/internal/orders"
	"github.com/quickcart-app/quickcart-backend/internal/payments"
	profilesvc "github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	"github.com/quickcart-app/quickcart-backend/pkg/db/models"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/maps"
	"github.com/quickcart-app/quickcart-backend/pkg/metrics"
	"github.com/quickcart-app/quickcart-backend/pkg/redis"
	"github.com/quickcart-app/quickcart-backend/pkg/stripe"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	if err := dbClient.Migrate(&models.User{}, &models.Address{}); err != nil {
		logg.Error(ctx, "failed to migrate schema", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	var cartStore cartsvc.Store
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		cartStore = cartsvc.NewRedisStore(redisClient, cfg.Redis.CartTTL)
	} else {
		logg.Info(ctx, "redis not configured, keeping carts in process memory")
		cartStore = cartsvc.NewMemoryStore()
	}

	catalogService, err := catalog.NewService(catalog.SeedStores(), catalog.SeedProducts(), logg)
	if err != nil {
		logg.Error(ctx, "failed to build catalog", err)
		os.Exit(1)
	}

	cartEngine, err := cartsvc.NewEngine(cartStore, catalogService, logg)
	if err != nil {
		logg.Error(ctx, "failed to build cart engine", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	reservations := cartsvc.NewReservationManager(cfg.Cart.ReservationTTL, checkoutMetrics, logg)

	profileService, err := profilesvc.NewService(dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build profile service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(profileService, cfg.JWT, logg)
	if err != nil {
		logg.Error(ctx, "failed to build auth service", err)
		os.Exit(1)
	}

	provider, providerCleanup, err := buildProvider(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to build payment provider", err)
		os.Exit(1)
	}

	var geocoder checkoutsvc.Geocoder
	if strings.TrimSpace(cfg.Maps.APIKey) != "" {
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			logg.Error(ctx, "failed to build maps client", err)
			os.Exit(1)
		}
		geocoder = mapsClient
	} else {
		logg.Info(ctx, "maps api key not configured, addresses keep typed coordinates")
	}

	orderBook := ordersvc.NewBook(cfg.Tracking, logg)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Carts:        cartEngine,
		Reservations: reservations,
		Profiles:     profileService,
		Provider:     provider,
		Book:         orderBook,
		Catalog:      catalogService,
		Geocoder:     geocoder,
		Metrics:      checkoutMetrics,
		Logger:       logg,
		FeeMinor:     cfg.Checkout.DeliveryFeeMinor,
	})
	if err != nil {
		logg.Error(ctx, "failed to build checkout service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        pinger(redisClient),
		Registry:     registry,
		Auth:         authService,
		Catalog:      catalogService,
		Carts:        cartEngine,
		Reservations: reservations,
		Checkout:     checkoutService,
		Profiles:     profileService,
		Orders:       orderBook,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := api.NewServer(addr, handler, logg,
		func() error {
			orderBook.StopAll()
			return nil
		},
		func() error {
			reservations.StopAll()
			return nil
		},
		providerCleanup,
		func() error {
			if redisClient != nil {
				return redisClient.Close()
			}
			return nil
		},
		dbClient.Close,
	)

	if err := server.Run(ctx); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

// buildProvider picks the configured payment backend. The mock provider is
// the default; stripe requires an API key.
func buildProvider(ctx context.Context, cfg *config.Config, logg *logger.Logger) (payments.Provider, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Payments.Provider)) {
	case "", "mock":
		mock := payments.NewMockProvider(cfg.Payments.MockInitDelay, cfg.Payments.MockChargeDelay)
		return mock, func() error {
			mock.Close()
			return nil
		}, nil
	case "stripe":
		client, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return nil, nil, err
		}
		return payments.NewStripeProvider(client), nil, nil
	default:
		return nil, nil, errUnknownProvider(cfg.Payments.Provider)
	}
}

type errUnknownProvider string

func (e errUnknownProvider) Error() string {
	return "unknown payments provider " + string(e)
}

// pinger keeps a typed nil from masquerading as a live health check.
func pinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
