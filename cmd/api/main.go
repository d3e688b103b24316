package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vigneshnair/bazaarly-backend/api/routes"
	"github.com/vigneshnair/bazaarly-backend/internal/auth"
	"github.com/vigneshnair/bazaarly-backend/internal/notifications"
	"github.com/vigneshnair/bazaarly-backend/internal/orders"
	"github.com/vigneshnair/bazaarly-backend/internal/payments"
	"github.com/vigneshnair/bazaarly-backend/internal/products"
	"github.com/vigneshnair/bazaarly-backend/internal/users"
	"github.com/vigneshnair/bazaarly-backend/internal/vendors"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/db"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	"github.com/vigneshnair/bazaarly-backend/pkg/metrics"
	"github.com/vigneshnair/bazaarly-backend/pkg/migrate"
	"github.com/vigneshnair/bazaarly-backend/pkg/pubsub"
	"github.com/vigneshnair/bazaarly-backend/pkg/redis"
	"github.com/vigneshnair/bazaarly-backend/pkg/whatsapp"
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

	notifier, cleanupNotifier := buildNotifier(context.Background(), cfg, logg)
	defer cleanupNotifier()

	loginService, err := auth.NewService(auth.ServiceParams{
		AccountRepo: users.NewRepository(dbClient.DB()),
		JWTConfig:   cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create login service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create signup service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	vendorsService, err := vendors.NewService(vendors.ServiceParams{
		DB:           dbClient,
		Notifier:     notifier,
		JWTConfig:    cfg.JWT,
		AdminContact: cfg.WhatsApp.AdminNumber,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vendors service", err)
		os.Exit(1)
	}

	var linkBuilder *payments.LinkBuilder
	if cfg.UPI.PayeeVPA != "" {
		linkBuilder, err = payments.NewLinkBuilder(cfg.UPI)
		if err != nil {
			logg.Error(context.Background(), "failed to create payment link builder", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "payee vpa not configured, deferred payments disabled")
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		DB:       dbClient,
		Notifier: notifier,
		Links:    linkBuilder,
		Verifier: payments.NewVerifier(cfg.UPI.CallbackSecret),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:     loginService,
			Register: registerService,
			Users:    usersService,
			Products: productsService,
			Vendors:  vendorsService,
			Orders:   ordersService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}
}

// buildNotifier picks the notification path from configuration: Pub/Sub
// when a topic is configured, an in-process dispatcher when WhatsApp
// credentials are present, and a no-op otherwise.
func buildNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger) (notifications.Notifier, func()) {
	noop := func() {}

	if cfg.PubSub.NotificationsTopic != "" && cfg.GCP.ProjectID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub, notifications disabled", err)
			return notifications.Noop{}, noop
		}
		publisher, err := notifications.NewPublisher(psClient.NotificationsPublisher(), logg)
		if err != nil {
			logg.Error(ctx, "failed to create notification publisher", err)
			return notifications.Noop{}, noop
		}
		return publisher, func() {
			if err := psClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}
	}

	if cfg.WhatsApp.Configured() {
		sender, err := whatsapp.NewClient(cfg.WhatsApp, logg)
		if err != nil {
			logg.Error(ctx, "failed to create whatsapp client, notifications disabled", err)
			return notifications.Noop{}, noop
		}
		dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
			Sender:  sender,
			Config:  cfg.WhatsApp,
			Logger:  logg,
			Metrics: metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
		})
		if err != nil {
			logg.Error(ctx, "failed to create notification dispatcher", err)
			return notifications.Noop{}, noop
		}
		return dispatcher, func() {
			if err := dispatcher.Close(); err != nil {
				logg.Error(ctx, "error draining notifications", err)
			}
		}
	}

	logg.Warn(ctx, "notifications not configured, messages will be dropped")
	return notifications.Noop{}, noop
}
