package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vigneshnair/bazaarly-backend/internal/notifications"
	"github.com/vigneshnair/bazaarly-backend/pkg/config"
	"github.com/vigneshnair/bazaarly-backend/pkg/logger"
	"github.com/vigneshnair/bazaarly-backend/pkg/metrics"
	"github.com/vigneshnair/bazaarly-backend/pkg/pubsub"
	"github.com/vigneshnair/bazaarly-backend/pkg/whatsapp"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notify-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "notify-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.WhatsApp.Configured() {
		logg.Error(ctx, "whatsapp credentials missing", fmt.Errorf("worker cannot deliver without a provider"))
		os.Exit(1)
	}

	sender, err := whatsapp.NewClient(cfg.WhatsApp, logg)
	requireResource(ctx, logg, "whatsapp client", err)

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Sender:  sender,
		Config:  cfg.WhatsApp,
		Logger:  logg,
		Metrics: metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
	})
	requireResource(ctx, logg, "dispatcher", err)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logg.Error(ctx, "error draining notifications", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	consumer, err := notifications.NewConsumer(dispatcher, pubsubClient.NotificationsSubscription(), logg)
	requireResource(ctx, logg, "notifications consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "notification worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notification worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
