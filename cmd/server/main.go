package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"crosspay-backend/internal/clients"
	"crosspay-backend/internal/config"
	"crosspay-backend/internal/db"
	"crosspay-backend/internal/events"
	"crosspay-backend/internal/handlers"
	"crosspay-backend/internal/repository"
	"crosspay-backend/internal/router"
	"crosspay-backend/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: config.local.yaml, then config.yaml)")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithField("error", err).Fatal("❌ Failed to load configuration")
	}
	if cfg.Server.Mode == "release" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	gdb, err := db.Init(cfg.Database)
	if err != nil {
		logrus.WithField("error", err).Fatal("❌ Failed to initialize database")
	}

	// Repositories
	paymentLinkRepo := repository.NewPaymentLinkRepository(gdb)
	transactionRepo := repository.NewTransactionRepository(gdb)

	// Services
	paymentService := services.NewPaymentLinkService(paymentLinkRepo, cfg.Frontend.BaseURL)
	transactionService := services.NewTransactionService(transactionRepo)

	pushService := services.NewWebSocketPushService()
	paymentService.SetPushService(pushService)
	transactionService.SetPushService(pushService)

	// NATS publishing is optional: no URL, no publishing
	var natsClient *clients.NATSClient
	if cfg.NATS.URL != "" {
		natsClient, err = clients.NewNATSClient(cfg.NATS.URL, cfg.NATS.Timeout)
		if err != nil {
			logrus.WithField("error", err).Warn("⚠️ NATS unavailable, continuing without event publishing")
		} else {
			publisher := events.NewPublisher(natsClient)
			paymentService.SetEventPublisher(publisher)
			transactionService.SetEventPublisher(publisher)
		}
	}

	// Handlers and routes
	engine := router.Setup(
		cfg,
		handlers.NewPaymentHandler(paymentService),
		handlers.NewTransactionHandler(transactionService),
		handlers.NewWebSocketHandler(pushService),
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithField("addr", server.Addr).Info("🚀 Payment backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("error", err).Fatal("❌ HTTP server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithField("error", err).Error("❌ Graceful shutdown failed")
	}

	if natsClient != nil {
		natsClient.Close()
	}
	logrus.Info("✅ Shutdown complete")
}
