package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Deejulu/halosaas/internal/cart"
	"github.com/Deejulu/halosaas/internal/config"
	"github.com/Deejulu/halosaas/internal/db"
	"github.com/Deejulu/halosaas/internal/events"
	httpserver "github.com/Deejulu/halosaas/internal/http"
	"github.com/Deejulu/halosaas/internal/menu"
	"github.com/Deejulu/halosaas/internal/order"
	"github.com/Deejulu/halosaas/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	database, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	rabbitConn, err := events.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("connect rabbitmq", zap.Error(err))
	}
	defer rabbitConn.Close()

	seqRepo := events.NewSequenceRepository(database)
	publisher, err := events.NewPublisher(rabbitConn, seqRepo)
	if err != nil {
		logger.Fatal("create event publisher", zap.Error(err))
	}

	menuRepo := menu.NewRepository(database)
	orderRepo := order.NewRepository(database)
	bridge := cart.NewBridge(cart.NewSavedCartRepository(database), logger)
	sessionStore := session.NewPostgresStore(database, cfg.SessionTTL)

	cartHandler := httpserver.NewCartHandler(menuRepo, bridge, cfg.RequestTimeout)
	router := httpserver.NewRouter(httpserver.RouterDeps{
		Cart:          cartHandler,
		Checkout:      httpserver.NewCheckoutHandler(cartHandler, orderRepo, publisher, cfg.RequestTimeout),
		Menu:          httpserver.NewMenuHandler(menuRepo, cfg.RequestTimeout),
		Admin:         httpserver.NewAdminHandler(database, cfg.RequestTimeout),
		SessionStore:  sessionStore,
		SessionCookie: cfg.SessionCookie,
		SessionTTL:    cfg.SessionTTL,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("publisher close", zap.Error(err))
	}
}
