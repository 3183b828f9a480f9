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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zunxo7/CandyMinigames-sub000/internal/auth"
	"github.com/zunxo7/CandyMinigames-sub000/internal/config"
	"github.com/zunxo7/CandyMinigames-sub000/internal/httpapi"
	"github.com/zunxo7/CandyMinigames-sub000/internal/hub"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	logger := newLogger()
	defer logger.Sync()

	cfg := config.Load()
	if cfg.SupabaseURL == "" {
		logger.Warn("SUPABASE_URL not set, admin bridge disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.New(ctx, logger)
	authClient := auth.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, authClient, logger)
	server := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
