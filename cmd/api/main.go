package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/meiwa-tech/inquiry-classifier/internal/adapters/http"
	"github.com/meiwa-tech/inquiry-classifier/internal/bootstrap"
	"github.com/meiwa-tech/inquiry-classifier/internal/config"
)

const serviceVersion = "1.2.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.ClassifyUC,
		app.Store,
		app.Verifier,
		app.Metrics,
		app.Logger,
		httpadapter.Config{
			ServiceVersion:      serviceVersion,
			RateLimitPerWindow:  cfg.RateLimitPerWindow,
			RateLimitWindow:     cfg.RateLimitWindow(),
			RateLimitBurst:      cfg.RateLimitBurst,
			ConcurrencyLimit:    int64(cfg.ConcurrencyLimit),
			BackpressureTimeout: cfg.BackpressureTimeout(),
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		app.Logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("api shutdown error", "error", err)
	}
}
