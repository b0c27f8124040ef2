package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Try to load from config.yaml first, fallback to environment variables
	cfg, err := config.Initialise("config.yaml", false)
	if err != nil {
		log.Printf("Config file not found or invalid, using environment variables: %v", err)
		cfg, err = config.Initialise("", true)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
	}

	l := logger.InitializeZapLogger(logger.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	defer l.Sync()

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := NewDependencies(cfg, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize dependencies: %v", err)
	}
	defer closeDeps()

	router, err := SetupRouter(cfg, deps, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to setup router: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		l.Infof(ctx, "Starting Ticket Service API on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalf(ctx, "Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	l.Info(context.Background(), "Received shutdown signal, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(shutdownCtx, "Server forced to shutdown: %v", err)
	}

	l.Info(shutdownCtx, "Server stopped gracefully")
}
