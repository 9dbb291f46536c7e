package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/routes"
)

func main() {

	for _, envPath := range []string{"/app/.env", "../../.env", ".env"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				log.Fatalf("Error loading .env file: %v", err)
			}
			break
		}
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Error reading settings: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	cfg, err := config.NewConfig(ctx, settings)
	cancel()
	if err != nil {
		if cfg != nil {
			cfg.CloseAll()
		}
		log.Fatalf("Error creating config: %v", err)
	}
	defer cfg.CloseAll()

	cfg.Logger.Info(fmt.Sprintf("Starting server with execution ID %s", cfg.ExecutionID), map[string]interface{}{
		"environment": settings.Environment,
		"port":        settings.Port,
		"upstream":    settings.UpstreamBaseURL != "",
	})

	engine := middleware.SetupServer(cfg)

	routes.InitiateRoutes(engine, cfg)

	startServer(engine, cfg)
}

func startServer(engine *gin.Engine, cfg *config.App) {
	s := cfg.Settings
	srv := &http.Server{
		Addr:              ":" + s.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.TLS() {
			cfg.Logger.Info("Starting server with TLS...")
			err = srv.ListenAndServeTLS(s.CertFile, s.KeyFile)
		} else {
			cfg.Logger.Info("Starting server...")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		cfg.Logger.Info("Shutting down server", map[string]interface{}{"signal": sig.String()})
	case err, ok := <-errCh:
		if ok {
			cfg.Logger.Error("Server stopped unexpectedly", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		cfg.Logger.Error("Graceful shutdown failed", err)
	}
}
