package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/weatherlog/internal/api"
	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/alexivanou/weatherlog/internal/database"
	"github.com/alexivanou/weatherlog/internal/repository"
	"github.com/alexivanou/weatherlog/internal/service"
	"github.com/alexivanou/weatherlog/internal/stats"
	"github.com/alexivanou/weatherlog/internal/weatherapi"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	repos := repository.NewRepositories(db, cfg.DB.Type, logger)
	if err := repos.Weather.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare weather table", zap.Error(err))
	}

	client := weatherapi.NewClient(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.Weather.Timeout}, logger)
	svc := service.NewService(client, repos.Weather, logger)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector, logger, api.FormDefaults{
		Country: cfg.Weather.DefaultCountry,
		Units:   cfg.Weather.DefaultUnits,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
