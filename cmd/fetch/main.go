// Command fetch records the current weather for a fixed location once and exits.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/alexivanou/weatherlog/internal/database"
	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/alexivanou/weatherlog/internal/repository"
	"github.com/alexivanou/weatherlog/internal/service"
	"github.com/alexivanou/weatherlog/internal/validator"
	"github.com/alexivanou/weatherlog/internal/weatherapi"
	"go.uber.org/zap"
)

var query = model.WeatherQuery{
	City:    "Dubai",
	State:   "",
	Country: "AE",
	Units:   model.UnitsStandard,
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if !validator.Valid(query) {
		fmt.Println("Invalid input parameters. Please correct them and try again.")
		return
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := repository.NewRepositories(db, cfg.DB.Type, logger)
	if err := repos.Weather.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to prepare weather table", zap.Error(err))
		os.Exit(1)
	}

	client := weatherapi.NewClient(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.Weather.Timeout}, logger)
	svc := service.NewService(client, repos.Weather, logger)

	stored, err := svc.Record(ctx, query)
	if err != nil {
		fmt.Println(model.UserMessage(err))
		logger.Debug("Weather lookup failed", zap.String("stage", model.Stage(err)), zap.Error(err))
		os.Exit(1)
	}

	logger.Debug("Stored weather record", zap.Int64("id", stored.ID))
	fmt.Printf("Weather data for %s has been stored in the database.\n", query.City)
}
