package service

import (
	"github.com/alexivanou/weatherlog/internal/repository"
	"go.uber.org/zap"
)

// Service provides business logic for the API
type Service struct {
	client      WeatherClient
	weatherRepo repository.WeatherRepository
	logger      *zap.Logger
}

// NewService creates a new service instance
func NewService(
	client WeatherClient,
	weatherRepo repository.WeatherRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:      client,
		weatherRepo: weatherRepo,
		logger:      logger,
	}
}
