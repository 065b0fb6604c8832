package service

import (
	"context"

	"github.com/alexivanou/weatherlog/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Record(ctx context.Context, q model.WeatherQuery) (*model.StoredRecord, error)
}

// WeatherClient fetches raw weather data and flattens it into records
type WeatherClient interface {
	Fetch(ctx context.Context, q model.WeatherQuery) (model.RawResponse, error)
	Parse(raw model.RawResponse) (*model.WeatherRecord, error)
}
