package service

import (
	"context"
	"strings"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/alexivanou/weatherlog/internal/validator"
	"go.uber.org/zap"
)

// Record runs the pipeline validate -> fetch -> parse -> insert for q.
// It stops at the first failing stage; the returned error wraps the
// stage's model.Err* kind.
func (s *Service) Record(ctx context.Context, q model.WeatherQuery) (*model.StoredRecord, error) {
	q = normalize(q)

	if err := validator.Validate(q); err != nil {
		s.logger.Warn("Rejected weather query",
			zap.String("city", q.City),
			zap.String("state", q.State),
			zap.String("country", q.Country),
			zap.String("units", q.Units),
			zap.Error(err),
		)
		return nil, err
	}

	raw, err := s.client.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	rec, err := s.client.Parse(raw)
	if err != nil {
		return nil, err
	}

	id, err := s.weatherRepo.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Weather data stored",
		zap.Int64("id", id),
		zap.String("city", rec.City),
		zap.String("country", rec.Country),
	)
	return &model.StoredRecord{ID: id, Record: *rec}, nil
}

func normalize(q model.WeatherQuery) model.WeatherQuery {
	q.State = strings.TrimSpace(q.State)
	q.Country = strings.TrimSpace(q.Country)
	if q.Units == "" {
		q.Units = model.UnitsMetric
	}
	return q
}
