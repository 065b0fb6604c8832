package repository

import (
	"context"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgWeatherRepository struct {
	*weatherStore
}

const pgInsertWeather = `
	INSERT INTO weather (city, state, country, temperature, feels_like, pressure, humidity,
	                     low, high, wind_speed, wind_deg, description, category, units,
	                     rate_limiting_unique_lookups_remaining, rate_limiting_lookup_reset_window, date_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING id`

// pgx has no LastInsertId, so the id comes back through RETURNING
func (r *pgWeatherRepository) Insert(ctx context.Context, rec *model.WeatherRecord) (int64, error) {
	return r.insert(ctx, rec, func(tx *sqlx.Tx) (int64, error) {
		var id int64
		if err := tx.GetContext(ctx, &id, pgInsertWeather, insertArgs(rec)...); err != nil {
			return 0, err
		}
		return id, nil
	})
}
