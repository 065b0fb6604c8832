package repository

import (
	"context"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteWeatherRepository struct {
	*weatherStore
}

const sqliteInsertWeather = `
	INSERT INTO weather (city, state, country, temperature, feels_like, pressure, humidity,
	                     low, high, wind_speed, wind_deg, description, category, units,
	                     rate_limiting_unique_lookups_remaining, rate_limiting_lookup_reset_window, date_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *sqliteWeatherRepository) Insert(ctx context.Context, rec *model.WeatherRecord) (int64, error) {
	return r.insert(ctx, rec, func(tx *sqlx.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, sqliteInsertWeather, insertArgs(rec)...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	})
}
