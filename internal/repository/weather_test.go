package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/alexivanou/weatherlog/internal/database"
	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRepo(t *testing.T) (*Container, *sqlx.DB) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("repo_test_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := NewRepositories(db, config.DBTypeMemory, zap.NewNop())
	require.NoError(t, repos.Weather.EnsureSchema(context.Background()))

	return repos, db
}

func ptr[T any](v T) *T { return &v }

func sampleRecord() *model.WeatherRecord {
	return &model.WeatherRecord{
		City:                 "Dubai",
		Country:              "AE",
		Temperature:          ptr(305.15),
		FeelsLike:            ptr(309.1),
		Pressure:             ptr(1008.0),
		Humidity:             ptr(55.0),
		Low:                  ptr(304.15),
		High:                 ptr(306.15),
		WindSpeed:            ptr(4.12),
		WindDeg:              ptr(320.0),
		Description:          ptr("clear sky"),
		Category:             ptr("Clear"),
		Units:                ptr("standard"),
		RateLimitRemaining:   ptr(48),
		RateLimitResetWindow: ptr("1 hour"),
		CapturedAt:           "2024-03-09 14:05:07",
	}
}

func TestWeatherRepository_EnsureSchemaIdempotent(t *testing.T) {
	repos, db := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repos.Weather.EnsureSchema(ctx))
	require.NoError(t, repos.Weather.EnsureSchema(ctx))

	var tables int
	err := db.GetContext(ctx, &tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'weather'")
	require.NoError(t, err)
	assert.Equal(t, 1, tables)
}

func TestWeatherRepository_EnsureSchemaReusesMigrator(t *testing.T) {
	repos, _ := setupRepo(t)
	ctx := context.Background()

	store := repos.Weather.(*sqliteWeatherRepository).weatherStore
	first := store.migrator
	require.NotNil(t, first)

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Weather.EnsureSchema(ctx))
	}
	assert.Same(t, first, store.migrator)
}

func TestWeatherRepository_Insert(t *testing.T) {
	repos, db := setupRepo(t)
	ctx := context.Background()

	var before int64
	require.NoError(t, db.GetContext(ctx, &before, "SELECT COUNT(*) FROM weather"))

	id, err := repos.Weather.Insert(ctx, sampleRecord())
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	var after int64
	require.NoError(t, db.GetContext(ctx, &after, "SELECT COUNT(*) FROM weather"))
	assert.Equal(t, before+1, after)

	var stored model.WeatherRecord
	err = db.GetContext(ctx, &stored, `
		SELECT city, state, country, temperature, feels_like, pressure, humidity, low, high,
		       wind_speed, wind_deg, description, category, units,
		       rate_limiting_unique_lookups_remaining, rate_limiting_lookup_reset_window, date_time
		FROM weather WHERE id = ?`, id)
	require.NoError(t, err)
	assert.Equal(t, *sampleRecord(), stored)
}

func TestWeatherRepository_InsertDuplicates(t *testing.T) {
	repos, _ := setupRepo(t)
	ctx := context.Background()

	first, err := repos.Weather.Insert(ctx, sampleRecord())
	require.NoError(t, err)
	second, err := repos.Weather.Insert(ctx, sampleRecord())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	count, err := repos.Weather.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWeatherRepository_InsertState(t *testing.T) {
	repos, db := setupRepo(t)
	ctx := context.Background()

	rec := sampleRecord()
	state := "OR"
	rec.State = &state

	id, err := repos.Weather.Insert(ctx, rec)
	require.NoError(t, err)

	var got *string
	require.NoError(t, db.GetContext(ctx, &got, "SELECT state FROM weather WHERE id = ?", id))
	require.NotNil(t, got)
	assert.Equal(t, "OR", *got)
}

func TestWeatherRepository_InsertNullColumns(t *testing.T) {
	repos, db := setupRepo(t)
	ctx := context.Background()

	rec := sampleRecord()
	rec.WindDeg = nil
	rec.Category = nil
	rec.RateLimitRemaining = nil

	id, err := repos.Weather.Insert(ctx, rec)
	require.NoError(t, err)

	var nulls int
	require.NoError(t, db.GetContext(ctx, &nulls, `
		SELECT COUNT(*) FROM weather
		WHERE id = ? AND wind_deg IS NULL AND category IS NULL
		  AND rate_limiting_unique_lookups_remaining IS NULL AND wind_speed IS NOT NULL`, id))
	assert.Equal(t, 1, nulls)
}

func TestWeatherRepository_InsertWithoutSchema(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("noschema_%d", time.Now().UnixNano())}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	repos := NewRepositories(db, config.DBTypeMemory, zap.NewNop())

	_, err = repos.Weather.Insert(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, model.ErrStorage)

	_, err = repos.Weather.Count(context.Background())
	assert.ErrorIs(t, err, model.ErrStorage)
}

func TestWeatherRepository_InsertNil(t *testing.T) {
	repos, _ := setupRepo(t)

	_, err := repos.Weather.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrStorage)
}

func TestWeatherRepository_EnsureSchemaCancelled(t *testing.T) {
	repos, _ := setupRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, repos.Weather.EnsureSchema(ctx), model.ErrStorage)
}

func TestNewMigrator_Version(t *testing.T) {
	_, db := setupRepo(t)

	m, err := NewMigrator(db, config.DBTypeMemory)
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}
