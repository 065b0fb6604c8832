package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// WeatherRepository persists weather records. The store is append-only:
// there is no update or delete path.
type WeatherRepository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, rec *model.WeatherRecord) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Container holds all repositories
type Container struct {
	Weather WeatherRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := &weatherStore{db: db, dbType: dbType, logger: logger}

	if dbType == config.DBTypePostgreSQL {
		return &Container{Weather: &pgWeatherRepository{base}}
	}

	// Default to SQLite
	return &Container{Weather: &sqliteWeatherRepository{base}}
}

// NewMigrator builds a migrate instance over the embedded migrations for dbType.
// Closing the returned instance also closes db.
func NewMigrator(db *sqlx.DB, dbType config.DBType) (*migrate.Migrate, error) {
	dir := "migrations/sqlite"
	if dbType == config.DBTypePostgreSQL {
		dir = "migrations/postgres"
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not open migrations: %w", err)
	}

	var (
		driver     migratedb.Driver
		driverName string
	)
	if dbType == config.DBTypePostgreSQL {
		driverName = "pgx5"
		driver, err = pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	} else {
		driverName = "sqlite3"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", driverName, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// weatherStore holds what both SQL dialects share
type weatherStore struct {
	db     *sqlx.DB
	dbType config.DBType
	logger *zap.Logger

	// The postgres migration driver pins one pool connection until the
	// migrator is closed, and closing it also closes db. One migrator per
	// store keeps that to a single connection for the store's lifetime.
	migrateMu sync.Mutex
	migrator  *migrate.Migrate
}

// EnsureSchema creates the weather table if it does not exist yet
func (s *weatherStore) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	if s.migrator == nil {
		m, err := NewMigrator(s.db, s.dbType)
		if err != nil {
			s.logger.Error("Error creating table", zap.Error(err))
			return fmt.Errorf("%w: %w", model.ErrStorage, err)
		}
		s.migrator = m
	}

	if err := s.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Error("Error creating table", zap.Error(err))
		return fmt.Errorf("%w: failed to create weather table: %w", model.ErrStorage, err)
	}

	s.logger.Info("Weather table created or verified")
	return nil
}

// Count returns the number of stored records
func (s *weatherStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM weather"); err != nil {
		return 0, fmt.Errorf("%w: failed to count weather rows: %w", model.ErrStorage, err)
	}
	return count, nil
}

// insert runs one insert on a dedicated connection inside its own transaction
// and releases the connection on every path.
func (s *weatherStore) insert(ctx context.Context, rec *model.WeatherRecord, exec func(tx *sqlx.Tx) (int64, error)) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("%w: nil record", model.ErrStorage)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		s.logger.Error("Error inserting data", zap.String("city", rec.City), zap.Error(err))
		return 0, fmt.Errorf("%w: failed to open connection: %w", model.ErrStorage, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("Error inserting data", zap.String("city", rec.City), zap.Error(err))
		return 0, fmt.Errorf("%w: failed to begin transaction: %w", model.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is harmless

	id, err := exec(tx)
	if err != nil {
		s.logger.Error("Error inserting data", zap.String("city", rec.City), zap.Error(err))
		return 0, fmt.Errorf("%w: failed to insert weather row: %w", model.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Error inserting data", zap.String("city", rec.City), zap.Error(err))
		return 0, fmt.Errorf("%w: failed to commit: %w", model.ErrStorage, err)
	}

	s.logger.Info("Weather data inserted", zap.String("city", rec.City), zap.Int64("id", id))
	return id, nil
}

func insertArgs(rec *model.WeatherRecord) []any {
	return []any{
		rec.City,
		rec.State,
		rec.Country,
		rec.Temperature,
		rec.FeelsLike,
		rec.Pressure,
		rec.Humidity,
		rec.Low,
		rec.High,
		rec.WindSpeed,
		rec.WindDeg,
		rec.Description,
		rec.Category,
		rec.Units,
		rec.RateLimitRemaining,
		rec.RateLimitResetWindow,
		rec.CapturedAt,
	}
}
