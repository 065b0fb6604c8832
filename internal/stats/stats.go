package stats

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/jmoiron/sqlx"
)

const topCitiesLimit = 5

// Stats is a point-in-time summary of the recorded weather data and the process serving it
type Stats struct {
	Timestamp time.Time    `json:"timestamp"`
	Weather   WeatherStats `json:"weather"`
	Storage   StorageStats `json:"storage"`
	Process   ProcessStats `json:"process"`
}

type WeatherStats struct {
	Records         int64            `json:"records"`
	DistinctCities  int              `json:"distinct_cities"`
	FirstCapturedAt string           `json:"first_captured_at,omitempty"`
	LastCapturedAt  string           `json:"last_captured_at,omitempty"`
	ByUnits         map[string]int64 `json:"by_units"`
	TopCities       []CityCount      `json:"top_cities"`
}

// CityCount is the number of observations stored for one city
type CityCount struct {
	City    string `json:"city" db:"city"`
	Country string `json:"country" db:"country"`
	Records int64  `json:"records" db:"records"`
}

type StorageStats struct {
	Type           string `json:"type"`
	SizeBytes      int64  `json:"size_bytes"`
	TableSizeBytes int64  `json:"table_size_bytes,omitempty"`
}

type ProcessStats struct {
	HeapAlloc     uint64 `json:"heap_alloc"`
	HeapInuse     uint64 `json:"heap_inuse"`
	Sys           uint64 `json:"sys"`
	NumGC         uint32 `json:"num_gc"`
	Goroutines    int    `json:"goroutines"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type Collector struct {
	db      *sqlx.DB
	dbType  config.DBType
	started time.Time

	memMu   sync.Mutex
	memAt   time.Time
	memSnap runtime.MemStats
}

// ReadMemStats stops the world, so snapshots are reused for a short while
var memSnapshotTTL = 5 * time.Second

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:      db,
		dbType:  cfg.Type,
		started: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	weather, err := c.weatherStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now(),
		Weather:   *weather,
		Storage:   c.storageStats(ctx),
		Process:   c.processStats(),
	}, nil
}

func (c *Collector) weatherStats(ctx context.Context) (*WeatherStats, error) {
	var summary struct {
		Records int64          `db:"records"`
		Cities  int            `db:"cities"`
		First   sql.NullString `db:"first_at"`
		Last    sql.NullString `db:"last_at"`
	}
	err := c.db.GetContext(ctx, &summary, `
		SELECT COUNT(*) AS records,
		       (SELECT COUNT(*) FROM (SELECT DISTINCT city, country FROM weather) AS pairs) AS cities,
		       MIN(date_time) AS first_at,
		       MAX(date_time) AS last_at
		FROM weather`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize weather table: %w", err)
	}

	ws := &WeatherStats{
		Records:         summary.Records,
		DistinctCities:  summary.Cities,
		FirstCapturedAt: summary.First.String,
		LastCapturedAt:  summary.Last.String,
		ByUnits:         make(map[string]int64),
		TopCities:       []CityCount{},
	}

	var units []struct {
		Units   string `db:"units"`
		Records int64  `db:"records"`
	}
	err = c.db.SelectContext(ctx, &units,
		"SELECT COALESCE(units, 'N/A') AS units, COUNT(*) AS records FROM weather GROUP BY COALESCE(units, 'N/A')")
	if err != nil {
		return nil, fmt.Errorf("failed to group weather rows by units: %w", err)
	}
	for _, u := range units {
		ws.ByUnits[u.Units] = u.Records
	}

	err = c.db.SelectContext(ctx, &ws.TopCities, c.db.Rebind(`
		SELECT city, country, COUNT(*) AS records
		FROM weather
		GROUP BY city, country
		ORDER BY records DESC, city
		LIMIT ?`), topCitiesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank cities: %w", err)
	}

	return ws, nil
}

// Sizes are best effort; dbstat is not compiled into every sqlite build
func (c *Collector) storageStats(ctx context.Context) StorageStats {
	st := StorageStats{Type: string(c.dbType)}

	if c.dbType == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &st.SizeBytes, "SELECT pg_database_size(current_database())")
		_ = c.db.GetContext(ctx, &st.TableSizeBytes, "SELECT COALESCE(pg_total_relation_size('weather'::regclass), 0)")
		return st
	}

	_ = c.db.GetContext(ctx, &st.SizeBytes, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	var tableSize sql.NullInt64
	if err := c.db.GetContext(ctx, &tableSize, "SELECT SUM(pgsize) FROM dbstat WHERE name = 'weather'"); err == nil {
		st.TableSizeBytes = tableSize.Int64
	}
	return st
}

func (c *Collector) processStats() ProcessStats {
	c.memMu.Lock()
	if c.memAt.IsZero() || time.Since(c.memAt) >= memSnapshotTTL {
		runtime.ReadMemStats(&c.memSnap)
		c.memAt = time.Now()
	}
	m := c.memSnap
	c.memMu.Unlock()

	return ProcessStats{
		HeapAlloc:     m.HeapAlloc,
		HeapInuse:     m.HeapInuse,
		Sys:           m.Sys,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
	}
}
