// Command stats prints a summary of the recorded weather observations.
// OUTPUT_FORMAT selects json (default) or text.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alexivanou/weatherlog/internal/config"
	"github.com/alexivanou/weatherlog/internal/database"
	"github.com/alexivanou/weatherlog/internal/stats"
	"go.uber.org/zap"
)

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

	format := os.Getenv("OUTPUT_FORMAT")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "text" {
		logger.Fatal("Unknown output format", zap.String("format", format))
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	summary, err := stats.NewCollector(db, cfg.DB).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	if format == "text" {
		err = writeText(os.Stdout, summary)
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(summary)
	}
	if err != nil {
		logger.Fatal("Failed to write statistics", zap.Error(err))
	}
}

func writeText(out io.Writer, s *stats.Stats) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Collected\t%s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Store\t%s (%s)\n", s.Storage.Type, humanBytes(s.Storage.SizeBytes))
	fmt.Fprintf(tw, "Observations\t%d\n", s.Weather.Records)
	fmt.Fprintf(tw, "Cities\t%d\n", s.Weather.DistinctCities)
	if s.Weather.Records > 0 {
		fmt.Fprintf(tw, "Captured\t%s .. %s\n", s.Weather.FirstCapturedAt, s.Weather.LastCapturedAt)
	}

	units := make([]string, 0, len(s.Weather.ByUnits))
	for u := range s.Weather.ByUnits {
		units = append(units, u)
	}
	sort.Strings(units)
	for _, u := range units {
		fmt.Fprintf(tw, "  units=%s\t%d\n", u, s.Weather.ByUnits[u])
	}

	if len(s.Weather.TopCities) > 0 {
		fmt.Fprintln(tw, "Most observed\t")
		for _, c := range s.Weather.TopCities {
			fmt.Fprintf(tw, "  %s, %s\t%d\n", c.City, c.Country, c.Records)
		}
	}

	fmt.Fprintf(tw, "Heap in use\t%s\n", humanBytes(int64(s.Process.HeapInuse)))
	fmt.Fprintf(tw, "Uptime\t%ds\n", s.Process.UptimeSeconds)

	return tw.Flush()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value, suffix := float64(n), ""
	for _, s := range []string{"KiB", "MiB", "GiB", "TiB"} {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}
