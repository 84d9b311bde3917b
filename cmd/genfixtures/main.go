// Command genfixtures generates deterministic series and risk event
// fixtures for downstream test suites. It runs the actual engine packages
// under a frozen clock, so fixtures always match real evaluation behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -district "Da Lat" -province "Lam Dong" -country Vietnam \
//	  -from 2024-06-01 -to 2024-06-30 \
//	  -out data/fixtures
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/generator"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
	"github.com/couchcryptid/parametric-risk-engine/internal/product"
	"github.com/couchcryptid/parametric-risk-engine/internal/risk"
	"github.com/couchcryptid/parametric-risk-engine/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	country := flag.String("country", "Vietnam", "region country")
	province := flag.String("province", "Lam Dong", "region province")
	district := flag.String("district", "Da Lat", "region district")
	fromStr := flag.String("from", "2024-06-01", "range start (YYYY-MM-DD)")
	toStr := flag.String("to", "2024-06-30", "range end (YYYY-MM-DD)")
	out := flag.String("out", "", "output directory for fixture files")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	from, err := time.Parse("2006-01-02", *fromStr)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.Parse("2006-01-02", *toStr)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}

	// Freeze the clock after the range so fixtures are always historical.
	domain.SetClock(clockwork.NewFakeClockAt(to.AddDate(0, 0, 7)))
	defer domain.SetClock(nil)

	region := domain.Region{Country: *country, Province: *province, District: *district}
	timeRange := domain.TimeRange{From: from.UTC(), To: to.UTC(), StartHour: 0, EndHour: 23}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	registry := product.NewRegistry(logger, metrics)
	products, err := product.LoadDefaultCatalog()
	if err != nil {
		return err
	}
	product.PopulateRegistry(registry, products)

	gen := generator.New(generator.NewMemoryCache(64), logger, metrics)
	svc := service.New(registry, gen, risk.NewEvaluator(logger, metrics), nil, logger, metrics)
	ctx := context.Background()

	for _, weatherType := range domain.AllWeatherTypes() {
		points, _, err := svc.Series(ctx, region, weatherType, timeRange)
		if err != nil {
			return fmt.Errorf("generate %s series: %w", weatherType, err)
		}
		path := filepath.Join(*out, fmt.Sprintf("series_%s.json", weatherType))
		if err := writeJSON(path, points); err != nil {
			return fmt.Errorf("writing series fixture: %w", err)
		}
		log.Printf("wrote %s (%d points)", path, len(points))
	}

	for _, p := range registry.All() {
		result, err := svc.EvaluateProduct(ctx, p.ID, region, timeRange)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", p.ID, err)
		}
		path := filepath.Join(*out, fmt.Sprintf("events_%s.json", p.ID))
		if err := writeJSON(path, result); err != nil {
			return fmt.Errorf("writing events fixture: %w", err)
		}
		log.Printf("wrote %s (%d events, severity %s)",
			path, result.Statistics.Total, result.Statistics.Severity)
	}

	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
