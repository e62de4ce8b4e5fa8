// Command ingest runs one ingestion load against the configured database.
//
// Examples:
//
//	ingest -source service_center -path data/raw/auto_repair_standard.csv
//	ingest -source vehicle_reg -data-dir data/kmj
//	ingest -source car_catalog -path data/pdy/danawa_cars_html_1page.html
//
// The connection string comes from DB_URL (or DB_URL__<ALIAS> with
// -db-alias); -dsn overrides both for one-off runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"dochicar/internal/dbconn"
	"dochicar/internal/metrics"
	"dochicar/internal/metrics/datadog"
	"dochicar/internal/pipeline"
	"dochicar/internal/storage"

	// register all backends with the storage factory; flags pick one.
	_ "dochicar/internal/storage/all"
)

func main() {
	var (
		sourceKind  string
		path        string
		dataDir     string
		dbAlias     string
		dsn         string
		storageKind string
		batchSize   int
		metricsFlg  string
		verbose     bool
	)

	flag.StringVar(&sourceKind, "source", "", "source to load: service_center | vehicle_reg | car_catalog")
	flag.StringVar(&path, "path", "", "source file path or catalog URL")
	flag.StringVar(&dataDir, "data-dir", "", "directory to discover vehicle_reg workbooks in (alternative to -path)")
	flag.StringVar(&dbAlias, "db-alias", "", "database alias (resolves DB_URL__<ALIAS>, falls back to DB_URL)")
	flag.StringVar(&dsn, "dsn", "", "connection string override (bypasses DB_URL resolution)")
	flag.StringVar(&storageKind, "storage", "mysql", "storage backend: mysql | sqlite | postgres")
	flag.IntVar(&batchSize, "batch", pipeline.DefaultBatchSize, "upsert batch size")
	flag.StringVar(&metricsFlg, "metrics-backend", "none", "metrics backend: none | datadog")
	flag.BoolVar(&verbose, "v", false, "enable verbose logs")
	flag.Parse()

	ctx := context.Background()

	if metricsFlg == "datadog" {
		b, err := datadog.NewBackend(ctx, datadog.Options{JobName: "ingest_" + sourceKind})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}
	}

	repo, cleanup, err := openRepository(ctx, storageKind, dsn, dbAlias)
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer cleanup()

	paths, err := resolvePaths(sourceKind, path, dataDir)
	if err != nil {
		fatalf("%v", err)
	}

	opts := pipeline.Options{BatchSize: batchSize}
	var total pipeline.Result
	for _, p := range paths {
		if verbose {
			log.Printf("loading %s from %s", sourceKind, p)
		}
		res, err := runLoad(ctx, sourceKind, repo, p, opts)
		total.Read += res.Read
		total.Cleaned += res.Cleaned
		total.Kept += res.Kept
		total.Written += res.Written
		if err != nil {
			// Committed batches stay committed; rerun after fixing the
			// cause and the upsert reprocesses everything safely.
			log.Printf("load %s: %v", p, err)
			printResult(total)
			os.Exit(1)
		}
	}
	printResult(total)
}

func openRepository(ctx context.Context, kind, dsn, alias string) (storage.Repository, func(), error) {
	if dsn != "" {
		repo, err := storage.New(ctx, storage.Config{Kind: kind, DSN: dsn})
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}
	provider := dbconn.NewProvider(kind, 0)
	repo, err := provider.Repository(ctx, alias)
	if err != nil {
		return nil, nil, err
	}
	return repo, provider.Close, nil
}

func resolvePaths(sourceKind, path, dataDir string) ([]string, error) {
	if path != "" {
		return []string{path}, nil
	}
	if dataDir != "" && sourceKind == "vehicle_reg" {
		paths, err := pipeline.Discover(dataDir, pipeline.VehicleRegMarker)
		if err != nil {
			return nil, fmt.Errorf("discover in %s: %w", dataDir, err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no %s workbooks found in %s", pipeline.VehicleRegMarker, dataDir)
		}
		return paths, nil
	}
	return nil, fmt.Errorf("-path is required (or -data-dir for vehicle_reg)")
}

func runLoad(ctx context.Context, sourceKind string, repo storage.Repository, path string, opts pipeline.Options) (pipeline.Result, error) {
	switch sourceKind {
	case "service_center":
		return pipeline.LoadServiceCenters(ctx, repo, path, opts)
	case "vehicle_reg":
		return pipeline.LoadVehicleReg(ctx, repo, path, opts)
	case "car_catalog":
		return pipeline.LoadCarCatalog(ctx, repo, path, opts)
	default:
		return pipeline.Result{}, fmt.Errorf("unknown -source %q", sourceKind)
	}
}

func printResult(r pipeline.Result) {
	fmt.Printf("read=%d cleaned=%d kept=%d written=%d\n", r.Read, r.Cleaned, r.Kept, r.Written)
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}
