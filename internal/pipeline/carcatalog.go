package pipeline

import (
	"context"
	"time"

	"dochicar/internal/catalog"
	"dochicar/internal/clean"
	"dochicar/internal/dedupe"
	"dochicar/internal/schema"
	"dochicar/internal/storage"
)

// LoadCarCatalog ingests a catalog list page (URL or saved HTML file) into
// the car and fuel tables.
//
// Listings without a model name cannot be keyed and are dropped. The car
// table dedupes and upserts on model_name; fuel rows upsert on
// (model_name, fuel_type) with nothing to refresh. A failure writing the car
// table aborts before fuel rows are attempted, keeping the two tables'
// relative state predictable.
func LoadCarCatalog(ctx context.Context, repo storage.Repository, location string, opts Options) (Result, error) {
	var res Result

	start := time.Now()
	doc, err := catalog.Load(ctx, nil, location)
	observeStage(StageReading, start, err)
	if err != nil {
		return res, err
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = catalog.Danawa{}
	}
	listings := extractor.Extract(doc)
	res.Read = int64(len(listings))
	countRecords("read", res.Read)

	type keyedCar struct {
		key  string
		vals []any
	}
	type fuelPair struct {
		model, fuel string
	}

	start = time.Now()
	cars := make([]keyedCar, 0, len(listings))
	var fuels []fuelPair
	for _, l := range listings {
		model := clean.Text(l.ModelName)
		if model == "" {
			continue
		}

		var price any
		if v, ok := clean.Number(l.PriceRaw); ok {
			price = v
		} else if l.PriceRaw != "" {
			countRecords("null_field", 1)
		}

		cars = append(cars, keyedCar{
			key: model,
			vals: []any{
				nilIfEmpty(clean.Text(l.Manufacturer)),
				model,
				nilIfEmpty(l.ImageURL),
				nilIfEmpty(clean.Text(l.LaunchDate)),
				nilIfEmpty(clean.Text(l.BodyType)),
				price,
				nilIfEmpty(l.PriceUnit),
				nilIfEmpty(clean.Text(l.ResourceType)),
				nilIfEmpty(clean.Text(l.ResourceAmount)),
				nilIfEmpty(clean.Text(l.EfficiencyType)),
				nilIfEmpty(clean.Text(l.EfficiencyAmount)),
				nilIfEmpty(clean.Text(l.WaitPeriod)),
			},
		})
		for _, f := range l.Fuels {
			if f = clean.Text(f); f != "" {
				fuels = append(fuels, fuelPair{model: model, fuel: f})
			}
		}
	}
	observeStage(StageCleaning, start, nil)
	res.Cleaned = int64(len(cars))
	countRecords("cleaned", res.Cleaned)

	start = time.Now()
	cars = dedupe.First(cars, func(c keyedCar) string { return c.key })
	fuels = dedupe.First(fuels, func(p fuelPair) string {
		return schema.NaturalKey(p.model, p.fuel)
	})
	observeStage(StageDeduplicating, start, nil)
	res.Kept = int64(len(cars))
	countRecords("kept", res.Kept)

	carRows := make([][]any, len(cars))
	for i, c := range cars {
		carRows[i] = c.vals
	}

	start = time.Now()
	written, err := writeAll(ctx, repo, schema.Car, carRows, opts.batchSize())
	res.Written = written
	if err != nil {
		observeStage(StageWriting, start, err)
		countRecords("written", written)
		return res, err
	}

	fuelRows := make([][]any, len(fuels))
	for i, p := range fuels {
		fuelRows[i] = []any{p.model, p.fuel}
	}
	fw, err := writeAll(ctx, repo, schema.Fuel, fuelRows, opts.batchSize())
	observeStage(StageWriting, start, err)
	res.Written += fw
	countRecords("written", res.Written)
	return res, err
}
