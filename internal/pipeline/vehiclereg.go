package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"dochicar/internal/clean"
	"dochicar/internal/dedupe"
	"dochicar/internal/reshape"
	"dochicar/internal/schema"
	"dochicar/internal/source"
	"dochicar/internal/storage"
)

// Fixed layout of the monthly registration statistics workbook: the
// gender×age×region cross-tab sheet, labels on physical row 3, data below.
const (
	vehicleRegSheet     = "04.성별_연령별"
	vehicleRegHeaderRow = 3
)

// VehicleRegMarker is the filename substring that identifies registration
// statistics workbooks during directory discovery.
const VehicleRegMarker = "자동차_등록자료_통계"

// vehicleRegMelt describes the wide→long reshape of the cross-tab sheet.
// Aggregate labels are excluded per dimension; the grand-total column never
// melts. The gender column arrives with merged cells and forward-fills.
var vehicleRegMelt = reshape.Spec{
	Renames: map[string]string{
		"성별":    "gender",
		"연령/시도": "age_group",
	},
	IDColumns:   []string{"gender", "age_group"},
	ForwardFill: map[string]bool{"gender": true},
	Synonyms: map[string]func(string) string{
		"gender": clean.Gender,
	},
	Exclude: map[string]map[string]bool{
		"gender": {
			"합계": true, "계": true, "기타": true,
			"미상": true, "무응답": true, "불명": true,
		},
		"age_group": {
			"계": true, "합계": true, "기타": true,
		},
	},
	ExcludeColumns: map[string]bool{"총계": true},
}

// LoadVehicleReg ingests one monthly registration statistics workbook into
// the vehicle_reg table.
//
// The reporting period is inferred from the file name, then from the sheet's
// title rows; with neither present the load fails before anything is written
// (*clean.PeriodNotFoundError). A missing identifier column after renaming
// fails with *reshape.SchemaMismatchError. On key collision only reg_count
// is refreshed.
func LoadVehicleReg(ctx context.Context, repo storage.Repository, path string, opts Options) (Result, error) {
	var res Result

	start := time.Now()
	table, err := source.ReadSheet(path, vehicleRegSheet, vehicleRegHeaderRow)
	observeStage(StageReading, start, err)
	if err != nil {
		return res, err
	}
	res.Read = int64(len(table.Rows))
	countRecords("read", res.Read)

	period, err := clean.InferPeriod(filepath.Base(path), table.HeadText)
	if err != nil {
		observeStage(StageFailed, start, err)
		return res, err
	}

	start = time.Now()
	long, err := reshape.Melt(table, vehicleRegMelt)
	observeStage(StageReshaping, start, err)
	if err != nil {
		return res, err
	}
	res.Cleaned = int64(len(long))
	countRecords("cleaned", res.Cleaned)

	// In-batch dedup across the melted rows; the upsert key is the same
	// four columns, so first occurrence wins here and refresh wins in the
	// store.
	monthKey := period.Format("2006-01-02")
	long = dedupe.First(long, func(r reshape.Row) string {
		return schema.NaturalKey(monthKey, r.Column, r.IDs["gender"], r.IDs["age_group"])
	})
	res.Kept = int64(len(long))
	countRecords("kept", res.Kept)

	batch := make([][]any, len(long))
	for i, r := range long {
		batch[i] = []any{period, r.Column, r.IDs["gender"], r.IDs["age_group"], r.Count}
	}

	start = time.Now()
	written, err := writeAll(ctx, repo, schema.VehicleReg, batch, opts.batchSize())
	observeStage(StageWriting, start, err)
	res.Written = written
	countRecords("written", written)
	return res, err
}

// Discover lists files in dir whose name contains marker, e.g. every monthly
// statistics workbook dropped into a data directory. Results are
// lexically sorted, which for these files is chronological.
func Discover(dir, marker string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*"+marker+"*"))
}
