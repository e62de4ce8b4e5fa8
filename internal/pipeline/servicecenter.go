package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"dochicar/internal/clean"
	"dochicar/internal/dedupe"
	"dochicar/internal/normalize"
	"dochicar/internal/schema"
	"dochicar/internal/source"
	"dochicar/internal/storage"
)

// serviceCenterRenames maps the public registry export's column labels onto
// the service_center schema. Several labels are synonyms from different
// export vintages; the first one carrying a value wins per record.
var serviceCenterRenames = map[string]string{
	"자동차정비업체명":  "name_ko",
	"사업장명":      "name_ko",
	"업소명":       "name_ko",
	"자동차정비업체종류": "type_code",
	"업종":        "type_code",
	"업태":        "type_code",
	"소재지도로명주소":  "addr_road",
	"도로명주소":     "addr_road",
	"소재지지번주소":   "addr_jibun",
	"지번주소":      "addr_jibun",
	"위도":        "lat",
	"경도":        "lon",
	"사업등록일자":    "biz_reg_date",
	"면적":        "area_text",
	"영업상태":      "status_code",
	"폐업일자":      "closed_date",
	"휴업시작일자":    "pause_from",
	"휴업종료일자":    "pause_to",
	"운영시작시각":    "open_time",
	"운영종료시각":    "close_time",
	"전화번호":      "phone",
	"대표전화":      "phone",
	"연락처":       "phone",
	"관리기관명":     "mgmt_office_name",
	"관리기관전화번호":  "mgmt_office_tel",
	"데이터기준일자":   "data_ref_date",
	"제공기관코드":    "provider_code",
	"제공기관명":     "provider_name",
}

var serviceCenterDateFields = map[string]bool{
	"biz_reg_date":  true,
	"closed_date":   true,
	"pause_from":    true,
	"pause_to":      true,
	"data_ref_date": true,
}

// LoadServiceCenters ingests the repair-shop registry at path into the
// service_center table. CSV is the primary format (with encoding fallback);
// a .json extension switches to the JSON dump of the same records.
//
// Records without a business name are dropped: the name is the primary
// identifier and a row without one cannot be keyed or shown. Coordinates
// outside the configured box degrade to null. Natural key for dedup and
// upsert is (name_ko, addr_road, addr_jibun).
func LoadServiceCenters(ctx context.Context, repo storage.Repository, path string, opts Options) (Result, error) {
	var res Result

	start := time.Now()
	var (
		table *source.RawTable
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		table, err = source.ReadJSON(path)
	} else {
		table, err = source.ReadCSV(path)
	}
	observeStage(StageReading, start, err)
	if err != nil {
		return res, err
	}
	res.Read = int64(len(table.Rows))
	countRecords("read", res.Read)

	start = time.Now()
	cols := schema.ServiceCenter.ColumnNames()
	recs := normalize.Normalize(table, serviceCenterRenames, cols)
	observeStage(StageNormalizing, start, nil)

	bounds := opts.Bounds
	if bounds == (clean.Bounds{}) {
		bounds = clean.KoreaServiceCenter
	}

	type keyedRow struct {
		key  string
		vals []any
	}

	start = time.Now()
	rows := make([]keyedRow, 0, len(recs))
	for _, rec := range recs {
		name := clean.Text(rec["name_ko"])
		if name == "" {
			continue
		}
		addrRoad := clean.Text(rec["addr_road"])
		addrJibun := clean.Text(rec["addr_jibun"])

		vals := make([]any, len(cols))
		for i, col := range cols {
			switch {
			// Key columns store strings, never NULL: NULL key components
			// make unique keys non-colliding and break upsert idempotence.
			case col == "name_ko":
				vals[i] = name
			case col == "addr_road":
				vals[i] = addrRoad
			case col == "addr_jibun":
				vals[i] = addrJibun
			case col == "lat" || col == "lon":
				// handled below as a pair
			case col == "phone":
				vals[i] = nilIfEmpty(clean.Phone(rec[col]))
			case serviceCenterDateFields[col]:
				vals[i] = dateOrNil(rec[col])
			default:
				vals[i] = nilIfEmpty(clean.Text(rec[col]))
			}
		}
		if lat, lon, ok := bounds.Coords(rec["lat"], rec["lon"]); ok {
			setColumn(cols, vals, "lat", lat)
			setColumn(cols, vals, "lon", lon)
		} else if rec["lat"] != "" || rec["lon"] != "" {
			countRecords("null_field", 1)
		}

		rows = append(rows, keyedRow{
			key:  schema.NaturalKey(name, addrRoad, addrJibun),
			vals: vals,
		})
	}
	observeStage(StageCleaning, start, nil)
	res.Cleaned = int64(len(rows))
	countRecords("cleaned", res.Cleaned)

	start = time.Now()
	rows = dedupe.First(rows, func(r keyedRow) string { return r.key })
	observeStage(StageDeduplicating, start, nil)
	res.Kept = int64(len(rows))
	countRecords("kept", res.Kept)

	batch := make([][]any, len(rows))
	for i, r := range rows {
		batch[i] = r.vals
	}

	start = time.Now()
	written, err := writeAll(ctx, repo, schema.ServiceCenter, batch, opts.batchSize())
	observeStage(StageWriting, start, err)
	res.Written = written
	countRecords("written", written)
	return res, err
}

func setColumn(cols []string, vals []any, name string, v any) {
	for i, c := range cols {
		if c == name {
			vals[i] = v
			return
		}
	}
}
