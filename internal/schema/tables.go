// Package schema declares the destination tables the ingestion pipeline
// writes to, including their natural keys and the columns an upsert is
// allowed to refresh on key collision.
//
// Keeping the table shapes in one place lets the storage backends stay
// generic: they render DDL and upsert statements from a Table value instead
// of hardcoding per-table SQL.
package schema

import "strings"

// ColType is a backend-independent column type. Each storage backend maps it
// to its own DDL type.
type ColType string

const (
	Text    ColType = "text"
	Real    ColType = "real"
	Integer ColType = "integer"
	Date    ColType = "date"
)

type Column struct {
	Name string
	Type ColType
}

// Table describes one destination table.
//
// Key lists the natural-key columns; together they form the upsert conflict
// target and must be covered by a unique constraint. Refresh lists the
// non-key columns overwritten when an incoming row collides on the key.
// Key columns are never updated in place. An empty Refresh list means
// "insert if absent, otherwise leave the existing row alone".
type Table struct {
	Name    string
	Columns []Column
	Key     []string
	Refresh []string
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// keyDelimiter joins natural-key components. The delimiter itself never
// appears in the underlying fields (business names, addresses, region
// labels), so joined keys cannot collide across component boundaries.
const keyDelimiter = "|"

// NaturalKey joins key components into the canonical dedup/upsert key string.
// Empty components are kept: records missing identifying fields collapse into
// a shared weak key, which is accepted behavior because upstream filtering
// drops records missing their primary identifier.
func NaturalKey(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// ServiceCenter holds one row per vehicle repair shop from the public
// registry export. Natural key is (name_ko, addr_road, addr_jibun): shop
// names repeat across districts, addresses disambiguate.
var ServiceCenter = Table{
	Name: "service_center",
	Columns: []Column{
		{Name: "name_ko", Type: Text},
		{Name: "type_code", Type: Text},
		{Name: "addr_road", Type: Text},
		{Name: "addr_jibun", Type: Text},
		{Name: "lat", Type: Real},
		{Name: "lon", Type: Real},
		{Name: "biz_reg_date", Type: Date},
		{Name: "area_text", Type: Text},
		{Name: "status_code", Type: Text},
		{Name: "closed_date", Type: Date},
		{Name: "pause_from", Type: Date},
		{Name: "pause_to", Type: Date},
		{Name: "open_time", Type: Text},
		{Name: "close_time", Type: Text},
		{Name: "phone", Type: Text},
		{Name: "mgmt_office_name", Type: Text},
		{Name: "mgmt_office_tel", Type: Text},
		{Name: "data_ref_date", Type: Date},
		{Name: "provider_code", Type: Text},
		{Name: "provider_name", Type: Text},
	},
	Key: []string{"name_ko", "addr_road", "addr_jibun"},
	Refresh: []string{
		"type_code", "lat", "lon", "biz_reg_date", "area_text",
		"status_code", "closed_date", "pause_from", "pause_to",
		"open_time", "close_time", "phone", "mgmt_office_name",
		"mgmt_office_tel", "data_ref_date", "provider_code", "provider_name",
	},
}

// Car holds one row per catalog model. The source schema left model_name
// without a uniqueness constraint; here it is the enforced natural key so
// re-running a catalog load refreshes rows instead of duplicating them.
var Car = Table{
	Name: "car",
	Columns: []Column{
		{Name: "comp_name", Type: Text},
		{Name: "model_name", Type: Text},
		{Name: "img_url", Type: Text},
		{Name: "launch_date", Type: Text},
		{Name: "model_type", Type: Text},
		{Name: "model_price", Type: Real},
		{Name: "price_unit", Type: Text},
		{Name: "resrc_type", Type: Text},
		{Name: "resrc_amount", Type: Text},
		{Name: "efficiency_type", Type: Text},
		{Name: "efficiency_amount", Type: Text},
		{Name: "wait_period", Type: Text},
	},
	Key: []string{"model_name"},
	Refresh: []string{
		"comp_name", "img_url", "launch_date", "model_type", "model_price",
		"price_unit", "resrc_type", "resrc_amount", "efficiency_type",
		"efficiency_amount", "wait_period",
	},
}

// Fuel holds one row per (model, fuel) pair. Nothing to refresh: a pair
// either exists or it does not.
var Fuel = Table{
	Name: "fuel",
	Columns: []Column{
		{Name: "model_name", Type: Text},
		{Name: "fuel_type", Type: Text},
	},
	Key: []string{"model_name", "fuel_type"},
}

// VehicleReg holds monthly registration statistics in long format. Only the
// measure column is refreshable; the four dimension columns are the key.
var VehicleReg = Table{
	Name: "vehicle_reg",
	Columns: []Column{
		{Name: "reg_month", Type: Date},
		{Name: "region", Type: Text},
		{Name: "gender", Type: Text},
		{Name: "age_group", Type: Text},
		{Name: "reg_count", Type: Integer},
	},
	Key:     []string{"reg_month", "region", "gender", "age_group"},
	Refresh: []string{"reg_count"},
}
