// Package catalog extracts car listings from price-comparison catalog pages.
//
// Site markup is position- and string-convention based and therefore fragile;
// each source site gets its own Extractor implementation returning an
// explicit partial result, so a markup change breaks exactly one extractor
// and surfaces as missing optional fields rather than hard errors.
package catalog

import (
	"github.com/PuerkitoBio/goquery"
)

// PriceUnitKRW tags prices expressed in won. The unit travels with every
// monetary value from extraction onward; nothing downstream infers a unit
// from magnitude.
const PriceUnitKRW = "KRW"

// Listing is the partial result one catalog record yields. Only ModelName is
// required downstream; every other field may legitimately be empty when the
// source markup did not carry it.
type Listing struct {
	Manufacturer string
	ModelName    string
	ImageURL     string
	LaunchDate   string // "YYYY-MM" as displayed, dots folded to dashes
	BodyType     string
	PriceRaw     string // as displayed, e.g. "3,594"
	PriceUnit    string

	ResourceType     string // displacement vs battery capacity
	ResourceAmount   string
	EfficiencyType   string // fuel economy vs electric economy
	EfficiencyAmount string

	WaitPeriod string

	Fuels []string
}

// Extractor turns a parsed catalog page into listings. Implementations are
// per-site and must not fail on partially matching markup.
type Extractor interface {
	Extract(doc *goquery.Document) []Listing
}
