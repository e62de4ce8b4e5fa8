package clean

// Bounds is an inclusive geographic box. Coordinates outside the box are
// treated as "unknown location", not as a reason to reject the record: the
// datasets cover a fixed deployment region and out-of-range points are almost
// always entry errors in otherwise usable rows.
type Bounds struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// KoreaServiceCenter is the box applied to the repair-shop registry.
var KoreaServiceCenter = Bounds{LatMin: 33, LatMax: 39, LonMin: 124, LonMax: 132}

// KoreaWide is the looser box used by the generic cleaner variant.
var KoreaWide = Bounds{LatMin: 33, LatMax: 43, LonMin: 124, LonMax: 132}

// Contains reports whether (lat, lon) lies inside the box, bounds inclusive.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Coords parses a raw latitude/longitude pair and applies the bounds check.
// Either side failing to parse, or the pair falling outside the box, yields
// ok=false: the caller stores nulls and keeps the record.
func (b Bounds) Coords(rawLat, rawLon string) (lat, lon float64, ok bool) {
	lat, latOK := Number(rawLat)
	lon, lonOK := Number(rawLon)
	if !latOK || !lonOK || !b.Contains(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}
