package domain

import (
	"context"
	"slices"
)

// RentSentinel marks a rent figure that is missing or unreliable in the source.
// It must stay above any configured rent ceiling.
const RentSentinel = 999.0

// Line is one transit line listed for an administrative area.
type Line struct {
	Area string `json:"area"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RentRow is one station row of a line's rent table.
type RentRow struct {
	Station string
	Rent    float64
}

// RentSource enumerates lines per area and rent rows per line.
type RentSource interface {
	// Lines returns the lines listed for an area in source order.
	Lines(ctx context.Context, area string) ([]Line, error)

	// StationRents returns the rent table rows for one line.
	StationRents(ctx context.Context, line Line) ([]RentRow, error)
}

// StationRentRecord is the rent figure and serving lines for one station.
type StationRentRecord struct {
	Name  string   `json:"name"`
	Rent  float64  `json:"rent"`
	Lines []string `json:"lines"`
}

// RentKnown reports whether the record carries a real rent figure.
func (r StationRentRecord) RentKnown() bool {
	return r.Rent != RentSentinel
}

// RentCatalog maps a normalized station name to its rent record.
type RentCatalog map[string]StationRentRecord

// Add records that line serves station with the given rent figure. The first
// figure seen for a station is kept; later calls only extend its line set.
// It returns false when the station name normalizes to nothing.
func (c RentCatalog) Add(station string, rent float64, line string) bool {
	name := NormalizeStationName(station)
	if name == "" {
		return false
	}

	rec, ok := c[name]
	if !ok {
		c[name] = StationRentRecord{Name: name, Rent: rent, Lines: []string{line}}
		return true
	}
	if !slices.Contains(rec.Lines, line) {
		rec.Lines = append(rec.Lines, line)
		c[name] = rec
	}
	return true
}

// Lookup returns the record for a raw or normalized station name.
func (c RentCatalog) Lookup(station string) (StationRentRecord, bool) {
	rec, ok := c[NormalizeStationName(station)]
	return rec, ok
}
