package domain

import (
	"context"
	"errors"
	"sort"
)

// ErrNodeNotFound is returned when no routing node matches a station name.
var ErrNodeNotFound = errors.New("routing node not found")

// NodeCandidate is one autocomplete suggestion from the routing service.
type NodeCandidate struct {
	ID   string
	Name string
}

// NodeSearcher queries the routing service's autocomplete endpoint.
type NodeSearcher interface {
	SearchNodes(ctx context.Context, word string) ([]NodeCandidate, error)
}

// MatchNode picks the candidate whose name is exactly station, optionally
// followed by one of the prefecture qualifiers, e.g. "新宿" or "新宿(東京都)".
// The first matching candidate in service order wins.
func MatchNode(station string, candidates []NodeCandidate, qualifiers []string) (string, error) {
	for _, c := range candidates {
		if c.Name == station {
			return c.ID, nil
		}
		for _, q := range qualifiers {
			if c.Name == station+q {
				return c.ID, nil
			}
		}
	}
	return "", ErrNodeNotFound
}

// ReachabilityQuery holds the parameters of one reachable-transit request.
type ReachabilityQuery struct {
	NodeID        string
	TermMinutes   int
	ExcludedModes []string
	TransitLimit  int
	ResultLimit   int
}

// ReachableStation is one raw row returned by the reachability service.
type ReachableStation struct {
	Name         string
	Time         int
	TransitCount int
}

// ReachabilityService queries stations reachable from a routing node.
type ReachabilityService interface {
	Reachable(ctx context.Context, q ReachabilityQuery) ([]ReachableStation, error)
}

// ReachabilityEntry is the best known travel time and transfer count for one
// (destination, candidate) pair.
type ReachabilityEntry struct {
	Time         int `json:"time"`
	TransitCount int `json:"transit_count"`
}

// ReachabilitySet maps a normalized candidate station name to its entry for
// one destination.
type ReachabilitySet map[string]ReachabilityEntry

// ReduceReachability folds raw rows into a set keyed by normalized name. Rows
// that collapse to the same name keep the minimum time and the minimum
// transfer count independently. The destination itself is added with zero
// time and zero transfers.
func ReduceReachability(rows []ReachableStation, self string) ReachabilitySet {
	set := make(ReachabilitySet, len(rows)+1)
	for _, row := range rows {
		name := NormalizeStationName(row.Name)
		if name == "" {
			continue
		}
		cur, ok := set[name]
		if !ok {
			set[name] = ReachabilityEntry{Time: row.Time, TransitCount: row.TransitCount}
			continue
		}
		set[name] = ReachabilityEntry{
			Time:         min(cur.Time, row.Time),
			TransitCount: min(cur.TransitCount, row.TransitCount),
		}
	}
	set[NormalizeStationName(self)] = ReachabilityEntry{}
	return set
}

// DestinationSet pairs a destination station with its reachability set.
type DestinationSet struct {
	Destination string
	Stations    ReachabilitySet
}

// DistanceToStations maps a candidate station to its entry per destination.
type DistanceToStations map[string]map[string]ReachabilityEntry

// Aggregation is the per-candidate view over every usable destination.
type Aggregation struct {
	// Destinations lists the destinations that contributed, in order.
	Destinations []string
	Stations     DistanceToStations
}

// Candidates returns the candidate station names in sorted order.
func (a Aggregation) Candidates() []string {
	names := make([]string, 0, len(a.Stations))
	for name := range a.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Intersect keeps only stations present in every destination set and reshapes
// them into a per-candidate mapping. An empty destination set empties the
// result; no sets at all also yields an empty result.
func Intersect(sets []DestinationSet) Aggregation {
	agg := Aggregation{
		Destinations: make([]string, 0, len(sets)),
		Stations:     DistanceToStations{},
	}
	if len(sets) == 0 {
		return agg
	}
	for _, s := range sets {
		agg.Destinations = append(agg.Destinations, s.Destination)
	}

	for name := range sets[0].Stations {
		legs := make(map[string]ReachabilityEntry, len(sets))
		for _, s := range sets {
			entry, ok := s.Stations[name]
			if !ok {
				legs = nil
				break
			}
			legs[s.Destination] = entry
		}
		if legs != nil {
			agg.Stations[name] = legs
		}
	}
	return agg
}
