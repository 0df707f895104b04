package domain

import (
	"cmp"
	"slices"
	"time"
)

// ScoreOptions are the hard filters and output size applied by [Rank].
type ScoreOptions struct {
	RentLimit float64
	TimeLimit int
	// Top truncates the ranking; zero or negative keeps every candidate.
	Top    int
	Ignore []string
}

// SkipReason explains why a candidate was left out of the ranking.
type SkipReason string

const (
	SkipIgnored     SkipReason = "ignored"
	SkipMissingRent SkipReason = "missing_rent"
	SkipUnknownRent SkipReason = "unknown_rent"
	SkipOverRent    SkipReason = "over_rent"
	SkipTooFar      SkipReason = "too_far"
)

// Skip records one excluded candidate.
type Skip struct {
	Station string
	Reason  SkipReason
}

// CandidateScore is a scored candidate station.
type CandidateScore struct {
	Station string  `json:"station"`
	Score   float64 `json:"score"`
}

// Leg is the travel time and transfer count to one destination.
type Leg struct {
	Destination  string `json:"destination"`
	Time         int    `json:"time"`
	TransitCount int    `json:"transit_count"`
}

// RankedCandidate is a scored candidate together with its reporting detail.
type RankedCandidate struct {
	CandidateScore
	Rank  int      `json:"rank"`
	Rent  float64  `json:"rent"`
	Lines []string `json:"lines"`
	Legs  []Leg    `json:"legs"`
}

// Ranking is the output of one pipeline run.
type Ranking struct {
	RunID        string            `json:"run_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Destinations []string          `json:"destinations"`
	Candidates   []RankedCandidate `json:"candidates"`
}

// NewRanking stamps ranked candidates with the run ID and the current time.
func NewRanking(runID string, destinations []string, candidates []RankedCandidate) Ranking {
	return Ranking{
		RunID:        runID,
		GeneratedAt:  clock.Now().UTC(),
		Destinations: destinations,
		Candidates:   candidates,
	}
}

// Score computes (Σ time²) × rent². Lower is better.
func Score(rent float64, legs []Leg) float64 {
	var sum float64
	for _, l := range legs {
		t := float64(l.Time)
		sum += t * t
	}
	return sum * rent * rent
}

// Rank joins candidates against the rent catalog, applies the hard filters and
// returns candidates in ascending score order, truncated to opts.Top. Ties are
// broken by station name so the output is deterministic. Every excluded
// candidate is reported in skips.
func Rank(catalog RentCatalog, agg Aggregation, opts ScoreOptions) (ranked []RankedCandidate, skips []Skip) {
	ignored := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignored[NormalizeStationName(name)] = struct{}{}
	}

	for _, name := range agg.Candidates() {
		station := NormalizeStationName(name)
		if _, ok := ignored[station]; ok {
			skips = append(skips, Skip{Station: station, Reason: SkipIgnored})
			continue
		}

		rec, ok := catalog[station]
		if !ok {
			skips = append(skips, Skip{Station: station, Reason: SkipMissingRent})
			continue
		}
		if !rec.RentKnown() {
			skips = append(skips, Skip{Station: station, Reason: SkipUnknownRent})
			continue
		}
		if rec.Rent > opts.RentLimit {
			skips = append(skips, Skip{Station: station, Reason: SkipOverRent})
			continue
		}

		legs, tooFar := collectLegs(agg, name, opts.TimeLimit)
		if tooFar {
			skips = append(skips, Skip{Station: station, Reason: SkipTooFar})
			continue
		}

		ranked = append(ranked, RankedCandidate{
			CandidateScore: CandidateScore{Station: station, Score: Score(rec.Rent, legs)},
			Rent:           rec.Rent,
			Lines:          slices.Clone(rec.Lines),
			Legs:           legs,
		})
	}

	slices.SortStableFunc(ranked, func(a, b RankedCandidate) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Station, b.Station)
	})

	if opts.Top > 0 && len(ranked) > opts.Top {
		ranked = ranked[:opts.Top]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, skips
}

// collectLegs returns the candidate's legs in destination order and whether
// any leg exceeds the time limit.
func collectLegs(agg Aggregation, candidate string, timeLimit int) ([]Leg, bool) {
	entries := agg.Stations[candidate]
	legs := make([]Leg, 0, len(entries))
	tooFar := false
	for _, dest := range agg.Destinations {
		e, ok := entries[dest]
		if !ok {
			continue
		}
		if e.Time > timeLimit {
			tooFar = true
		}
		legs = append(legs, Leg{Destination: dest, Time: e.Time, TransitCount: e.TransitCount})
	}
	return legs, tooFar
}
