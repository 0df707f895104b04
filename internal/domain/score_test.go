package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDestinations(times map[string][2]int) Aggregation {
	agg := Aggregation{Destinations: []string{"D1", "D2"}, Stations: DistanceToStations{}}
	for station, ts := range times {
		agg.Stations[station] = map[string]ReachabilityEntry{
			"D1": {Time: ts[0]},
			"D2": {Time: ts[1], TransitCount: 1},
		}
	}
	return agg
}

func TestRank_EndToEndScenario(t *testing.T) {
	catalog := RentCatalog{
		"A": {Name: "A", Rent: 10, Lines: []string{"L1"}},
		"B": {Name: "B", Rent: 15, Lines: []string{"L2"}},
	}
	agg := twoDestinations(map[string][2]int{"A": {5, 5}, "B": {20, 20}})

	ranked, skips := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30, Top: 10})

	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].Station)
	assert.Equal(t, 5000.0, ranked[0].Score)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 10.0, ranked[0].Rent)
	assert.Equal(t, []string{"L1"}, ranked[0].Lines)
	assert.Equal(t, []Leg{
		{Destination: "D1", Time: 5},
		{Destination: "D2", Time: 5, TransitCount: 1},
	}, ranked[0].Legs)
	assert.Equal(t, []Skip{{Station: "B", Reason: SkipOverRent}}, skips)
}

func TestRank_RentCeilingInclusive(t *testing.T) {
	catalog := RentCatalog{
		"at":    {Name: "at", Rent: 13},
		"above": {Name: "above", Rent: 14},
	}
	agg := twoDestinations(map[string][2]int{"at": {10, 10}, "above": {10, 10}})

	ranked, skips := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30})

	require.Len(t, ranked, 1)
	assert.Equal(t, "at", ranked[0].Station)
	assert.Equal(t, []Skip{{Station: "above", Reason: SkipOverRent}}, skips)
}

func TestRank_TimeCeilingInclusive(t *testing.T) {
	catalog := RentCatalog{
		"at":    {Name: "at", Rent: 8},
		"above": {Name: "above", Rent: 8},
	}
	agg := twoDestinations(map[string][2]int{"at": {30, 1}, "above": {1, 31}})

	ranked, skips := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30})

	require.Len(t, ranked, 1)
	assert.Equal(t, "at", ranked[0].Station)
	assert.Equal(t, []Skip{{Station: "above", Reason: SkipTooFar}}, skips)
}

func TestRank_SkipsIgnoredMissingAndSentinel(t *testing.T) {
	catalog := RentCatalog{
		"霞ヶ関": {Name: "霞ヶ関", Rent: 9},
		"新綱島": {Name: "新綱島", Rent: RentSentinel},
		"中野":  {Name: "中野", Rent: 9},
	}
	agg := twoDestinations(map[string][2]int{
		"霞ヶ関": {5, 5},
		"新綱島": {5, 5},
		"舞浜":  {5, 5},
		"中野":  {5, 5},
	})

	ranked, skips := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30, Ignore: []string{"霞ヶ関"}})

	require.Len(t, ranked, 1)
	assert.Equal(t, "中野", ranked[0].Station)
	assert.ElementsMatch(t, []Skip{
		{Station: "霞ヶ関", Reason: SkipIgnored},
		{Station: "新綱島", Reason: SkipUnknownRent},
		{Station: "舞浜", Reason: SkipMissingRent},
	}, skips)
}

func TestRank_SortedAndTruncated(t *testing.T) {
	catalog := RentCatalog{
		"a": {Name: "a", Rent: 10},
		"b": {Name: "b", Rent: 8},
		"c": {Name: "c", Rent: 12},
		"d": {Name: "d", Rent: 8},
	}
	agg := twoDestinations(map[string][2]int{
		"a": {10, 10},
		"b": {10, 10},
		"c": {10, 10},
		"d": {10, 10},
	})

	ranked, _ := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30, Top: 3})

	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Station, "ties break by station name")
	assert.Equal(t, "d", ranked[1].Station)
	assert.Equal(t, "a", ranked[2].Station)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRank_TopZeroKeepsAll(t *testing.T) {
	catalog := RentCatalog{"a": {Name: "a", Rent: 10}, "b": {Name: "b", Rent: 11}}
	agg := twoDestinations(map[string][2]int{"a": {1, 1}, "b": {1, 1}})

	ranked, _ := Rank(catalog, agg, ScoreOptions{RentLimit: 13, TimeLimit: 30})
	assert.Len(t, ranked, 2)
}

func TestScore_MonotonicInTime(t *testing.T) {
	base := []Leg{{Destination: "D1", Time: 10}, {Destination: "D2", Time: 20}}
	prev := Score(9, base)
	for extra := 1; extra <= 5; extra++ {
		legs := []Leg{{Destination: "D1", Time: 10 + extra}, {Destination: "D2", Time: 20}}
		next := Score(9, legs)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestScore_Formula(t *testing.T) {
	assert.Equal(t, 5000.0, Score(10, []Leg{{Time: 5}, {Time: 5}}))
	assert.Equal(t, 0.0, Score(10, []Leg{{Time: 0}}))
}

func TestNewRanking_UsesClock(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	r := NewRanking("run-1", []string{"D1"}, nil)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, fakeClock.Now(), r.GeneratedAt)
	assert.Equal(t, []string{"D1"}, r.Destinations)
}
