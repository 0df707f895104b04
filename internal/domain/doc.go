// Package domain models the station scoring pipeline: rent figures per
// station, reachability from each destination station, and the composite
// score that ranks candidate stations.
//
// # Data Sources
//
// Rent figures come from the SUUMO rent market pages ("家賃相場"). Each
// administrative area lists its transit lines, and each line links to a table
// with one row per station. The same station appears once for every line that
// serves it.
//
// Reachability comes from the NAVITIME reachable-transit API: given a routing
// node, it returns every station reachable within a time budget together with
// the travel time in minutes and the number of transfers.
//
// # Station Name Conventions
//
// The two sources spell station names differently. Names are canonicalized by
// [NormalizeStationName]:
//
//	Disambiguation suffixes: "日本橋（東京都）", "中山〔千葉〕", "府中[京王]"
//	  Everything from the first "（", "〔" or "[" onward is dropped.
//	Glyph variants of the possessive marker: "市ヶ谷" vs "市ケ谷"
//	  A fixed table maps known variants to the "ケ"/"ツ" spelling used by
//	  the reachability API. The table is deliberately explicit; a blanket
//	  rewrite would merge stations the sources keep distinct.
//
// # Rent Conventions
//
// Rent is the market figure in units of 10,000 JPY ("万円") for the layout
// class queried. [RentSentinel] (999) marks rows whose figure is missing or
// unreliable (no strong figure rendered, or no listing link). The sentinel is
// carried through unchanged and always fails the rent ceiling; configuration
// rejects ceilings at or above it.
//
// # Score
//
//	score = (Σ time_minutes²) × rent²
//
// Lower is better. Candidates above the rent ceiling, or with any leg above the
// time ceiling, are excluded rather than penalized. See [Rank].
package domain
