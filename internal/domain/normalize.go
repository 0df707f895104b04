package domain

import "strings"

// disambiguationOpeners are the bracket characters that start a suffix such
// as "（東京都）" or "〔千葉〕".
const disambiguationOpeners = "（〔["

// variantSpellings maps known orthographic variants to the canonical spelling.
// Values must never appear as keys, otherwise normalization stops being idempotent.
var variantSpellings = map[string]string{
	"西ヶ原":   "西ケ原",
	"南阿佐ヶ谷": "南阿佐ケ谷",
	"阿佐ヶ谷":  "阿佐ケ谷",
	"鶴ヶ峰":   "鶴ケ峰",
	"三ッ沢上町": "三ツ沢上町",
	"千駄ヶ谷":  "千駄ケ谷",
	"保土ヶ谷":  "保土ケ谷",
	"市ヶ谷":   "市ケ谷",
}

// NormalizeStationName returns the canonical form of a station name. Two raw
// names with the same canonical form refer to the same physical station.
func NormalizeStationName(name string) string {
	if i := strings.IndexAny(name, disambiguationOpeners); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if canonical, ok := variantSpellings[name]; ok {
		return canonical
	}
	return name
}
