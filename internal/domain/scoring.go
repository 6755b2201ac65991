package domain

import "math"

// NearFactor bounds the "near on time" band: an actual duration within
// NearFactor times the expected one still scores 80.
const NearFactor = 1.2

// OnTime reports whether an actual duration met the expected one.
// Unset expectations (zero) never count as on time.
func OnTime(actualSecs, expectedSecs int64) bool {
	return expectedSecs > 0 && actualSecs > 0 && actualSecs <= expectedSecs
}

// BandScore places one delivery into the 100/80/60 punctuality bands.
func BandScore(actualSecs, expectedSecs int64) int {
	switch {
	case actualSecs <= expectedSecs:
		return 100
	case float64(actualSecs) <= float64(expectedSecs)*NearFactor:
		return 80
	default:
		return 60
	}
}

// EfficiencyScore averages the band weights over all deliveries and rounds
// to the nearest integer. Zero total yields zero.
func EfficiencyScore(onTime, near, late int64) int {
	total := onTime + near + late
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(onTime*100+near*80+late*60) / float64(total)))
}

// DurationBin bounds one bin of the fixed delivery duration histogram,
// in seconds: (Lo, Hi], with Hi 0 meaning unbounded.
type DurationBin struct {
	Label string
	Lo    int64
	Hi    int64
}

// DurationBins returns the fixed duration histogram, ten minute steps with
// an open-ended last bin.
func DurationBins() []DurationBin {
	return []DurationBin{
		{"0-10", 0, 600},
		{"10-20", 600, 1200},
		{"20-30", 1200, 1800},
		{"30-40", 1800, 2400},
		{"40-50", 2400, 3000},
		{"50-60", 3000, 3600},
		{"60+", 3600, 0},
	}
}

// SpanDays is the whole-day span between two Unix timestamps. Activity
// confined to a single day spans one day, never zero.
func SpanDays(first, last int64) int64 {
	d := (last - first) / 86400
	if d < 1 {
		return 1
	}
	return d
}

// Minutes converts seconds to minutes rounded to one decimal.
func Minutes(secs float64) float64 {
	return math.Round(secs/60*10) / 10
}

// Round2 rounds to two decimals, used for rates and money.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
