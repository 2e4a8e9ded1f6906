package srs

import "math"

const (
	// pointsPerQuality is the gap between adjacent quality tiers.
	pointsPerQuality = 2

	// speedBonusMax is capped below pointsPerQuality so a fast answer can
	// never outscore a slower answer of the next quality tier up.
	speedBonusMax = 1.0

	// speedBonusFullMs is the latency under which the full bonus applies;
	// speedBonusZeroMs is where the bonus has decayed to nothing.
	speedBonusFullMs = 3000
	speedBonusZeroMs = 10000
)

// Points converts one review's quality response and latency into the points
// awarded for it. Base points scale linearly with quality (0 scores nothing,
// 5 scores the maximum). A speed bonus rewards fast recall on successful
// reviews only, so hammering wrong answers quickly earns nothing extra.
// The result is rounded to the nearest integer and is never negative.
func Points(quality int, responseTimeMs int64) int {
	quality = ClampQuality(quality)

	base := float64(quality * pointsPerQuality)

	var bonus float64
	if quality >= successThreshold {
		bonus = speedBonus(responseTimeMs)
	}

	return int(math.Round(base + bonus))
}

// speedBonus is speedBonusMax under speedBonusFullMs, decaying linearly to
// zero at speedBonusZeroMs.
func speedBonus(responseTimeMs int64) float64 {
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	if responseTimeMs <= speedBonusFullMs {
		return speedBonusMax
	}
	if responseTimeMs >= speedBonusZeroMs {
		return 0
	}
	remaining := float64(speedBonusZeroMs-responseTimeMs) / float64(speedBonusZeroMs-speedBonusFullMs)
	return speedBonusMax * remaining
}
