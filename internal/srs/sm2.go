package srs

import (
	"math"
	"time"
)

const (
	// DefaultEaseFactor is the ease factor assigned to newly enrolled items.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the ease factor never drops.
	// Anything lower makes intervals spiral down and items unlearnable.
	MinEaseFactor = 1.3

	// MinQuality and MaxQuality bound the self-rated recall quality scale.
	MinQuality = 0
	MaxQuality = 5

	// successThreshold separates remembered (streak grows) from forgotten
	// (streak and interval reset).
	successThreshold = 3
)

// ScheduleResult is the new scheduling state produced by one review.
type ScheduleResult struct {
	EaseFactor   float64
	IntervalDays int
	Streak       int
	NextReviewAt time.Time
}

// ClampQuality forces a quality response into [MinQuality, MaxQuality].
// Out-of-range values from upstream are tolerated rather than rejected.
func ClampQuality(quality int) int {
	if quality < MinQuality {
		return MinQuality
	}
	if quality > MaxQuality {
		return MaxQuality
	}
	return quality
}

// UpdateEaseFactor applies the SM-2 ease-factor delta for a quality grade
// and clamps the result at MinEaseFactor.
func UpdateEaseFactor(easeFactor float64, quality int) float64 {
	if easeFactor == 0 {
		easeFactor = DefaultEaseFactor
	}
	q := float64(ClampQuality(quality))
	newEF := easeFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	return math.Max(newEF, MinEaseFactor)
}

// Schedule maps the previous scheduling state and one quality response to the
// next state. Pure and deterministic: no I/O, no randomness, the clock is an
// explicit argument.
//
// Success (quality >= 3) grows the streak, with intervals 1 day, 6 days, then
// round(previous interval * new ease factor). Failure resets the streak and
// re-queues the item for the next day; the ease factor still takes the SM-2
// penalty so the item keeps getting flagged as hard, but never drops below
// the floor.
func Schedule(prevEaseFactor float64, prevIntervalDays, prevStreak, quality int, now time.Time) ScheduleResult {
	quality = ClampQuality(quality)
	newEF := UpdateEaseFactor(prevEaseFactor, quality)

	var streak, intervalDays int
	if quality >= successThreshold {
		streak = prevStreak + 1
		switch streak {
		case 1:
			intervalDays = 1
		case 2:
			intervalDays = 6
		default:
			if prevIntervalDays < 1 {
				prevIntervalDays = 1
			}
			intervalDays = int(math.Round(float64(prevIntervalDays) * newEF))
		}
	} else {
		streak = 0
		intervalDays = 1
	}

	if intervalDays < 1 {
		intervalDays = 1
	}

	return ScheduleResult{
		EaseFactor:   newEF,
		IntervalDays: intervalDays,
		Streak:       streak,
		NextReviewAt: now.AddDate(0, 0, intervalDays),
	}
}
