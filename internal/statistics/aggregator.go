// Package statistics reduces the review event log into per-user totals.
package statistics

import (
	"context"
	"fmt"
	"math"

	"github.com/parlolabs/parlo/internal/srs"
)

// EventSource lists a user's review events. review.Repository satisfies it.
type EventSource interface {
	ListEvents(ctx context.Context, userID string) ([]srs.ReviewEvent, error)
}

// UserStats holds lifetime review totals for one user.
type UserStats struct {
	TotalReviews int `json:"totalReviews"` // count of review events
	BestStreak   int `json:"bestStreak"`   // highest streak ever reached, not the current one
	AverageScore int `json:"averageScore"` // rounded mean of points per review
}

// Aggregator computes statistics from the event log. All reads, no mutation.
type Aggregator struct {
	events EventSource
}

// NewAggregator creates an Aggregator over the given event source.
func NewAggregator(events EventSource) *Aggregator {
	return &Aggregator{events: events}
}

// UserStats returns the user's lifetime review statistics. A user without
// events gets all zeroes.
func (a *Aggregator) UserStats(ctx context.Context, userID string) (UserStats, error) {
	events, err := a.events.ListEvents(ctx, userID)
	if err != nil {
		return UserStats{}, fmt.Errorf("load review events: %w", err)
	}
	return Reduce(events), nil
}

// TotalPoints returns the user's lifetime points total.
func (a *Aggregator) TotalPoints(ctx context.Context, userID string) (int, error) {
	events, err := a.events.ListEvents(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load review events: %w", err)
	}

	total := 0
	for _, event := range events {
		total += event.PointsEarned
	}
	return total, nil
}

// Reduce folds a list of review events into UserStats. The best streak is
// the maximum streak any event resulted in, so a later failure never erases
// a historical best.
func Reduce(events []srs.ReviewEvent) UserStats {
	stats := UserStats{TotalReviews: len(events)}
	if len(events) == 0 {
		return stats
	}

	totalPoints := 0
	for _, event := range events {
		if event.Streak > stats.BestStreak {
			stats.BestStreak = event.Streak
		}
		totalPoints += event.PointsEarned
	}
	stats.AverageScore = int(math.Round(float64(totalPoints) / float64(len(events))))
	return stats
}
