package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/parlolabs/parlo/internal/srs"
)

// SubmitResult reports the outcome of one processed review.
type SubmitResult struct {
	PointsEarned int            `json:"pointsEarned"`
	NextReviewAt time.Time      `json:"nextReviewAt"`
	Item         srs.ReviewItem `json:"item"`
}

// Service orchestrates the review write path and the due-queue reads.
type Service struct {
	repo          Repository
	submitRetries uint
	now           func() time.Time
}

// NewService creates a Service. submitRetries is how many extra
// read-compute-write rounds a submission gets after losing a concurrent
// write race.
func NewService(repo Repository, submitRetries uint) *Service {
	return &Service{
		repo:          repo,
		submitRetries: submitRetries,
		now:           time.Now,
	}
}

// SubmitReview processes one review of the user's item: it reads the current
// scheduling state, runs the scheduler and the points engine, and writes the
// new item state together with the event record in one transaction.
//
// A lost compare-and-swap is recomputed against the fresh state up to the
// configured number of retries, so two near-simultaneous submissions
// serialize instead of one clobbering the other.
func (s *Service) SubmitReview(ctx context.Context, userID, itemID string, quality int, responseTimeMs int64) (SubmitResult, error) {
	// Out-of-range input from upstream is tolerated, not rejected.
	quality = srs.ClampQuality(quality)
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}

	var result SubmitResult
	err := retry.Do(
		func() error {
			item, err := s.repo.GetItem(ctx, userID, itemID)
			if err != nil {
				return err
			}

			now := s.now()
			schedule := srs.Schedule(item.EaseFactor, item.IntervalDays, item.Streak, quality, now)
			points := srs.Points(quality, responseTimeMs)

			item.ApplySchedule(schedule, now)
			event := srs.NewReviewEvent(item, quality, responseTimeMs, points, now)

			if err := s.repo.ApplyReview(ctx, item, event); err != nil {
				if errors.Is(err, srs.ErrConflict) {
					slog.Debug("review submission lost a write race, recomputing",
						slog.String("item_id", itemID))
				}
				// Only conflicts are retried; see RetryIf below.
				return err
			}

			item.Version++
			result = SubmitResult{
				PointsEarned: points,
				NextReviewAt: schedule.NextReviewAt,
				Item:         item,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.submitRetries+1),
		retry.RetryIf(func(err error) bool { return errors.Is(err, srs.ErrConflict) }),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit review for item %s: %w", itemID, err)
	}
	return result, nil
}

// ListDue returns the user's due items, oldest overdue first. A zero asOf
// means now. An empty queue is a normal outcome, not an error.
func (s *Service) ListDue(ctx context.Context, userID string, asOf time.Time) ([]srs.ReviewItem, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	items, err := s.repo.ListDue(ctx, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due items: %w", err)
	}
	return items, nil
}

// ListAll returns every item the user is enrolled in.
func (s *Service) ListAll(ctx context.Context, userID string) ([]srs.ReviewItem, error) {
	items, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list all items: %w", err)
	}
	return items, nil
}
