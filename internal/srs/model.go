// Package srs holds the spaced-repetition domain model and the pure
// scheduling and scoring algorithms.
package srs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentRefType identifies the kind of learning content an item tracks.
type ContentRefType string

const (
	ContentRefQuizQuestion ContentRefType = "quiz_question"
	ContentRefLesson       ContentRefType = "lesson"
)

// ContentRef is a tagged reference to a single piece of learning content.
// Exactly one kind of target is referenced.
type ContentRef struct {
	Type ContentRefType `db:"content_ref_type" json:"type"`
	ID   string         `db:"content_ref_id" json:"id"`
}

// Validate checks that the reference is well-formed.
func (r ContentRef) Validate() error {
	switch r.Type {
	case ContentRefQuizQuestion, ContentRefLesson:
	default:
		return fmt.Errorf("unknown content ref type %q", r.Type)
	}
	if r.ID == "" {
		return fmt.Errorf("empty content ref id for type %q", r.Type)
	}
	return nil
}

func (r ContentRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// ReviewItem is the scheduling state for one (user, content) pair.
// It is created once by enrollment and rewritten atomically on every review.
type ReviewItem struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	ContentRefType string    `db:"content_ref_type" json:"contentRefType"`
	ContentRefID   string    `db:"content_ref_id" json:"contentRefId"`
	EaseFactor     float64   `db:"ease_factor" json:"easeFactor"`
	IntervalDays   int       `db:"interval_days" json:"intervalDays"`
	Streak         int       `db:"streak" json:"streak"`
	NextReviewAt   time.Time `db:"next_review_at" json:"nextReviewAt"`
	Difficulty     float64   `db:"difficulty" json:"difficulty"`
	Version        int64     `db:"version" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// ContentRef returns the item's tagged content reference.
func (item ReviewItem) ContentRef() ContentRef {
	return ContentRef{Type: ContentRefType(item.ContentRefType), ID: item.ContentRefID}
}

// NewReviewItem creates an item in its initial scheduling state:
// ease factor 2.5, one-day interval, due immediately.
func NewReviewItem(userID string, ref ContentRef, now time.Time) ReviewItem {
	return ReviewItem{
		ID:             uuid.NewString(),
		UserID:         userID,
		ContentRefType: string(ref.Type),
		ContentRefID:   ref.ID,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   1,
		Streak:         0,
		NextReviewAt:   now,
		Difficulty:     1 / DefaultEaseFactor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplySchedule overwrites the item's scheduling state with the result of one
// review. All derived fields move together so the row is never half-updated.
func (item *ReviewItem) ApplySchedule(result ScheduleResult, now time.Time) {
	item.EaseFactor = result.EaseFactor
	item.IntervalDays = result.IntervalDays
	item.Streak = result.Streak
	item.NextReviewAt = result.NextReviewAt
	item.Difficulty = 1 / result.EaseFactor
	item.UpdatedAt = now
}

// ReviewEvent is one append-only record of a review submission. The
// ease factor, interval and streak are the values resulting from the event.
type ReviewEvent struct {
	ID              string    `db:"id" json:"id"`
	ItemID          string    `db:"item_id" json:"itemId"`
	UserID          string    `db:"user_id" json:"userId"`
	QualityResponse int       `db:"quality_response" json:"qualityResponse"`
	ResponseTimeMs  int64     `db:"response_time_ms" json:"responseTimeMs"`
	PointsEarned    int       `db:"points_earned" json:"pointsEarned"`
	EaseFactor      float64   `db:"ease_factor" json:"easeFactor"`
	IntervalDays    int       `db:"interval_days" json:"intervalDays"`
	Streak          int       `db:"streak" json:"streak"`
	OccurredAt      time.Time `db:"occurred_at" json:"occurredAt"`
}

// NewReviewEvent records one processed review against an already-updated item.
func NewReviewEvent(item ReviewItem, quality int, responseTimeMs int64, points int, now time.Time) ReviewEvent {
	return ReviewEvent{
		ID:              uuid.NewString(),
		ItemID:          item.ID,
		UserID:          item.UserID,
		QualityResponse: quality,
		ResponseTimeMs:  responseTimeMs,
		PointsEarned:    points,
		EaseFactor:      item.EaseFactor,
		IntervalDays:    item.IntervalDays,
		Streak:          item.Streak,
		OccurredAt:      now,
	}
}
