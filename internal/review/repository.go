// Package review provides storage and orchestration for review items and
// their append-only event log.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/parlolabs/parlo/internal/database"
	"github.com/parlolabs/parlo/internal/srs"
)

//go:generate mockgen -source=repository.go -destination=../mocks/review/mock_repository.go -package=mock_review

// Repository defines storage operations for review items and events.
type Repository interface {
	// GetItem returns the item scoped to its owner. A missing or
	// foreign-user item yields srs.ErrNotFound.
	GetItem(ctx context.Context, userID, itemID string) (srs.ReviewItem, error)
	// ListDue returns the user's items with next_review_at <= asOf, oldest
	// overdue first with item id as a stable tie-break.
	ListDue(ctx context.Context, userID string, asOf time.Time) ([]srs.ReviewItem, error)
	// ListAll returns every item the user is enrolled in.
	ListAll(ctx context.Context, userID string) ([]srs.ReviewItem, error)
	// FindRefs returns the subset of refs the user already has items for.
	FindRefs(ctx context.Context, userID string, refs []srs.ContentRef) ([]srs.ContentRef, error)
	// CreateItems inserts items, silently skipping ones whose
	// (user, content ref) already exists, and returns how many were added.
	CreateItems(ctx context.Context, items []srs.ReviewItem) (int, error)
	// ApplyReview writes the updated item state and appends its event in
	// one transaction. A version mismatch yields srs.ErrConflict.
	ApplyReview(ctx context.Context, item srs.ReviewItem, event srs.ReviewEvent) error
	// ListEvents returns the user's events in occurrence order.
	ListEvents(ctx context.Context, userID string) ([]srs.ReviewEvent, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (r *DBRepository) GetItem(ctx context.Context, userID, itemID string) (srs.ReviewItem, error) {
	var item srs.ReviewItem
	err := r.db.GetContext(ctx, &item,
		"SELECT * FROM review_items WHERE id = ? AND user_id = ?", itemID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return srs.ReviewItem{}, srs.ErrNotFound
	}
	if err != nil {
		return srs.ReviewItem{}, srs.NewStorageError("get review item", err)
	}
	return item, nil
}

func (r *DBRepository) ListDue(ctx context.Context, userID string, asOf time.Time) ([]srs.ReviewItem, error) {
	items := []srs.ReviewItem{}
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM review_items WHERE user_id = ? AND next_review_at <= ? ORDER BY next_review_at ASC, id ASC",
		userID, asOf)
	if err != nil {
		return nil, srs.NewStorageError("list due review items", err)
	}
	return items, nil
}

func (r *DBRepository) ListAll(ctx context.Context, userID string) ([]srs.ReviewItem, error) {
	items := []srs.ReviewItem{}
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM review_items WHERE user_id = ? ORDER BY next_review_at ASC, id ASC", userID)
	if err != nil {
		return nil, srs.NewStorageError("list review items", err)
	}
	return items, nil
}

func (r *DBRepository) FindRefs(ctx context.Context, userID string, refs []srs.ContentRef) ([]srs.ContentRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	groups := make([]string, len(refs))
	args := make([]interface{}, 0, 1+2*len(refs))
	args = append(args, userID)
	for i, ref := range refs {
		groups[i] = "(?, ?)"
		args = append(args, ref.Type, ref.ID)
	}
	query := fmt.Sprintf(
		"SELECT content_ref_type, content_ref_id FROM review_items WHERE user_id = ? AND (content_ref_type, content_ref_id) IN (%s)",
		strings.Join(groups, ", "),
	)

	existing := []srs.ContentRef{}
	if err := r.db.SelectContext(ctx, &existing, query, args...); err != nil {
		return nil, srs.NewStorageError("find enrolled refs", err)
	}
	return existing, nil
}

var itemColumns = []string{
	"id", "user_id", "content_ref_type", "content_ref_id",
	"ease_factor", "interval_days", "streak", "next_review_at",
	"difficulty", "version", "created_at", "updated_at",
}

func (r *DBRepository) CreateItems(ctx context.Context, items []srs.ReviewItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	// INSERT IGNORE against the (user_id, content_ref_type, content_ref_id)
	// unique key is the actual duplicate-enrollment guarantee; any pre-check
	// by the caller is only an optimization.
	query := database.BuildMultiRowInsertIgnore("review_items", itemColumns, len(items))
	var args []interface{}
	for _, item := range items {
		args = append(args,
			item.ID, item.UserID, item.ContentRefType, item.ContentRefID,
			item.EaseFactor, item.IntervalDays, item.Streak, item.NextReviewAt,
			item.Difficulty, item.Version, item.CreatedAt, item.UpdatedAt,
		)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, srs.NewStorageError("create review items", err)
	}
	added, err := result.RowsAffected()
	if err != nil {
		return 0, srs.NewStorageError("create review items", err)
	}
	return int(added), nil
}

func (r *DBRepository) ApplyReview(ctx context.Context, item srs.ReviewItem, event srs.ReviewEvent) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE review_items
			SET ease_factor = ?, interval_days = ?, streak = ?, next_review_at = ?,
			    difficulty = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND user_id = ? AND version = ?`,
			item.EaseFactor, item.IntervalDays, item.Streak, item.NextReviewAt,
			item.Difficulty, item.UpdatedAt,
			item.ID, item.UserID, item.Version,
		)
		if err != nil {
			return srs.NewStorageError("update review item", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return srs.NewStorageError("update review item", err)
		}
		if affected == 0 {
			// The item existed when it was read, so losing the
			// compare-and-swap means a concurrent review won.
			return srs.ErrConflict
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO review_events
				(id, item_id, user_id, quality_response, response_time_ms,
				 points_earned, ease_factor, interval_days, streak, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID, event.ItemID, event.UserID, event.QualityResponse, event.ResponseTimeMs,
			event.PointsEarned, event.EaseFactor, event.IntervalDays, event.Streak, event.OccurredAt,
		)
		if err != nil {
			return srs.NewStorageError("insert review event", err)
		}
		return nil
	})
}

func (r *DBRepository) ListEvents(ctx context.Context, userID string) ([]srs.ReviewEvent, error) {
	events := []srs.ReviewEvent{}
	err := r.db.SelectContext(ctx, &events,
		"SELECT * FROM review_events WHERE user_id = ? ORDER BY occurred_at ASC, id ASC", userID)
	if err != nil {
		return nil, srs.NewStorageError("list review events", err)
	}
	return events, nil
}
