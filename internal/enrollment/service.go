package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parlolabs/parlo/internal/review"
	"github.com/parlolabs/parlo/internal/srs"
)

// Service enrolls users into review items. Enrollment is idempotent: the
// storage-level uniqueness constraint on (user, content ref) guarantees that
// re-enrolling adds nothing, whatever races with it.
type Service struct {
	repo   review.Repository
	source ContentSource
	now    func() time.Time
}

// NewService creates an enrollment Service.
func NewService(repo review.Repository, source ContentSource) *Service {
	return &Service{
		repo:   repo,
		source: source,
		now:    time.Now,
	}
}

// EnrollFromQuiz creates review items for every question of the quiz the
// user is not yet enrolled in, plus the quiz's lesson when lessonID is
// non-empty. It returns how many items were actually added; repeated calls
// return zero once everything is enrolled. A quiz without questions is a
// valid steady state, not an error.
func (s *Service) EnrollFromQuiz(ctx context.Context, userID, quizID, lessonID string) (int, error) {
	refs, err := s.source.QuizQuestionRefs(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("resolve quiz %s content: %w", quizID, err)
	}
	if lessonID != "" {
		refs = append(refs, srs.ContentRef{Type: srs.ContentRefLesson, ID: lessonID})
	}
	if len(refs) == 0 {
		return 0, nil
	}

	// Pre-computing the difference keeps the insert small; correctness does
	// not depend on it.
	existing, err := s.repo.FindRefs(ctx, userID, refs)
	if err != nil {
		return 0, fmt.Errorf("find enrolled refs: %w", err)
	}
	enrolled := make(map[srs.ContentRef]bool, len(existing))
	for _, ref := range existing {
		enrolled[ref] = true
	}

	now := s.now()
	var items []srs.ReviewItem
	for _, ref := range refs {
		if enrolled[ref] {
			continue
		}
		items = append(items, srs.NewReviewItem(userID, ref, now))
	}
	if len(items) == 0 {
		return 0, nil
	}

	added, err := s.repo.CreateItems(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("create review items: %w", err)
	}
	slog.Info("enrolled quiz content",
		slog.String("user_id", userID),
		slog.String("quiz_id", quizID),
		slog.Int("added", added))
	return added, nil
}

// EnrollSingle creates one review item for the given content reference.
// It reports whether the item was newly added.
func (s *Service) EnrollSingle(ctx context.Context, userID string, ref srs.ContentRef) (bool, error) {
	if err := ref.Validate(); err != nil {
		return false, fmt.Errorf("invalid content ref: %w", err)
	}

	added, err := s.repo.CreateItems(ctx, []srs.ReviewItem{srs.NewReviewItem(userID, ref, s.now())})
	if err != nil {
		return false, fmt.Errorf("create review item: %w", err)
	}
	return added > 0, nil
}
