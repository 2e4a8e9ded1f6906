package enrollment_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/parlolabs/parlo/internal/enrollment"
	mock_enrollment "github.com/parlolabs/parlo/internal/mocks/enrollment"
	mock_review "github.com/parlolabs/parlo/internal/mocks/review"
	"github.com/parlolabs/parlo/internal/srs"
)

func quizRefs(ids ...string) []srs.ContentRef {
	refs := make([]srs.ContentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: id})
	}
	return refs
}

func TestService_EnrollFromQuiz(t *testing.T) {
	t.Run("enrolls every question of a new quiz", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").Return(quizRefs("q-1", "q-2", "q-3"), nil)
		repo.EXPECT().FindRefs(gomock.Any(), "user-1", quizRefs("q-1", "q-2", "q-3")).Return(nil, nil)
		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []srs.ReviewItem) (int, error) {
				require.Len(t, items, 3)
				for i, item := range items {
					assert.Equal(t, "user-1", item.UserID)
					assert.Equal(t, fmt.Sprintf("q-%d", i+1), item.ContentRefID)
					assert.Equal(t, srs.DefaultEaseFactor, item.EaseFactor)
					assert.Equal(t, 1, item.IntervalDays)
					assert.Equal(t, 0, item.Streak)
				}
				return 3, nil
			})

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "")

		require.NoError(t, err)
		assert.Equal(t, 3, added)
	})

	t.Run("re-enrolling adds nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").Return(quizRefs("q-1", "q-2"), nil)
		repo.EXPECT().FindRefs(gomock.Any(), "user-1", quizRefs("q-1", "q-2")).
			Return(quizRefs("q-1", "q-2"), nil)
		// No CreateItems call: the whole set is already enrolled.

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "")

		require.NoError(t, err)
		assert.Equal(t, 0, added)
	})

	t.Run("enrolls only the missing questions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").Return(quizRefs("q-1", "q-2", "q-3"), nil)
		repo.EXPECT().FindRefs(gomock.Any(), "user-1", gomock.Any()).Return(quizRefs("q-2"), nil)
		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []srs.ReviewItem) (int, error) {
				require.Len(t, items, 2)
				assert.Equal(t, "q-1", items[0].ContentRefID)
				assert.Equal(t, "q-3", items[1].ContentRefID)
				return 2, nil
			})

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "")

		require.NoError(t, err)
		assert.Equal(t, 2, added)
	})

	t.Run("includes the lesson when given", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").Return(quizRefs("q-1"), nil)
		wantRefs := append(quizRefs("q-1"), srs.ContentRef{Type: srs.ContentRefLesson, ID: "lesson-9"})
		repo.EXPECT().FindRefs(gomock.Any(), "user-1", wantRefs).Return(nil, nil)
		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []srs.ReviewItem) (int, error) {
				require.Len(t, items, 2)
				assert.Equal(t, string(srs.ContentRefLesson), items[1].ContentRefType)
				assert.Equal(t, "lesson-9", items[1].ContentRefID)
				return 2, nil
			})

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "lesson-9")

		require.NoError(t, err)
		assert.Equal(t, 2, added)
	})

	t.Run("empty quiz is a valid steady state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-empty").Return(nil, nil)

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-empty", "")

		require.NoError(t, err)
		assert.Equal(t, 0, added)
	})

	t.Run("storage still deduplicates when the pre-check raced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").Return(quizRefs("q-1", "q-2"), nil)
		// A concurrent enrollment inserted both between our check and insert.
		repo.EXPECT().FindRefs(gomock.Any(), "user-1", gomock.Any()).Return(nil, nil)
		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).Return(0, nil)

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "")

		require.NoError(t, err)
		assert.Equal(t, 0, added)
	})

	t.Run("content source failure is surfaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		source.EXPECT().QuizQuestionRefs(gomock.Any(), "quiz-1").
			Return(nil, fmt.Errorf("content api unavailable"))

		svc := enrollment.NewService(repo, source)
		_, err := svc.EnrollFromQuiz(context.Background(), "user-1", "quiz-1", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "quiz-1")
	})
}

func TestService_EnrollSingle(t *testing.T) {
	t.Run("adds a new item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		ref := srs.ContentRef{Type: srs.ContentRefLesson, ID: "lesson-1"}
		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []srs.ReviewItem) (int, error) {
				require.Len(t, items, 1)
				assert.Equal(t, ref, items[0].ContentRef())
				return 1, nil
			})

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollSingle(context.Background(), "user-1", ref)

		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("existing item reports not added", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		repo.EXPECT().CreateItems(gomock.Any(), gomock.Any()).Return(0, nil)

		svc := enrollment.NewService(repo, source)
		added, err := svc.EnrollSingle(context.Background(), "user-1",
			srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: "q-1"})

		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("invalid ref is rejected before touching storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_review.NewMockRepository(ctrl)
		source := mock_enrollment.NewMockContentSource(ctrl)

		svc := enrollment.NewService(repo, source)
		_, err := svc.EnrollSingle(context.Background(), "user-1", srs.ContentRef{Type: "poster", ID: "p-1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid content ref")
	})
}
