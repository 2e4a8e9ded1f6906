package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/parlolabs/parlo/internal/srs"
	"github.com/parlolabs/parlo/internal/statistics"
)

func TestRenderDueList(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty queue", func(t *testing.T) {
		var buf bytes.Buffer
		RenderDueList(&buf, nil, now)
		assert.Contains(t, buf.String(), "Nothing due")
	})

	t.Run("lists each due item with its lag", func(t *testing.T) {
		fresh := srs.NewReviewItem("user-1", srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: "q-1"}, now)
		stale := srs.NewReviewItem("user-1", srs.ContentRef{Type: srs.ContentRefLesson, ID: "lesson-2"}, now.AddDate(0, 0, -9))

		var buf bytes.Buffer
		RenderDueList(&buf, []srs.ReviewItem{fresh, stale}, now)

		out := buf.String()
		assert.Contains(t, out, fresh.ID)
		assert.Contains(t, out, "quiz_question:q-1")
		assert.Contains(t, out, "lesson:lesson-2")
		assert.Contains(t, out, "9d")
		assert.Contains(t, out, "2 item(s) due")
	})
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	RenderStats(&buf, statistics.UserStats{TotalReviews: 42, BestStreak: 7, AverageScore: 9}, 391)

	out := buf.String()
	assert.Contains(t, out, "Total reviews: 42")
	assert.Contains(t, out, "Best streak:   7")
	assert.Contains(t, out, "Average score: 9")
	assert.Contains(t, out, "Total points:  391")
}
