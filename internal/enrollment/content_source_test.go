package enrollment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlolabs/parlo/internal/srs"
)

func TestDBContentSource_QuizQuestionRefs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM quiz_questions WHERE quiz_id = ? ORDER BY id")).
		WithArgs("quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q-1").AddRow("q-2"))

	source := NewDBContentSource(sqlx.NewDb(db, "mysql"))
	refs, err := source.QuizQuestionRefs(context.Background(), "quiz-1")

	require.NoError(t, err)
	assert.Equal(t, []srs.ContentRef{
		{Type: srs.ContentRefQuizQuestion, ID: "q-1"},
		{Type: srs.ContentRefQuizQuestion, ID: "q-2"},
	}, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHTTPContentSource_QuizQuestionRefs(t *testing.T) {
	t.Run("fetches and decodes question refs", func(t *testing.T) {
		var gotPath, gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("X-Api-Key")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"questions": [{"id": "q-1"}, {"id": "q-2"}]}`))
		}))
		t.Cleanup(server.Close)

		source := NewHTTPContentSource(server.URL, "test-key", 0)
		t.Cleanup(func() { _ = source.Close() })

		refs, err := source.QuizQuestionRefs(context.Background(), "quiz-1")

		require.NoError(t, err)
		assert.Equal(t, "/internal/v1/quizzes/quiz-1/questions", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Len(t, refs, 2)
		assert.Equal(t, srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: "q-1"}, refs[0])
	})

	t.Run("retries transient server errors", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"questions": [{"id": "q-1"}]}`))
		}))
		t.Cleanup(server.Close)

		source := NewHTTPContentSource(server.URL, "test-key", 2)
		t.Cleanup(func() { _ = source.Close() })

		refs, err := source.QuizQuestionRefs(context.Background(), "quiz-1")

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, refs, 1)
	})

	t.Run("does not retry a missing quiz", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		source := NewHTTPContentSource(server.URL, "test-key", 3)
		t.Cleanup(func() { _ = source.Close() })

		_, err := source.QuizQuestionRefs(context.Background(), "quiz-gone")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Contains(t, err.Error(), "quiz not found")
	})
}
