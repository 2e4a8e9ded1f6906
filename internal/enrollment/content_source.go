// Package enrollment creates review items from quiz and lesson content.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	"resty.dev/v3"

	"github.com/parlolabs/parlo/internal/srs"
)

//go:generate mockgen -source=content_source.go -destination=../mocks/enrollment/mock_content_source.go -package=mock_enrollment

// ContentSource resolves a quiz into the content references of its questions.
// The quiz catalog belongs to the surrounding platform; the engine only reads
// it.
type ContentSource interface {
	QuizQuestionRefs(ctx context.Context, quizID string) ([]srs.ContentRef, error)
}

// DBContentSource reads the platform's quiz_questions table directly. Used
// when the engine runs in-process with the content backend, sharing its
// database.
type DBContentSource struct {
	db *sqlx.DB
}

// NewDBContentSource creates a new DBContentSource.
func NewDBContentSource(db *sqlx.DB) *DBContentSource {
	return &DBContentSource{db: db}
}

func (s *DBContentSource) QuizQuestionRefs(ctx context.Context, quizID string) ([]srs.ContentRef, error) {
	var questionIDs []string
	err := s.db.SelectContext(ctx, &questionIDs,
		"SELECT id FROM quiz_questions WHERE quiz_id = ? ORDER BY id", quizID)
	if err != nil {
		return nil, srs.NewStorageError("load quiz questions", err)
	}

	refs := make([]srs.ContentRef, 0, len(questionIDs))
	for _, id := range questionIDs {
		refs = append(refs, srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: id})
	}
	return refs, nil
}

// HTTPContentSource fetches quiz questions from the content backend's
// internal API. Used when the engine is deployed out-of-process.
type HTTPContentSource struct {
	client        *resty.Client
	retryAttempts uint
}

// NewHTTPContentSource creates a client for the content API at baseURL.
func NewHTTPContentSource(baseURL, apiKey string, retryAttempts uint) *HTTPContentSource {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("X-Api-Key", apiKey)

	return &HTTPContentSource{
		client:        client,
		retryAttempts: retryAttempts,
	}
}

// Close releases the underlying HTTP client.
func (s *HTTPContentSource) Close() error {
	return s.client.Close()
}

type quizQuestionsResponse struct {
	Questions []struct {
		ID string `json:"id"`
	} `json:"questions"`
}

var errQuizNotFound = errors.New("quiz not found")

func (s *HTTPContentSource) QuizQuestionRefs(ctx context.Context, quizID string) ([]srs.ContentRef, error) {
	var body quizQuestionsResponse

	err := retry.Do(
		func() error {
			res, err := s.client.R().
				SetContext(ctx).
				SetResult(&body).
				SetPathParam("quizID", quizID).
				Get("/internal/v1/quizzes/{quizID}/questions")
			if err != nil {
				return fmt.Errorf("fetch quiz questions: %w", err)
			}
			if res.StatusCode() == http.StatusNotFound {
				return retry.Unrecoverable(fmt.Errorf("%w: %s", errQuizNotFound, quizID))
			}
			if res.IsError() {
				return fmt.Errorf("fetch quiz questions: status %d", res.StatusCode())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts+1),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	refs := make([]srs.ContentRef, 0, len(body.Questions))
	for _, q := range body.Questions {
		refs = append(refs, srs.ContentRef{Type: srs.ContentRefQuizQuestion, ID: q.ID})
	}
	return refs, nil
}
