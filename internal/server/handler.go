// Package server exposes the scheduling engine's operations over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parlolabs/parlo/internal/enrollment"
	"github.com/parlolabs/parlo/internal/review"
	"github.com/parlolabs/parlo/internal/srs"
	"github.com/parlolabs/parlo/internal/statistics"
)

// Handler wires the engine's services into echo routes.
type Handler struct {
	reviews     *review.Service
	enrollments *enrollment.Service
	stats       *statistics.Aggregator
}

// NewHandler creates a Handler over the given services.
func NewHandler(reviews *review.Service, enrollments *enrollment.Service, stats *statistics.Aggregator) *Handler {
	return &Handler{
		reviews:     reviews,
		enrollments: enrollments,
		stats:       stats,
	}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(e *echo.Echo) {
	g := e.Group("/api/v1/users/:userID")
	g.POST("/enrollments", h.enrollFromQuiz)
	g.POST("/enrollments/single", h.enrollSingle)
	g.GET("/items", h.listAll)
	g.GET("/items/due", h.listDue)
	g.POST("/reviews", h.submitReview)
	g.GET("/stats", h.userStats)
	g.GET("/points", h.totalPoints)
}

type enrollFromQuizRequest struct {
	QuizID   string `json:"quizId"`
	LessonID string `json:"lessonId"`
}

func (h *Handler) enrollFromQuiz(c echo.Context) error {
	var req enrollFromQuizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.QuizID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "quizId is required")
	}

	added, err := h.enrollments.EnrollFromQuiz(c.Request().Context(), c.Param("userID"), req.QuizID, req.LessonID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"added": added})
}

type enrollSingleRequest struct {
	ContentRef srs.ContentRef `json:"contentRef"`
}

func (h *Handler) enrollSingle(c echo.Context) error {
	var req enrollSingleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	added, err := h.enrollments.EnrollSingle(c.Request().Context(), c.Param("userID"), req.ContentRef)
	if err != nil {
		if srs.IsStorageError(err) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"added": added})
}

func (h *Handler) listAll(c echo.Context) error {
	items, err := h.reviews.ListAll(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) listDue(c echo.Context) error {
	var asOf time.Time
	if raw := c.QueryParam("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "as_of must be RFC 3339")
		}
		asOf = parsed
	}

	items, err := h.reviews.ListDue(c.Request().Context(), c.Param("userID"), asOf)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

type submitReviewRequest struct {
	ItemID          string `json:"itemId"`
	QualityResponse int    `json:"qualityResponse"`
	ResponseTimeMs  int64  `json:"responseTimeMs"`
}

func (h *Handler) submitReview(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "itemId is required")
	}

	result, err := h.reviews.SubmitReview(c.Request().Context(), c.Param("userID"), req.ItemID, req.QualityResponse, req.ResponseTimeMs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) userStats(c echo.Context) error {
	stats, err := h.stats.UserStats(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) totalPoints(c echo.Context) error {
	total, err := h.stats.TotalPoints(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"totalPoints": total})
}

// httpError maps engine error kinds onto HTTP statuses: stale or foreign
// items are 404, lost write races are 409 so clients may retry, storage
// failures are 503.
func httpError(err error) error {
	switch {
	case errors.Is(err, srs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "review item not found")
	case errors.Is(err, srs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "review item was modified concurrently")
	case srs.IsStorageError(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		return err
	}
}
