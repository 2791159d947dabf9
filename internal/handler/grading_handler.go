package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examly/examly-backend/internal/middleware"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/response"
	"github.com/examly/examly-backend/internal/service"
	"github.com/examly/examly-backend/internal/validator"
)

// GradingHandler handles teacher review of completed attempts.
type GradingHandler struct {
	gradingService *service.GradingService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(gradingService *service.GradingService) *GradingHandler {
	return &GradingHandler{gradingService: gradingService}
}

func failGradingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, service.ErrAttemptNotCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotCompleted)
	case errors.Is(err, service.ErrAlreadyReviewed):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyReviewed)
	case errors.Is(err, service.ErrIncompleteGrading):
		response.Fail(c, http.StatusBadRequest, response.ErrIncompleteGrading)
	case errors.Is(err, service.ErrGradeOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrGradeOutOfRange)
	case errors.Is(err, service.ErrGradeIndexInvalid):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListReports godoc
// GET /api/v1/teacher/reports?status=pending|reviewed
// Lists completed attempts against the caller's exams.
func (h *GradingHandler) ListReports(c *gin.Context) {
	claims := middleware.GetClaims(c)

	status := service.ReportStatus(c.Query("status"))
	if status != "" && status != service.ReportStatusPending && status != service.ReportStatusReviewed {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	reports, err := h.gradingService.ListReports(c.Request.Context(), claims.Email, status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reports": reports})
}

// GetAttempt godoc
// GET /api/v1/teacher/attempts/:id
// Returns one attempt with responses for review.
func (h *GradingHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.gradingService.GetAttempt(c.Request.Context(), id, claims.Email)
	if err != nil {
		failGradingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Review godoc
// PUT /api/v1/teacher/attempts/:id/review
// Grades a completed attempt. Every response must receive a grade in [0, 10]
// or the review is rejected as a whole.
func (h *GradingHandler) Review(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.gradingService.Review(c.Request.Context(), id, claims.Email, &req)
	if err != nil {
		failGradingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
