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

// StudentPortalHandler handles the student side: listing assigned exams,
// taking attempts and reading graded results.
type StudentPortalHandler struct {
	attemptService *service.AttemptService
	gradingService *service.GradingService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(attemptService *service.AttemptService, gradingService *service.GradingService) *StudentPortalHandler {
	return &StudentPortalHandler{
		attemptService: attemptService,
		gradingService: gradingService,
	}
}

func failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotAssigned):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotAssigned)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrAttemptNotFound), errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
	case errors.Is(err, service.ErrQuestionNotInExam):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotInExam)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListExams godoc
// GET /api/v1/student/exams
// Lists the exams assigned to the caller with their attempt status.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.attemptService.ListAssigned(c.Request.Context(), claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// StartAttempt godoc
// POST /api/v1/student/exams/:exam_id/start
// Opens (or resumes) the caller's attempt on an exam.
func (h *StudentPortalHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.Start(c.Request.Context(), examID, claims.Email, claims.Name)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}

// GetAttempt godoc
// GET /api/v1/student/attempts/:exam_id
// Returns the resumable state of the caller's attempt.
func (h *StudentPortalHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.GetState(c.Request.Context(), examID, claims.Email)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}

// SubmitResponse godoc
// POST /api/v1/student/attempts/:exam_id/responses
// Records the answer for one question of the open attempt.
func (h *StudentPortalHandler) SubmitResponse(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.attemptService.SubmitResponse(c.Request.Context(), examID, claims.Email, &req)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}

// RecordWarning godoc
// POST /api/v1/student/attempts/:exam_id/warnings
// Increments the proctoring counter when the client detects a blur or paste.
func (h *StudentPortalHandler) RecordWarning(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"omitempty,max=200"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.Reason == "" {
		req.Reason = "window_blur"
	}

	warnings, err := h.attemptService.RecordWarning(c.Request.Context(), examID, claims.Email, req.Reason)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"warnings": warnings})
}

// FinishAttempt godoc
// POST /api/v1/student/attempts/:exam_id/finish
// Closes the attempt. Finishing twice returns the frozen attempt unchanged.
func (h *StudentPortalHandler) FinishAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Finish(c.Request.Context(), examID, claims.Email)
	if err != nil {
		failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// ListReports godoc
// GET /api/v1/student/reports?status=pending|reviewed
// Lists the caller's completed attempts; reviewed entries carry grades and
// feedback.
func (h *StudentPortalHandler) ListReports(c *gin.Context) {
	claims := middleware.GetClaims(c)

	status := service.ReportStatus(c.Query("status"))
	if status != "" && status != service.ReportStatusPending && status != service.ReportStatusReviewed {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	reports, err := h.gradingService.ListStudentReports(c.Request.Context(), claims.Email, status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reports": reports})
}
