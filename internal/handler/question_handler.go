package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/middleware"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/response"
	"github.com/examly/examly-backend/internal/service"
	"github.com/examly/examly-backend/internal/validator"
)

// QuestionHandler handles teacher question bank endpoints.
type QuestionHandler struct {
	cfg             *config.Config
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(cfg *config.Config, questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{cfg: cfg, questionService: questionService}
}

// Create godoc
// POST /api/v1/teacher/questions
// Creates one or more questions under a common field/subject tag.
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.Create(c.Request.Context(), claims.Email, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"questions": questions})
}

// List godoc
// GET /api/v1/teacher/questions?field=&subject=&page=&per_page=
// Pages through questions visible to the caller (own plus public).
func (h *QuestionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "5"))

	questions, pagination, err := h.questionService.List(c.Request.Context(),
		claims.Email, c.Query("field"), c.Query("subject"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// Delete godoc
// DELETE /api/v1/teacher/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, claims.Email); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Facets godoc
// GET /api/v1/teacher/questions/facets
// Returns the distinct field and subject values for filter dropdowns.
func (h *QuestionHandler) Facets(c *gin.Context) {
	claims := middleware.GetClaims(c)

	facets, err := h.questionService.Facets(c.Request.Context(), claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"facets": facets})
}

// Import godoc
// POST /api/v1/teacher/questions/import
// Bulk-creates questions from a CSV upload. The multipart form carries the
// file plus field, subject and is_public values.
func (h *QuestionHandler) Import(c *gin.Context) {
	claims := middleware.GetClaims(c)

	field := c.PostForm("field")
	if field == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"field": "field is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if fileHeader.Size > h.cfg.MaxImportBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnparsableUpload)
		return
	}
	defer file.Close()

	isPublic, _ := strconv.ParseBool(c.DefaultPostForm("is_public", "false"))

	questions, skipped, err := h.questionService.Import(c.Request.Context(), claims.Email,
		file, field, c.PostForm("subject"), isPublic)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingQuestionColumn):
			response.Fail(c, http.StatusBadRequest, response.ErrMissingColumn)
		case errors.Is(err, service.ErrEmptyImport):
			response.Fail(c, http.StatusBadRequest, response.ErrUnparsableUpload)
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrUnparsableUpload)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"imported":  len(questions),
		"skipped":   skipped,
		"questions": questions,
	})
}
