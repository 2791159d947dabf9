package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/repository"
	"github.com/examly/examly-backend/internal/response"
)

// Common question errors.
var (
	ErrQuestionNotFound      = errors.New("question not found")
	ErrMissingQuestionColumn = errors.New("import file is missing the Question column")
	ErrEmptyImport           = errors.New("import file contains no questions")
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// Create inserts a batch of questions under a common field/subject tag.
func (s *QuestionService) Create(ctx context.Context, creatorEmail string, req *model.CreateQuestionsRequest) ([]model.Question, error) {
	records := toRecords(req.Questions, req.Field, req.Subject)
	return s.questionRepo.CreateBatch(ctx, records, creatorEmail, req.IsPublic)
}

func toRecords(inputs []model.QuestionInput, field, subject string) []repository.QuestionRecord {
	var subj *string
	if subject != "" {
		subj = &subject
	}
	records := make([]repository.QuestionRecord, 0, len(inputs))
	for _, in := range inputs {
		rec := repository.QuestionRecord{
			Field:        field,
			Subject:      subj,
			QuestionText: in.QuestionText,
		}
		if in.SampleResponse != "" {
			sr := in.SampleResponse
			rec.SampleResponse = &sr
		}
		records = append(records, rec)
	}
	return records
}

// List pages through questions visible to the caller. Page size defaults to
// 5 to match the bank browsing UI.
func (s *QuestionService) List(ctx context.Context, viewerEmail string, field, subject string, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 5
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.questionRepo.List(ctx, viewerEmail,
		repository.QuestionFilter{Field: field, Subject: subject},
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}

	return questions, buildPagination(page, perPage, total), nil
}

// buildPagination summarizes a filtered listing for the response envelope.
func buildPagination(page, perPage, totalItems int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: (totalItems + perPage - 1) / perPage,
	}
}

// Delete removes a question the caller owns.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error {
	if err := s.questionRepo.Delete(ctx, id, ownerEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// Facets returns the distinct field/subject values visible to the caller.
func (s *QuestionService) Facets(ctx context.Context, viewerEmail string) (*model.QuestionFacets, error) {
	return s.questionRepo.Facets(ctx, viewerEmail)
}

// Import parses a CSV upload and bulk-creates the questions it contains.
// The second return is the number of rows skipped for an empty question cell.
func (s *QuestionService) Import(ctx context.Context, creatorEmail string, r io.Reader, field, subject string, isPublic bool) ([]model.Question, int, error) {
	inputs, skipped, err := ParseQuestionCSV(r)
	if err != nil {
		return nil, 0, err
	}
	questions, err := s.questionRepo.CreateBatch(ctx, toRecords(inputs, field, subject), creatorEmail, isPublic)
	if err != nil {
		return nil, 0, err
	}
	return questions, skipped, nil
}

// ParseQuestionCSV reads a question import file. The header must contain a
// Question column; an Answer column, when present, becomes the sample
// response. Rows with an empty question cell are skipped and counted.
func ParseQuestionCSV(r io.Reader) ([]model.QuestionInput, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	questionCol, answerCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		}
	}
	if questionCol == -1 {
		return nil, 0, ErrMissingQuestionColumn
	}

	var inputs []model.QuestionInput
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		if questionCol >= len(record) || strings.TrimSpace(record[questionCol]) == "" {
			skipped++
			continue
		}
		text := strings.TrimSpace(record[questionCol])

		in := model.QuestionInput{QuestionText: text}
		if answerCol != -1 && answerCol < len(record) {
			in.SampleResponse = strings.TrimSpace(record[answerCol])
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return nil, 0, ErrEmptyImport
	}
	return inputs, skipped, nil
}
