package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/repository"
)

// Common exam errors.
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrUnknownQuestion = errors.New("exam references a question that does not exist")
	ErrEmptyAssignment = errors.New("assignment must name a class or at least one student")
)

// ExamService handles exam definition business logic.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	classRepo    *repository.ClassRepository
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	classRepo *repository.ClassRepository,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		classRepo:    classRepo,
	}
}

// Create authors a new exam after verifying every referenced question exists.
func (s *ExamService) Create(ctx context.Context, creatorEmail string, req *model.CreateExamRequest) (*model.Exam, error) {
	questions, err := s.questionRepo.GetByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve questions: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		found[q.ID] = true
	}
	for _, id := range req.QuestionIDs {
		if !found[id] {
			return nil, ErrUnknownQuestion
		}
	}

	exam, err := s.examRepo.Create(ctx, req.Title, req.Description, req.QuestionIDs, creatorEmail)
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

// List returns exams authored by the caller.
func (s *ExamService) List(ctx context.Context, creatorEmail string) ([]model.Exam, error) {
	return s.examRepo.ListByCreator(ctx, creatorEmail)
}

// getOwned loads an exam and verifies ownership.
func (s *ExamService) getOwned(ctx context.Context, id uuid.UUID, creatorEmail string) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.CreatedBy != creatorEmail {
		return nil, ErrNotOwner
	}
	return exam, nil
}

// Get returns an exam the caller owns.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID, creatorEmail string) (*model.Exam, error) {
	return s.getOwned(ctx, id, creatorEmail)
}

// Assign points an exam at a class, a list of student emails, or the public.
// At least one target is required. Assigning replaces the previous targets.
func (s *ExamService) Assign(ctx context.Context, id uuid.UUID, creatorEmail string, req *model.AssignExamRequest, isPublic bool) (*model.Exam, error) {
	if _, err := s.getOwned(ctx, id, creatorEmail); err != nil {
		return nil, err
	}
	if req.ClassID == nil && len(req.AssignedTo) == 0 && !isPublic {
		return nil, ErrEmptyAssignment
	}

	if req.ClassID != nil {
		class, err := s.classRepo.GetByID(ctx, *req.ClassID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrClassNotFound
			}
			return nil, fmt.Errorf("get class: %w", err)
		}
		if class.ProfessorEmail != creatorEmail {
			return nil, ErrNotOwner
		}
	}

	exam, err := s.examRepo.UpdateAssignment(ctx, id, req.ClassID, req.AssignedTo, isPublic)
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return exam, nil
}

// Delete removes an exam the caller owns, along with its attempts.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID, creatorEmail string) error {
	if err := s.examRepo.Delete(ctx, id, creatorEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExamNotFound
		}
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}
