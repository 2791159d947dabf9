package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/repository"
)

// Common grading errors.
var (
	ErrAttemptNotCompleted = errors.New("attempt is not completed yet")
	ErrAlreadyReviewed     = errors.New("attempt has already been reviewed")
	ErrIncompleteGrading   = errors.New("every response must receive a grade")
	ErrGradeOutOfRange     = errors.New("grades must be between 0 and 10")
	ErrGradeIndexInvalid   = errors.New("grade entry does not match a response")
)

// ReportStatus filters the teacher's report list.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusReviewed ReportStatus = "reviewed"
)

// GradingService handles teacher review of completed attempts and the
// report listings on both sides.
type GradingService struct {
	attemptRepo *repository.AttemptRepository
}

// NewGradingService creates a new GradingService.
func NewGradingService(attemptRepo *repository.AttemptRepository) *GradingService {
	return &GradingService{attemptRepo: attemptRepo}
}

// ListReports returns completed attempts against the caller's exams. status
// narrows the list to pending or reviewed; empty means both.
func (s *GradingService) ListReports(ctx context.Context, professorEmail string, status ReportStatus) ([]model.Attempt, error) {
	var reviewed *bool
	switch status {
	case ReportStatusPending:
		f := false
		reviewed = &f
	case ReportStatusReviewed:
		t := true
		reviewed = &t
	}
	return s.attemptRepo.ListByProfessor(ctx, professorEmail, reviewed)
}

// GetAttempt returns one attempt for review, verifying the caller owns the
// exam it belongs to.
func (s *GradingService) GetAttempt(ctx context.Context, id uuid.UUID, professorEmail string) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.ProfessorEmail != professorEmail {
		return nil, ErrNotOwner
	}
	return attempt, nil
}

// Review grades a completed attempt. Grading fails closed: every response
// must carry a grade in [0, 10] or nothing is written. The overall mark is
// the mean of the response grades rounded to one decimal.
func (s *GradingService) Review(ctx context.Context, id uuid.UUID, professorEmail string, req *model.ReviewRequest) (*model.Attempt, error) {
	attempt, err := s.GetAttempt(ctx, id, professorEmail)
	if err != nil {
		return nil, err
	}
	if !attempt.Completed {
		return nil, ErrAttemptNotCompleted
	}
	if attempt.IsReviewed {
		return nil, ErrAlreadyReviewed
	}

	grades, total, err := ComputeTotalGrade(req.Grades, len(attempt.Responses))
	if err != nil {
		return nil, err
	}

	reviewed, err := s.attemptRepo.Review(ctx, id, GradesByQuestion(attempt.Responses, grades), total, professorEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("store review: %w", err)
	}
	return reviewed, nil
}

// ComputeTotalGrade validates a full set of grade entries against the number
// of responses and returns the per-index grades plus the overall mark, the
// mean rounded to one decimal. Every index in [0, responseCount) must appear
// exactly once with a grade in [0, 10].
func ComputeTotalGrade(entries []model.GradeEntry, responseCount int) (map[int]model.ResponseGrade, float64, error) {
	if responseCount == 0 {
		return nil, 0, ErrIncompleteGrading
	}

	grades := make(map[int]model.ResponseGrade, len(entries))
	sum := 0.0
	for _, e := range entries {
		if e.Index < 0 || e.Index >= responseCount {
			return nil, 0, ErrGradeIndexInvalid
		}
		if _, dup := grades[e.Index]; dup {
			return nil, 0, ErrGradeIndexInvalid
		}
		if e.Grade < 0 || e.Grade > 10 {
			return nil, 0, ErrGradeOutOfRange
		}
		grades[e.Index] = model.ResponseGrade{Grade: e.Grade, Feedback: e.Feedback}
		sum += e.Grade
	}
	if len(grades) != responseCount {
		return nil, 0, ErrIncompleteGrading
	}

	total := math.Round(sum/float64(responseCount)*10) / 10
	return grades, total, nil
}

// GradesByQuestion rekeys per-index grades by the question each indexed
// response answers. Grade entries index the dense response list, which may
// not line up with the stored shuffle positions when a student answered out
// of order; the question id is the key both sides agree on.
func GradesByQuestion(responses []model.Response, grades map[int]model.ResponseGrade) map[uuid.UUID]model.ResponseGrade {
	byQuestion := make(map[uuid.UUID]model.ResponseGrade, len(grades))
	for idx, g := range grades {
		byQuestion[responses[idx].QuestionID] = g
	}
	return byQuestion
}

// ListStudentReports returns the caller's own completed attempts for the
// student results page. status narrows the list to pending or reviewed;
// empty means both.
func (s *GradingService) ListStudentReports(ctx context.Context, studentEmail string, status ReportStatus) ([]model.Attempt, error) {
	var reviewed *bool
	switch status {
	case ReportStatusPending:
		f := false
		reviewed = &f
	case ReportStatusReviewed:
		t := true
		reviewed = &t
	}
	return s.attemptRepo.ListByStudent(ctx, studentEmail, reviewed)
}
