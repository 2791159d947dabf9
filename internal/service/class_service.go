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

// Common class errors.
var (
	ErrClassNotFound = errors.New("class not found")
	ErrNotOwner      = errors.New("resource is owned by another teacher")
)

// ClassService handles class group business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

// Create creates a class group and enrolls any initial students.
func (s *ClassService) Create(ctx context.Context, professorEmail string, req *model.CreateClassRequest) (*model.ClassGroup, error) {
	class, err := s.classRepo.Create(ctx, req.Name, professorEmail)
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	for _, email := range req.Students {
		class, err = s.classRepo.AddStudent(ctx, class.ID, email)
		if err != nil {
			return nil, fmt.Errorf("enroll %s: %w", email, err)
		}
	}
	return class, nil
}

// List returns the caller's class groups.
func (s *ClassService) List(ctx context.Context, professorEmail string) ([]model.ClassGroup, error) {
	return s.classRepo.ListByProfessor(ctx, professorEmail)
}

// getOwned loads a class and verifies ownership.
func (s *ClassService) getOwned(ctx context.Context, id uuid.UUID, professorEmail string) (*model.ClassGroup, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class.ProfessorEmail != professorEmail {
		return nil, ErrNotOwner
	}
	return class, nil
}

// AddStudent enrolls a student email. Re-adding an enrolled student is a
// no-op and returns the unchanged roster.
func (s *ClassService) AddStudent(ctx context.Context, id uuid.UUID, professorEmail, studentEmail string) (*model.ClassGroup, error) {
	if _, err := s.getOwned(ctx, id, professorEmail); err != nil {
		return nil, err
	}
	return s.classRepo.AddStudent(ctx, id, studentEmail)
}

// RemoveStudent drops a student email. Removing an absent email succeeds.
func (s *ClassService) RemoveStudent(ctx context.Context, id uuid.UUID, professorEmail, studentEmail string) (*model.ClassGroup, error) {
	if _, err := s.getOwned(ctx, id, professorEmail); err != nil {
		return nil, err
	}
	return s.classRepo.RemoveStudent(ctx, id, studentEmail)
}

// Delete removes a class group the caller owns.
func (s *ClassService) Delete(ctx context.Context, id uuid.UUID, professorEmail string) error {
	if _, err := s.getOwned(ctx, id, professorEmail); err != nil {
		return err
	}
	return s.classRepo.Delete(ctx, id)
}
