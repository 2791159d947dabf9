package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassGroup represents a teacher-owned group of students, identified by email.
// Students behaves as a set: add and remove are idempotent.
type ClassGroup struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ProfessorEmail string    `json:"professor_email"`
	Students       []string  `json:"students"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateClassRequest is the payload for creating a new class group.
type CreateClassRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=100"`
	Students []string `json:"students" binding:"omitempty,dive,email"`
}

// AddStudentRequest is the payload for enrolling a student into a class.
type AddStudentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// HasStudent reports whether the given email is enrolled.
func (c *ClassGroup) HasStudent(email string) bool {
	for _, s := range c.Students {
		if s == email {
			return true
		}
	}
	return false
}
