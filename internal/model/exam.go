package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamState enumerates the possible states of an exam definition.
type ExamState string

const (
	ExamStateUnassigned ExamState = "UNASSIGNED"
	ExamStateAssigned   ExamState = "ASSIGNED"
)

// Exam is the reusable definition a teacher authors once: title, description
// and an ordered question set. Read-only after creation except for the
// assignment fields.
type Exam struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	QuestionIDs []uuid.UUID `json:"question_ids"`
	CreatedBy   string      `json:"created_by"`
	ClassID     *uuid.UUID  `json:"class_id,omitempty"`
	AssignedTo  []string    `json:"assigned_to"`
	IsPublic    bool        `json:"is_public"`
	State       ExamState   `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateExamRequest is the payload for creating a new exam definition.
type CreateExamRequest struct {
	Title       string      `json:"title" binding:"required,min=1,max=255"`
	Description string      `json:"description" binding:"omitempty,max=2000"`
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
	IsPublic    bool        `json:"is_public"`
}

// AssignExamRequest is the payload for assigning an exam to a class or to
// individual student emails. Exactly one of the two must be provided.
type AssignExamRequest struct {
	ClassID    *uuid.UUID `json:"class_id" binding:"omitempty"`
	AssignedTo []string   `json:"assigned_to" binding:"omitempty,dive,email"`
}

// AssignedExam is an exam as shown in the student's list, with the status of
// the student's own attempt overlaid.
type AssignedExam struct {
	Exam
	AttemptStatus AttemptStatus `json:"attempt_status"`
}

// AttemptStatus summarizes where a student stands on an exam.
type AttemptStatus string

const (
	AttemptStatusNotStarted AttemptStatus = "NOT_STARTED"
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)
