package model

import (
	"time"

	"github.com/google/uuid"
)

// Response is one answered question inside an attempt. The question text is
// denormalized so a review remains readable even if the bank entry is deleted.
type Response struct {
	QuestionID   uuid.UUID `json:"question_id"`
	QuestionText string    `json:"question_text"`
	Answer       string    `json:"answer"`
	TimeTaken    float64   `json:"time_taken"` // seconds
}

// ResponseGrade is a teacher's grade and optional feedback for one response.
type ResponseGrade struct {
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback,omitempty"`
}

// Attempt is one student's run through an exam. At most one attempt exists
// per (exam, student) pair. Responses only grow while the attempt is active
// and are frozen once Completed is true.
type Attempt struct {
	ID             uuid.UUID             `json:"id"`
	ExamID         uuid.UUID             `json:"exam_id"`
	ExamTitle      string                `json:"exam_title"`
	StudentEmail   string                `json:"student_email"`
	StudentName    string                `json:"student_name"`
	ProfessorEmail string                `json:"professor_email"`
	QuestionOrder  []uuid.UUID           `json:"question_order"`
	Responses      []Response            `json:"responses"`
	StartedAt      time.Time             `json:"started_at"`
	EndedAt        *time.Time            `json:"ended_at,omitempty"`
	TotalTimeTaken *float64              `json:"total_time_taken,omitempty"` // seconds
	Warnings       int                   `json:"warnings"`
	Completed      bool                  `json:"completed"`
	IsReviewed     bool                  `json:"is_reviewed"`
	Grades         map[int]ResponseGrade `json:"grades,omitempty"`
	TotalGrade     *float64              `json:"total_grade,omitempty"`
	ReviewedBy     *string               `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time            `json:"reviewed_at,omitempty"`
}

// SubmitResponseRequest is the payload for answering the current question.
type SubmitResponseRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"omitempty,max=10000"`
	TimeTaken  float64   `json:"time_taken" binding:"min=0"`
}

// GradeEntry is one graded response inside a review submission.
type GradeEntry struct {
	Index    int     `json:"index" binding:"min=0"`
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback" binding:"omitempty,max=4000"`
}

// ReviewRequest is the payload for submitting a full review. Every response
// of the attempt must be covered by exactly one entry.
type ReviewRequest struct {
	Grades []GradeEntry `json:"grades" binding:"required,min=1,dive"`
}

// AttemptState is what a resuming client needs: answered questions so far,
// the next question index and the running counters.
type AttemptState struct {
	AttemptID      uuid.UUID   `json:"attempt_id"`
	ExamID         uuid.UUID   `json:"exam_id"`
	QuestionOrder  []uuid.UUID `json:"question_order"`
	NextQuestion   int         `json:"next_question"`
	Responses      []Response  `json:"responses"`
	Warnings       int         `json:"warnings"`
	Completed      bool        `json:"completed"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
}
