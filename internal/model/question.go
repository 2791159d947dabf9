package model

import (
	"time"

	"github.com/google/uuid"
)

// Question represents a single bank question. Questions are immutable after
// creation; the bank only supports create and delete.
type Question struct {
	ID             uuid.UUID `json:"id"`
	Field          string    `json:"field"`
	Subject        *string   `json:"subject,omitempty"`
	QuestionText   string    `json:"question_text"`
	SampleResponse *string   `json:"sample_response,omitempty"`
	CreatedBy      string    `json:"created_by"`
	IsPublic       bool      `json:"is_public"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuestionInput is one question inside a batch create request.
type QuestionInput struct {
	QuestionText   string `json:"question_text" binding:"required,min=1,max=2000"`
	SampleResponse string `json:"sample_response" binding:"omitempty,max=4000"`
}

// CreateQuestionsRequest is the payload for creating one or more questions
// tagged with a common field and optional subject.
type CreateQuestionsRequest struct {
	Field     string          `json:"field" binding:"required,min=1,max=100"`
	Subject   string          `json:"subject" binding:"omitempty,max=100"`
	IsPublic  bool            `json:"is_public"`
	Questions []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// QuestionFacets lists the distinct fields and subjects present in a
// teacher's bank, used to populate filter dropdowns.
type QuestionFacets struct {
	Fields   []string `json:"fields"`
	Subjects []string `json:"subjects"`
}
