package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examly/examly-backend/internal/model"
)

func TestComputeTotalGradeMean(t *testing.T) {
	grades, total, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 8, Feedback: "solid"},
		{Index: 1, Grade: 6},
		{Index: 2, Grade: 10},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, 8.0, total)
	assert.Len(t, grades, 3)
	assert.Equal(t, "solid", grades[0].Feedback)
	assert.Equal(t, 6.0, grades[1].Grade)
}

func TestComputeTotalGradeRoundsToOneDecimal(t *testing.T) {
	_, total, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 7},
		{Index: 1, Grade: 8},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.5, total)

	_, total, err = ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 0},
		{Index: 1, Grade: 0},
		{Index: 2, Grade: 1},
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, total)
}

func TestComputeTotalGradeFailsClosed(t *testing.T) {
	// A missing response grade rejects the whole review.
	_, _, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 8},
	}, 2)
	assert.ErrorIs(t, err, ErrIncompleteGrading)

	// No responses at all cannot be reviewed.
	_, _, err = ComputeTotalGrade(nil, 0)
	assert.ErrorIs(t, err, ErrIncompleteGrading)
}

func TestComputeTotalGradeRange(t *testing.T) {
	_, _, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 11},
	}, 1)
	assert.ErrorIs(t, err, ErrGradeOutOfRange)

	_, _, err = ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: -0.5},
	}, 1)
	assert.ErrorIs(t, err, ErrGradeOutOfRange)

	// Boundaries are inclusive.
	_, total, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 0},
		{Index: 1, Grade: 10},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, total)
}

func TestComputeTotalGradeInvalidIndexes(t *testing.T) {
	_, _, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 2, Grade: 5},
	}, 1)
	assert.ErrorIs(t, err, ErrGradeIndexInvalid)

	// Duplicate entries for the same response are rejected.
	_, _, err = ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 5},
		{Index: 0, Grade: 7},
	}, 2)
	assert.ErrorIs(t, err, ErrGradeIndexInvalid)
}

func TestGradesByQuestionTargetsAnsweredQuestions(t *testing.T) {
	// A student who answered the first and third questions of the shuffle
	// and skipped the second leaves a dense two-response list. The review
	// indexes that list; the rekeyed grades must land on the answered
	// questions, not on shuffle positions.
	first := uuid.New()
	third := uuid.New()
	responses := []model.Response{
		{QuestionID: first, Answer: "a"},
		{QuestionID: third, Answer: "c"},
	}

	grades, total, err := ComputeTotalGrade([]model.GradeEntry{
		{Index: 0, Grade: 9, Feedback: "good"},
		{Index: 1, Grade: 5},
	}, len(responses))
	require.NoError(t, err)
	assert.Equal(t, 7.0, total)

	byQuestion := GradesByQuestion(responses, grades)
	require.Len(t, byQuestion, 2)
	assert.Equal(t, 9.0, byQuestion[first].Grade)
	assert.Equal(t, "good", byQuestion[first].Feedback)
	assert.Equal(t, 5.0, byQuestion[third].Grade)
}
