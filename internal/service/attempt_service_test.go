package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examly/examly-backend/internal/model"
)

func TestShuffleQuestionIDsIsPermutation(t *testing.T) {
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		ids[i] = uuid.New()
	}
	original := make([]uuid.UUID, len(ids))
	copy(original, ids)

	order := ShuffleQuestionIDs(ids)

	require.Len(t, order, len(ids))
	assert.ElementsMatch(t, ids, order)
	// The input slice is never touched.
	assert.Equal(t, original, ids)
}

func TestShuffleQuestionIDsEmpty(t *testing.T) {
	assert.Empty(t, ShuffleQuestionIDs(nil))
	assert.Len(t, ShuffleQuestionIDs([]uuid.UUID{uuid.New()}), 1)
}

func TestMergeResponsesPendingWins(t *testing.T) {
	q1, q2, q3 := uuid.New(), uuid.New(), uuid.New()
	order := []uuid.UUID{q1, q2, q3}

	persisted := []model.Response{
		{QuestionID: q1, Answer: "old answer", TimeTaken: 10},
		{QuestionID: q2, Answer: "kept", TimeTaken: 5},
	}
	pending := []model.Response{
		{QuestionID: q1, Answer: "new answer", TimeTaken: 12},
		{QuestionID: q3, Answer: "fresh", TimeTaken: 3},
	}

	merged := mergeResponses(order, persisted, pending)

	require.Len(t, merged, 3)
	// Ordered by question order, with the buffered answer overriding the
	// persisted one for the same question.
	assert.Equal(t, "new answer", merged[0].Answer)
	assert.Equal(t, "kept", merged[1].Answer)
	assert.Equal(t, "fresh", merged[2].Answer)
}

func TestMergeResponsesIgnoresUnknownQuestions(t *testing.T) {
	q1 := uuid.New()
	order := []uuid.UUID{q1}

	merged := mergeResponses(order, nil, []model.Response{
		{QuestionID: q1, Answer: "in"},
		{QuestionID: uuid.New(), Answer: "stray"},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "in", merged[0].Answer)
}
