package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionCSV(t *testing.T) {
	csv := "Question,Answer\n" +
		"What is gravity?,A force of attraction between masses.\n" +
		"Define velocity.,\n" +
		"Explain inertia.,Objects resist changes to their motion.\n"

	inputs, skipped, err := ParseQuestionCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	assert.Zero(t, skipped)

	assert.Equal(t, "What is gravity?", inputs[0].QuestionText)
	assert.Equal(t, "A force of attraction between masses.", inputs[0].SampleResponse)
	assert.Empty(t, inputs[1].SampleResponse)
	assert.Equal(t, "Objects resist changes to their motion.", inputs[2].SampleResponse)
}

func TestParseQuestionCSVHeaderIsCaseInsensitive(t *testing.T) {
	inputs, _, err := ParseQuestionCSV(strings.NewReader("QUESTION,answer\nWhy is the sky blue?,Rayleigh scattering.\n"))
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Rayleigh scattering.", inputs[0].SampleResponse)
}

func TestParseQuestionCSVAnswerColumnOptional(t *testing.T) {
	inputs, _, err := ParseQuestionCSV(strings.NewReader("Question\nState Newton's first law.\n"))
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Empty(t, inputs[0].SampleResponse)
}

func TestParseQuestionCSVMissingQuestionColumn(t *testing.T) {
	_, _, err := ParseQuestionCSV(strings.NewReader("Prompt,Answer\nsomething,else\n"))
	assert.ErrorIs(t, err, ErrMissingQuestionColumn)
}

func TestParseQuestionCSVSkipsAndCountsEmptyRows(t *testing.T) {
	csv := "Question,Answer\n" +
		",orphan answer\n" +
		"   ,\n" +
		"Real question,real answer\n"

	inputs, skipped, err := ParseQuestionCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "Real question", inputs[0].QuestionText)
}

func TestParseQuestionCSVEmptyFile(t *testing.T) {
	_, _, err := ParseQuestionCSV(strings.NewReader("Question,Answer\n"))
	assert.ErrorIs(t, err, ErrEmptyImport)

	_, _, err = ParseQuestionCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestBuildPagination(t *testing.T) {
	// Seven questions at the bank's page size of five: two pages, the
	// second holding the remaining two items and nothing after it.
	p := buildPagination(2, 5, 7)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 7, p.TotalItems)
	assert.Equal(t, 2, p.TotalItems-(p.Page-1)*p.PerPage)
	assert.False(t, p.Page < p.TotalPages)

	// First page is full and has a next page.
	p = buildPagination(1, 5, 7)
	assert.True(t, p.Page < p.TotalPages)

	// Exact multiple has no trailing partial page.
	p = buildPagination(2, 5, 10)
	assert.Equal(t, 2, p.TotalPages)

	// Empty listing.
	p = buildPagination(1, 5, 0)
	assert.Zero(t, p.TotalPages)
}
