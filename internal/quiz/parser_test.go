package quiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullBlock = `QUESTION: What is the capital of France?
TOPIC: Geography
SUBTOPIC: Europe
DIFFICULTY: easy
OPTION A: London
OPTION B: Paris
OPTION C: Berlin
OPTION D: Madrid
CORRECT: B
EXPLANATION: Paris has been the capital since 987.`

func TestParseBulkSingleBlock(t *testing.T) {
	questions, err := ParseBulk(fullBlock)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "What is the capital of France?", q.Text)
	assert.Equal(t, "Geography", q.Topic)
	assert.Equal(t, "Europe", q.Subtopic)
	assert.Equal(t, "easy", q.Difficulty)
	assert.Equal(t, "London", q.OptionA)
	assert.Equal(t, "Paris", q.OptionB)
	assert.Equal(t, "Berlin", q.OptionC)
	assert.Equal(t, "Madrid", q.OptionD)
	assert.Equal(t, "B", q.CorrectOption)
	assert.Equal(t, "Paris has been the capital since 987.", q.Explanation)
}

func TestParseBulkBlankLineSeparation(t *testing.T) {
	text := fullBlock + "\n\n" + strings.ReplaceAll(fullBlock, "CORRECT: B", "CORRECT: C")

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "B", questions[0].CorrectOption)
	assert.Equal(t, "C", questions[1].CorrectOption)
}

func TestParseBulkWhitespaceOnlySeparatorLines(t *testing.T) {
	// Separator lines holding only spaces still split blocks.
	text := fullBlock + "\n   \n" + fullBlock

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseBulkQuestionMarkerFallback(t *testing.T) {
	// No blank lines at all: blocks start at each QUESTION: line.
	text := fullBlock + "\n" + strings.ReplaceAll(fullBlock, "Paris", "Rome")

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Paris", questions[0].OptionB)
	assert.Equal(t, "Rome", questions[1].OptionB)
}

func TestParseBulkDifficultyDefaultsToMedium(t *testing.T) {
	text := strings.ReplaceAll(fullBlock, "DIFFICULTY: easy\n", "")

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "medium", questions[0].Difficulty)
}

func TestParseBulkDropsIncompleteBlocks(t *testing.T) {
	incomplete := strings.ReplaceAll(fullBlock, "OPTION D: Madrid\n", "")
	text := incomplete + "\n\n" + fullBlock

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is the capital of France?", questions[0].Text)
}

func TestParseBulkIgnoresUnknownLines(t *testing.T) {
	text := "random preamble line\n" + fullBlock + "\nNOTES: ignored trailer"

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseBulkInvalidCorrectOptionFailsWholeBatch(t *testing.T) {
	bad := strings.ReplaceAll(fullBlock, "CORRECT: B", "CORRECT: E")
	text := fullBlock + "\n\n" + bad + "\n\n" + strings.ReplaceAll(bad, "CORRECT: E", "CORRECT: X")

	questions, err := ParseBulk(text)
	assert.Nil(t, questions)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "2 question(s)")
}

func TestParseBulkEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n  ", "just some prose\nwith no markers"} {
		questions, err := ParseBulk(text)
		assert.Nil(t, questions)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	}
}

func TestParseBulkTrimsFieldWhitespace(t *testing.T) {
	text := "QUESTION:    padded?   \nTOPIC:  T \nOPTION A: a\nOPTION B: b\nOPTION C: c\nOPTION D: d\nCORRECT:  A  "

	questions, err := ParseBulk(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "padded?", questions[0].Text)
	assert.Equal(t, "T", questions[0].Topic)
	assert.Equal(t, "A", questions[0].CorrectOption)
}
