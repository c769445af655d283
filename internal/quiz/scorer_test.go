package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdrill/backend/internal/model"
)

func opt(s string) *string { return &s }

func bank(correct ...string) []model.Question {
	questions := make([]model.Question, len(correct))
	for i, c := range correct {
		questions[i] = model.Question{ID: i + 1, CorrectOption: c}
	}
	return questions
}

func TestScoreAllCorrect(t *testing.T) {
	questions := bank("A", "B", "C", "D")
	answers := []Answer{
		{SelectedOption: opt("A"), TimeSpent: 10},
		{SelectedOption: opt("B"), TimeSpent: 20},
		{SelectedOption: opt("C"), TimeSpent: 5},
		{SelectedOption: opt("D"), TimeSpent: 7},
	}

	res, err := Score(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalQuestions)
	assert.Equal(t, 4, res.CorrectAnswers)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, 42, res.TimeSpent)
}

func TestScorePartial(t *testing.T) {
	questions := bank("A", "A", "A", "A", "A", "A", "A", "A", "A", "A")
	answers := make([]Answer, 10)
	for i := 0; i < 7; i++ {
		answers[i] = Answer{SelectedOption: opt("A")}
	}
	for i := 7; i < 10; i++ {
		answers[i] = Answer{SelectedOption: opt("B")}
	}

	res, err := Score(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 7, res.CorrectAnswers)
	assert.Equal(t, 70.0, res.Score)
}

func TestScoreNilSelectionNeverMatches(t *testing.T) {
	questions := bank("A")
	res, err := Score(questions, []Answer{{SelectedOption: nil, TimeSpent: 3}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectAnswers)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Questions[0].IsCorrect)
	assert.Nil(t, res.Questions[0].SelectedOption)
	assert.Equal(t, 3, res.Questions[0].TimeSpent)
}

func TestScoreUnroundedPercentage(t *testing.T) {
	questions := bank("A", "A", "A")
	answers := []Answer{
		{SelectedOption: opt("A")},
		{SelectedOption: opt("B")},
		{SelectedOption: opt("C")},
	}

	res, err := Score(questions, answers)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3.0, res.Score, 1e-9)
}

func TestScorePerQuestionResults(t *testing.T) {
	questions := bank("B", "C")
	answers := []Answer{
		{SelectedOption: opt("B"), TimeSpent: 1},
		{SelectedOption: opt("D"), TimeSpent: 2},
	}

	res, err := Score(questions, answers)
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, 1, res.Questions[0].QuestionID)
	assert.True(t, res.Questions[0].IsCorrect)
	assert.Equal(t, 2, res.Questions[1].QuestionID)
	assert.False(t, res.Questions[1].IsCorrect)
}

func TestScoreNoQuestions(t *testing.T) {
	_, err := Score(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestScoreLengthMismatch(t *testing.T) {
	_, err := Score(bank("A", "B"), []Answer{{SelectedOption: opt("A")}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoQuestions)
}
