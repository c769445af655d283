package quiz

import (
	"errors"
	"fmt"

	"github.com/quizdrill/backend/internal/model"
)

// ErrNoQuestions is returned when scoring is attempted with zero questions.
// The question-count selector rejects zero at the boundary, but the scorer
// guards regardless rather than dividing by zero.
var ErrNoQuestions = errors.New("cannot score a session with no questions")

// Answer is one submitted answer: the selected option (nil if the question
// was left unanswered) and the seconds the question was in focus.
type Answer struct {
	SelectedOption *string
	TimeSpent      int
}

// QuestionResult is the scored outcome for a single question.
type QuestionResult struct {
	QuestionID     int
	SelectedOption *string
	IsCorrect      bool
	TimeSpent      int
}

// Result aggregates a scored session.
type Result struct {
	TotalQuestions int
	CorrectAnswers int
	Score          float64 // percentage in [0, 100], unrounded
	TimeSpent      int     // sum of per-question seconds
	Questions      []QuestionResult
}

// Score computes correctness and aggregates for a completed quiz. Questions
// and answers are parallel slices in presentation order. A nil selection
// never matches. Score is the unrounded percentage; rounding is left to
// presentation.
func Score(questions []model.Question, answers []Answer) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuestions
	}
	if len(questions) != len(answers) {
		return Result{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(questions))
	}

	res := Result{
		TotalQuestions: len(questions),
		Questions:      make([]QuestionResult, len(questions)),
	}

	for i := range questions {
		a := answers[i]
		correct := a.SelectedOption != nil && *a.SelectedOption == questions[i].CorrectOption
		if correct {
			res.CorrectAnswers++
		}
		res.TimeSpent += a.TimeSpent
		res.Questions[i] = QuestionResult{
			QuestionID:     questions[i].ID,
			SelectedOption: a.SelectedOption,
			IsCorrect:      correct,
			TimeSpent:      a.TimeSpent,
		}
	}

	res.Score = float64(res.CorrectAnswers) / float64(res.TotalQuestions) * 100

	return res, nil
}
