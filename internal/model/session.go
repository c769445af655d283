package model

import "time"

// Session is one completed quiz attempt by a student. Sessions are immutable
// once created: there is no update endpoint.
type Session struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	TopicID        *int      `json:"topic_id"` // nil = mixed topics
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          float64   `json:"score"`
	TimeSpent      int       `json:"time_spent"` // seconds
	CompletedAt    time.Time `json:"completed_at"`
}

// SessionQuestion is the per-question record of what was asked, what was
// selected, and whether it was correct, within one session.
type SessionQuestion struct {
	ID             int     `json:"id"`
	SessionID      int     `json:"session_id"`
	QuestionID     int     `json:"question_id"`
	SelectedOption *string `json:"selected_option"` // nil = left unanswered
	IsCorrect      bool    `json:"is_correct"`
	TimeSpent      int     `json:"time_spent"` // seconds
}

// SessionDetail is a session with its per-question breakdown, each joined
// with the full question so results views can show explanations.
type SessionDetail struct {
	Session   Session                 `json:"session"`
	Questions []SessionQuestionDetail `json:"questions"`
}

// SessionQuestionDetail joins a session question with the question itself.
type SessionQuestionDetail struct {
	SessionQuestion
	Question Question `json:"question"`
}

// SubmitAnswer is one answered (or skipped) question in a submission.
type SubmitAnswer struct {
	QuestionID     int     `json:"question_id" binding:"required"`
	SelectedOption *string `json:"selected_option" binding:"omitempty,oneof=A B C D"`
	TimeSpent      int     `json:"time_spent" binding:"min=0"`
}

// SubmitSessionRequest is the payload for persisting a completed quiz.
// Correctness and score are recomputed server-side; the client only reports
// what was selected and how long each question was in focus.
type SubmitSessionRequest struct {
	TopicID *int           `json:"topic_id"`
	Answers []SubmitAnswer `json:"answers" binding:"required,min=1,dive"`
}
