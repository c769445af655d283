package model

import "time"

// StartAttemptRequest configures a new practice attempt. The question count
// is restricted to the selector's enumerated choices; 9999 means "all
// questions in the topic". Timed attempts carry seconds per question in
// 15-second steps; the total budget is derived, never sent by the client.
type StartAttemptRequest struct {
	TopicID            *int `json:"topic_id"`
	QuestionCount      int  `json:"question_count" binding:"required,oneof=5 10 15 20 25 30 40 50 100 9999"`
	Timed              bool `json:"timed"`
	SecondsPerQuestion int  `json:"seconds_per_question" binding:"omitempty,oneof=15 30 45 60 75 90 105 120 135 150 165 180"`
}

// SaveAnswerRequest autosaves one answer slot of an attempt. A nil selected
// option clears the slot. TimeSpent is the seconds this question has been
// in focus so far, accumulated by the client and overwritten on each save.
type SaveAnswerRequest struct {
	Index          int     `json:"index" binding:"min=0"`
	SelectedOption *string `json:"selected_option" binding:"omitempty,oneof=A B C D"`
	TimeSpent      int     `json:"time_spent" binding:"min=0"`
}

// AttemptView is an in-flight attempt as shown to its owner: questions with
// the answer key stripped, autosaved answers, and the remaining budget.
type AttemptView struct {
	ID               string            `json:"id"`
	TopicID          *int              `json:"topic_id"`
	Timed            bool              `json:"timed"`
	TotalSeconds     int               `json:"total_seconds,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds,omitempty"`
	StartedAt        time.Time         `json:"started_at"`
	Questions        []StudentQuestion `json:"questions"`
	Answers          map[int]*string   `json:"answers"`
}
