package model

import "time"

// Difficulty levels accepted for a question.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question represents a single multiple-choice question in the bank.
type Question struct {
	ID            int       `json:"id"`
	Text          string    `json:"text"`
	TopicID       *int      `json:"topic_id"`
	Subtopic      string    `json:"subtopic"`
	Difficulty    string    `json:"difficulty"`
	ImagePath     *string   `json:"image_path"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Option returns the option text for the given letter, or "" if the letter
// is not one of A-D.
func (q *Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// StudentView strips the answer key and explanation so a question can be
// presented during a practice session.
func (q *Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:        q.ID,
		Text:      q.Text,
		TopicID:   q.TopicID,
		Subtopic:  q.Subtopic,
		ImagePath: q.ImagePath,
		OptionA:   q.OptionA,
		OptionB:   q.OptionB,
		OptionC:   q.OptionC,
		OptionD:   q.OptionD,
	}
}

// StudentQuestion is a question as shown to a student mid-session: no
// correct option, no explanation.
type StudentQuestion struct {
	ID        int     `json:"id"`
	Text      string  `json:"text"`
	TopicID   *int    `json:"topic_id"`
	Subtopic  string  `json:"subtopic"`
	ImagePath *string `json:"image_path"`
	OptionA   string  `json:"option_a"`
	OptionB   string  `json:"option_b"`
	OptionC   string  `json:"option_c"`
	OptionD   string  `json:"option_d"`
}

// CreateQuestionRequest is the payload for adding a question.
type CreateQuestionRequest struct {
	Text          string  `json:"text" binding:"required,min=1,max=2000"`
	TopicID       *int    `json:"topic_id"`
	Subtopic      string  `json:"subtopic" binding:"max=100"`
	Difficulty    string  `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	ImagePath     *string `json:"image_path"`
	OptionA       string  `json:"option_a" binding:"required,max=500"`
	OptionB       string  `json:"option_b" binding:"required,max=500"`
	OptionC       string  `json:"option_c" binding:"required,max=500"`
	OptionD       string  `json:"option_d" binding:"required,max=500"`
	CorrectOption string  `json:"correct_option" binding:"required,oneof=A B C D"`
	Explanation   string  `json:"explanation" binding:"max=2000"`
}

// UpdateQuestionRequest is the payload for updating a question.
type UpdateQuestionRequest struct {
	Text          string  `json:"text" binding:"required,min=1,max=2000"`
	TopicID       *int    `json:"topic_id"`
	Subtopic      string  `json:"subtopic" binding:"max=100"`
	Difficulty    string  `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	ImagePath     *string `json:"image_path"`
	OptionA       string  `json:"option_a" binding:"required,max=500"`
	OptionB       string  `json:"option_b" binding:"required,max=500"`
	OptionC       string  `json:"option_c" binding:"required,max=500"`
	OptionD       string  `json:"option_d" binding:"required,max=500"`
	CorrectOption string  `json:"correct_option" binding:"required,oneof=A B C D"`
	Explanation   string  `json:"explanation" binding:"max=2000"`
}

// BulkImportRequest is the payload for the free-text bulk question upload.
type BulkImportRequest struct {
	Text string `json:"text" binding:"required,min=1"`
}

// QuestionFilter narrows admin question listings.
type QuestionFilter struct {
	TopicID    *int
	Difficulty string
	Search     string
	Page       int
	PerPage    int
}
