package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdrill/backend/internal/model"
)

// SessionRepository handles completed-session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateWithQuestions writes the session row and all of its per-question
// rows in a single transaction. Either the whole attempt is recorded or
// nothing is — there is no partial-session window.
func (r *SessionRepository) CreateWithQuestions(ctx context.Context, s *model.Session, questions []model.SessionQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO sessions (user_id, topic_id, total_questions, correct_answers, score, time_spent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, completed_at`,
		s.UserID, s.TopicID, s.TotalQuestions, s.CorrectAnswers, s.Score, s.TimeSpent,
	).Scan(&s.ID, &s.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i := range questions {
		sq := &questions[i]
		sq.SessionID = s.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO session_questions (session_id, question_id, selected_option, is_correct, time_spent)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			sq.SessionID, sq.QuestionID, sq.SelectedOption, sq.IsCorrect, sq.TimeSpent,
		).Scan(&sq.ID); err != nil {
			return fmt.Errorf("insert session question: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves one session.
func (r *SessionRepository) GetByID(ctx context.Context, id int) (*model.Session, error) {
	var s model.Session
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, topic_id, total_questions, correct_answers, score, time_spent, completed_at
		 FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.TopicID, &s.TotalQuestions, &s.CorrectAnswers, &s.Score, &s.TimeSpent, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser retrieves a user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, topic_id, total_questions, correct_answers, score, time_spent, completed_at
		 FROM sessions WHERE user_id = $1 ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.TopicID, &s.TotalQuestions, &s.CorrectAnswers,
			&s.Score, &s.TimeSpent, &s.CompletedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetQuestions retrieves a session's per-question rows joined with the full
// questions, in insertion order (presentation order).
func (r *SessionRepository) GetQuestions(ctx context.Context, sessionID int) ([]model.SessionQuestionDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sq.id, sq.session_id, sq.question_id, sq.selected_option, sq.is_correct, sq.time_spent,
		        q.id, q.text, q.topic_id, q.subtopic, q.difficulty, q.image_path,
		        q.option_a, q.option_b, q.option_c, q.option_d, q.correct_option, q.explanation,
		        q.created_at, q.updated_at
		 FROM session_questions sq
		 JOIN questions q ON q.id = sq.question_id
		 WHERE sq.session_id = $1
		 ORDER BY sq.id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.SessionQuestionDetail
	for rows.Next() {
		var d model.SessionQuestionDetail
		q := &d.Question
		if err := rows.Scan(&d.ID, &d.SessionID, &d.QuestionID, &d.SelectedOption, &d.IsCorrect, &d.TimeSpent,
			&q.ID, &q.Text, &q.TopicID, &q.Subtopic, &q.Difficulty, &q.ImagePath,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.Explanation,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
