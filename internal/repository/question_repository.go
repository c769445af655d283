package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdrill/backend/internal/model"
)

// ErrQuestionNotFound reports a referenced question that no longer exists,
// e.g. one deleted by an admin after a submission named it.
var ErrQuestionNotFound = errors.New("question not found")

const questionColumns = `id, text, topic_id, subtopic, difficulty, image_path,
	option_a, option_b, option_c, option_d, correct_option, explanation,
	created_at, updated_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Text, &q.TopicID, &q.Subtopic, &q.Difficulty, &q.ImagePath,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.Explanation,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (text, topic_id, subtopic, difficulty, image_path,
		   option_a, option_b, option_c, option_d, correct_option, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		q.Text, q.TopicID, q.Subtopic, q.Difficulty, q.ImagePath,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Explanation,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves one question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// List retrieves questions matching the filter, newest first, with the total
// match count for pagination.
func (r *QuestionRepository) List(ctx context.Context, f model.QuestionFilter) ([]model.Question, int, error) {
	where := `WHERE ($1::int IS NULL OR topic_id = $1)
	  AND ($2 = '' OR difficulty = $2)
	  AND ($3 = '' OR text ILIKE '%' || $3 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions `+where,
		f.TopicID, f.Difficulty, f.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PerPage
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions `+where+`
		 ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`,
		f.TopicID, f.Difficulty, f.Search, f.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}

	questions, err := collectQuestions(rows)
	return questions, total, err
}

// RandomSample retrieves up to count random questions, optionally filtered
// by topic. count <= 0 means all matching questions (in random order).
func (r *QuestionRepository) RandomSample(ctx context.Context, topicID *int, count int) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions
	 WHERE ($1::int IS NULL OR topic_id = $1)
	 ORDER BY RANDOM()`
	args := []interface{}{topicID}
	if count > 0 {
		query += ` LIMIT $2`
		args = append(args, count)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// GetByIDs retrieves the given questions, ordered to match ids. Missing IDs
// are an error: a submission must reference questions that still exist.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	questions, err := collectQuestions(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrQuestionNotFound, id)
		}
		ordered = append(ordered, q)
	}
	return ordered, nil
}

// CreateBatch inserts questions inside the given transaction. Used by the
// bulk import so a batch lands atomically.
func (r *QuestionRepository) CreateBatch(ctx context.Context, tx pgx.Tx, questions []model.Question) error {
	for i := range questions {
		q := &questions[i]
		if err := tx.QueryRow(ctx,
			`INSERT INTO questions (text, topic_id, subtopic, difficulty, image_path,
			   option_a, option_b, option_c, option_d, correct_option, explanation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			q.Text, q.TopicID, q.Subtopic, q.Difficulty, q.ImagePath,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Explanation,
		).Scan(&q.ID); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET text = $1, topic_id = $2, subtopic = $3, difficulty = $4,
		   image_path = $5, option_a = $6, option_b = $7, option_c = $8, option_d = $9,
		   correct_option = $10, explanation = $11, updated_at = NOW()
		 WHERE id = $12`,
		q.Text, q.TopicID, q.Subtopic, q.Difficulty, q.ImagePath,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Explanation, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// CountByTopic returns how many questions exist for the topic (nil = all).
func (r *QuestionRepository) CountByTopic(ctx context.Context, topicID *int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE ($1::int IS NULL OR topic_id = $1)`,
		topicID).Scan(&n)
	return n, err
}
