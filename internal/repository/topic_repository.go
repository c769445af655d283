package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdrill/backend/internal/model"
)

type TopicRepository struct {
	pool *pgxpool.Pool
}

func NewTopicRepository(pool *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{pool: pool}
}

func (r *TopicRepository) Create(ctx context.Context, t *model.Topic) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO topics (name, description) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Description).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetAll lists topics with their derived question counts.
func (r *TopicRepository) GetAll(ctx context.Context) ([]model.Topic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, t.description, COUNT(q.id), t.created_at, t.updated_at
		 FROM topics t
		 LEFT JOIN questions q ON q.topic_id = t.id
		 GROUP BY t.id
		 ORDER BY t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *TopicRepository) GetByID(ctx context.Context, id int) (*model.Topic, error) {
	var t model.Topic
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.name, t.description,
		        (SELECT COUNT(*) FROM questions q WHERE q.topic_id = t.id),
		        t.created_at, t.updated_at
		 FROM topics t WHERE t.id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetOrCreateByName resolves a topic name to its record, creating the topic
// on first use. Used by the bulk import, which carries topics by name.
func (r *TopicRepository) GetOrCreateByName(ctx context.Context, tx pgx.Tx, name string) (int, error) {
	var id int
	err := tx.QueryRow(ctx, `SELECT id FROM topics WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO topics (name, description) VALUES ($1, '') RETURNING id`,
		name).Scan(&id)
	return id, err
}

func (r *TopicRepository) Update(ctx context.Context, t *model.Topic) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE topics SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		t.Name, t.Description, t.ID)
	return err
}

func (r *TopicRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	return err
}

// QuestionCount returns how many questions reference the topic. Deletes are
// rejected while this is non-zero.
func (r *TopicRepository) QuestionCount(ctx context.Context, id int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE topic_id = $1`, id).Scan(&n)
	return n, err
}
