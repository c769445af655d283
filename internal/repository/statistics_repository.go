package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatisticsRepository aggregates read-only analytics for the admin views.
type StatisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(pool *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level totals for the dashboard.
func (r *StatisticsRepository) GetSummaryCounts(ctx context.Context) (totalUsers, totalTopics, totalQuestions, totalSessions int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM topics),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM sessions)`,
	).Scan(&totalUsers, &totalTopics, &totalQuestions, &totalSessions)
	return
}

// GetAverageScore retrieves the overall mean session score, nil when no
// sessions exist yet.
func (r *StatisticsRepository) GetAverageScore(ctx context.Context) (*float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx, `SELECT AVG(score) FROM sessions`).Scan(&avg)
	return avg, err
}

// TopicPerformance is per-topic session aggregates for the analytics charts.
type TopicPerformance struct {
	TopicID      int     `json:"topic_id"`
	TopicName    string  `json:"topic_name"`
	SessionCount int     `json:"session_count"`
	AverageScore float64 `json:"average_score"`
}

// GetTopicPerformance retrieves session count and mean score per topic.
// Topics without sessions are included with zero values so charts stay
// complete.
func (r *StatisticsRepository) GetTopicPerformance(ctx context.Context) ([]TopicPerformance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, COUNT(s.id), COALESCE(AVG(s.score), 0)
		 FROM topics t
		 LEFT JOIN sessions s ON s.topic_id = t.id
		 GROUP BY t.id, t.name
		 ORDER BY t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []TopicPerformance
	for rows.Next() {
		var p TopicPerformance
		if err := rows.Scan(&p.TopicID, &p.TopicName, &p.SessionCount, &p.AverageScore); err != nil {
			return nil, err
		}
		perf = append(perf, p)
	}
	if perf == nil {
		perf = []TopicPerformance{}
	}
	return perf, rows.Err()
}

// RecentActivity is one recently completed session for the activity feed.
type RecentActivity struct {
	SessionID      int       `json:"session_id"`
	UserFullName   string    `json:"user_full_name"`
	TopicName      *string   `json:"topic_name"` // nil = mixed topics
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// GetRecentActivity retrieves the last N completed sessions with user and
// topic names resolved.
func (r *StatisticsRepository) GetRecentActivity(ctx context.Context, limit int) ([]RecentActivity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, u.full_name, t.name, s.score, s.total_questions, s.completed_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 LEFT JOIN topics t ON t.id = s.topic_id
		 ORDER BY s.completed_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []RecentActivity
	for rows.Next() {
		var a RecentActivity
		if err := rows.Scan(&a.SessionID, &a.UserFullName, &a.TopicName, &a.Score, &a.TotalQuestions, &a.CompletedAt); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	if activity == nil {
		activity = []RecentActivity{}
	}
	return activity, rows.Err()
}
