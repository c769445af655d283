package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/repository"
)

// DashboardStatistics is the admin analytics payload: platform totals,
// per-topic performance, and the latest completed sessions.
type DashboardStatistics struct {
	TotalUsers       int                           `json:"total_users"`
	TotalTopics      int                           `json:"total_topics"`
	TotalQuestions   int                           `json:"total_questions"`
	TotalSessions    int                           `json:"total_sessions"`
	AverageScore     *float64                      `json:"average_score"` // nil until a session exists
	TopicPerformance []repository.TopicPerformance `json:"topic_performance"`
	RecentActivity   []repository.RecentActivity   `json:"recent_activity"`
}

// StatisticsService assembles analytics for the admin dashboard.
type StatisticsService struct {
	statsRepo *repository.StatisticsRepository
	log       zerolog.Logger
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(statsRepo *repository.StatisticsRepository, log zerolog.Logger) *StatisticsService {
	return &StatisticsService{
		statsRepo: statsRepo,
		log:       log.With().Str("component", "statistics_service").Logger(),
	}
}

// Dashboard retrieves the full analytics payload in one call.
func (s *StatisticsService) Dashboard(ctx context.Context) (*DashboardStatistics, error) {
	stats := &DashboardStatistics{}

	var err error
	stats.TotalUsers, stats.TotalTopics, stats.TotalQuestions, stats.TotalSessions, err = s.statsRepo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats.AverageScore, err = s.statsRepo.GetAverageScore(ctx)
	if err != nil {
		return nil, err
	}

	stats.TopicPerformance, err = s.statsRepo.GetTopicPerformance(ctx)
	if err != nil {
		return nil, err
	}

	stats.RecentActivity, err = s.statsRepo.GetRecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
