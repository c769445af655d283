package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/repository"
)

// ErrTopicHasQuestions is returned when deleting a topic that questions
// still reference. It carries the dependency count for the error message.
type ErrTopicHasQuestions struct {
	TopicID       int
	QuestionCount int
}

func (e *ErrTopicHasQuestions) Error() string {
	return fmt.Sprintf("topic %d still has %d associated question(s)", e.TopicID, e.QuestionCount)
}

type TopicService struct {
	topicRepo *repository.TopicRepository
	log       zerolog.Logger
}

func NewTopicService(topicRepo *repository.TopicRepository, log zerolog.Logger) *TopicService {
	return &TopicService{
		topicRepo: topicRepo,
		log:       log.With().Str("component", "topic_service").Logger(),
	}
}

func (s *TopicService) GetAll(ctx context.Context) ([]model.Topic, error) {
	return s.topicRepo.GetAll(ctx)
}

func (s *TopicService) GetByID(ctx context.Context, id int) (*model.Topic, error) {
	return s.topicRepo.GetByID(ctx, id)
}

func (s *TopicService) Create(ctx context.Context, t *model.Topic) error {
	return s.topicRepo.Create(ctx, t)
}

func (s *TopicService) Update(ctx context.Context, t *model.Topic) error {
	return s.topicRepo.Update(ctx, t)
}

// Delete removes a topic unless questions still reference it, in which case
// an ErrTopicHasQuestions names the dependency and nothing changes.
func (s *TopicService) Delete(ctx context.Context, id int) error {
	count, err := s.topicRepo.QuestionCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return &ErrTopicHasQuestions{TopicID: id, QuestionCount: count}
	}
	return s.topicRepo.Delete(ctx, id)
}
