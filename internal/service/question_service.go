package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/quiz"
	"github.com/quizdrill/backend/internal/repository"
)

// Question-bank errors.
var (
	// ErrNoQuestions: the bank holds nothing for the requested topic.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotEnoughQuestions: the bank holds some questions but fewer than
	// requested. Surfaced distinctly so the UI can tell the two apart.
	ErrNotEnoughQuestions = errors.New("fewer questions available than requested")
	// ErrCorrectOptionEmpty: the correct option letter points at an empty
	// option field.
	ErrCorrectOptionEmpty = errors.New("correct option references an empty option")
)

// AllQuestions is the sentinel count meaning "all questions in the topic".
const AllQuestions = 9999

// QuestionService handles question management and random sampling.
type QuestionService struct {
	pool         *pgxpool.Pool
	questionRepo *repository.QuestionRepository
	topicRepo    *repository.TopicRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService. The pool is used for
// transactions spanning the topic and question tables (bulk import).
func NewQuestionService(
	pool *pgxpool.Pool,
	questionRepo *repository.QuestionRepository,
	topicRepo *repository.TopicRepository,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		pool:         pool,
		questionRepo: questionRepo,
		topicRepo:    topicRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// validateCorrectOption enforces the invariant that the correct option
// letter references a non-empty option field.
func validateCorrectOption(q *model.Question) error {
	if q.Option(q.CorrectOption) == "" {
		return fmt.Errorf("%w: %s", ErrCorrectOptionEmpty, q.CorrectOption)
	}
	return nil
}

// Create inserts one question after invariant checks.
func (s *QuestionService) Create(ctx context.Context, q *model.Question) error {
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if err := validateCorrectOption(q); err != nil {
		return err
	}
	return s.questionRepo.Create(ctx, q)
}

// GetByID retrieves one question.
func (s *QuestionService) GetByID(ctx context.Context, id int) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List retrieves questions matching the filter plus the total match count.
func (s *QuestionService) List(ctx context.Context, f model.QuestionFilter) ([]model.Question, int, error) {
	return s.questionRepo.List(ctx, f)
}

// Update rewrites one question after invariant checks.
func (s *QuestionService) Update(ctx context.Context, q *model.Question) error {
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if err := validateCorrectOption(q); err != nil {
		return err
	}
	return s.questionRepo.Update(ctx, q)
}

// Delete removes one question.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	return s.questionRepo.Delete(ctx, id)
}

// RandomSample draws count random questions, optionally topic-filtered.
// count == AllQuestions means every question in scope. A bank with nothing
// in scope yields ErrNoQuestions; a bank with fewer questions than a
// concrete request yields ErrNotEnoughQuestions.
func (s *QuestionService) RandomSample(ctx context.Context, topicID *int, count int) ([]model.Question, error) {
	available, err := s.questionRepo.CountByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if available == 0 {
		return nil, ErrNoQuestions
	}

	if count >= AllQuestions {
		return s.questionRepo.RandomSample(ctx, topicID, 0)
	}
	if available < count {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrNotEnoughQuestions, available, count)
	}
	return s.questionRepo.RandomSample(ctx, topicID, count)
}

// BulkImport parses free-text question blocks and inserts the accepted
// questions in one transaction, resolving topics by name (created on first
// use). Returns the number of questions imported. Re-importing the same
// text creates duplicate rows; the format carries no identity to dedup on.
func (s *QuestionService) BulkImport(ctx context.Context, text string) (int, error) {
	parsed, err := quiz.ParseBulk(text)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	topicIDs := make(map[string]int)
	questions := make([]model.Question, 0, len(parsed))
	for _, p := range parsed {
		topicID, ok := topicIDs[p.Topic]
		if !ok {
			topicID, err = s.topicRepo.GetOrCreateByName(ctx, tx, p.Topic)
			if err != nil {
				return 0, fmt.Errorf("resolve topic %q: %w", p.Topic, err)
			}
			topicIDs[p.Topic] = topicID
		}

		tid := topicID
		questions = append(questions, model.Question{
			Text:          p.Text,
			TopicID:       &tid,
			Subtopic:      p.Subtopic,
			Difficulty:    p.Difficulty,
			OptionA:       p.OptionA,
			OptionB:       p.OptionB,
			OptionC:       p.OptionC,
			OptionD:       p.OptionD,
			CorrectOption: p.CorrectOption,
			Explanation:   p.Explanation,
		})
	}

	if err := s.questionRepo.CreateBatch(ctx, tx, questions); err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Int("imported", len(questions)).Int("topics", len(topicIDs)).Msg("Bulk import completed")
	return len(questions), nil
}
