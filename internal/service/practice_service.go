package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/practice"
)

// Practice attempt errors.
var (
	ErrNotAttemptOwner = errors.New("attempt belongs to another user")
	ErrTimedConfig     = errors.New("timed attempts require seconds per question")
	ErrAnswerIndex     = errors.New("answer index out of range")
)

// PracticeService orchestrates the practice-session lifecycle: sampling a
// question set, autosaving answers while the student navigates, and turning
// the attempt into a persisted session on submit or expiry.
type PracticeService struct {
	store           *practice.Store
	questionService *QuestionService
	sessionService  *SessionService
	log             zerolog.Logger
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(
	store *practice.Store,
	questionService *QuestionService,
	sessionService *SessionService,
	log zerolog.Logger,
) *PracticeService {
	return &PracticeService{
		store:           store,
		questionService: questionService,
		sessionService:  sessionService,
		log:             log.With().Str("component", "practice_service").Logger(),
	}
}

// Start samples a random question set and opens a new attempt. For timed
// attempts the total budget is seconds-per-question times the number of
// questions actually drawn.
func (s *PracticeService) Start(ctx context.Context, userID int, req *model.StartAttemptRequest) (*model.AttemptView, error) {
	if req.Timed && req.SecondsPerQuestion == 0 {
		return nil, ErrTimedConfig
	}

	questions, err := s.questionService.RandomSample(ctx, req.TopicID, req.QuestionCount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &practice.Attempt{
		ID:        uuid.New().String(),
		UserID:    userID,
		TopicID:   req.TopicID,
		Timed:     req.Timed,
		StartedAt: now,
	}
	attempt.QuestionIDs = make([]int, len(questions))
	for i, q := range questions {
		attempt.QuestionIDs[i] = q.ID
	}
	if req.Timed {
		attempt.SecondsPerQuestion = req.SecondsPerQuestion
		attempt.TotalSeconds = req.SecondsPerQuestion * len(questions)
		attempt.Deadline = now.Add(time.Duration(attempt.TotalSeconds) * time.Second)
	}

	if err := s.store.Put(ctx, attempt); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("attempt_id", attempt.ID).
		Int("user_id", userID).
		Int("questions", len(questions)).
		Bool("timed", req.Timed).
		Msg("Practice attempt started")

	return buildView(attempt, questions, nil, now), nil
}

// Get loads the owner's view of an in-flight attempt, autosaves included.
// Used to resume after a page reload.
func (s *PracticeService) Get(ctx context.Context, userID int, attemptID string) (*model.AttemptView, error) {
	attempt, err := s.ownedAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionService.questionRepo.GetByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	answers, err := s.store.Answers(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	return buildView(attempt, questions, answers, time.Now()), nil
}

// Active returns the user's in-flight attempt ID, if any.
func (s *PracticeService) Active(ctx context.Context, userID int) (string, bool, error) {
	return s.store.ActiveAttemptID(ctx, userID)
}

// SaveAnswer autosaves one answer slot. Selections may be overwritten and
// slots answered in any order; only the index must be in range.
func (s *PracticeService) SaveAnswer(ctx context.Context, userID int, attemptID string, req *model.SaveAnswerRequest) error {
	attempt, err := s.ownedAttempt(ctx, userID, attemptID)
	if err != nil {
		return err
	}
	if req.Index >= len(attempt.QuestionIDs) {
		return ErrAnswerIndex
	}

	return s.store.SaveAnswer(ctx, attemptID, req.Index, practice.SavedAnswer{
		SelectedOption: req.SelectedOption,
		TimeSpent:      req.TimeSpent,
	})
}

// Submit finalizes an attempt on the student's request. Consuming the
// attempt is atomic, so a manual submit racing a forced expiry produces
// exactly one session.
func (s *PracticeService) Submit(ctx context.Context, userID int, attemptID string) (*model.Session, error) {
	if _, err := s.ownedAttempt(ctx, userID, attemptID); err != nil {
		return nil, err
	}
	return s.finalize(ctx, attemptID)
}

// ForceSubmit finalizes an expired timed attempt, scoring unanswered slots
// as incorrect. Called by the expiry worker; ownership is not rechecked.
func (s *PracticeService) ForceSubmit(ctx context.Context, attemptID string) (*model.Session, error) {
	return s.finalize(ctx, attemptID)
}

// Remaining reports an attempt's remaining seconds for the countdown stream.
func (s *PracticeService) Remaining(ctx context.Context, userID int, attemptID string) (int, error) {
	attempt, err := s.ownedAttempt(ctx, userID, attemptID)
	if err != nil {
		return 0, err
	}
	return attempt.RemainingSeconds(time.Now()), nil
}

// ExpiredAttemptIDs lists timed attempts whose deadline has passed.
func (s *PracticeService) ExpiredAttemptIDs(ctx context.Context, now time.Time) ([]string, error) {
	return s.store.ExpiredIDs(ctx, now)
}

// DropAttempt removes a stale deadline entry whose state has evaporated.
func (s *PracticeService) DropAttempt(ctx context.Context, attemptID string) error {
	return s.store.Drop(ctx, attemptID)
}

func (s *PracticeService) ownedAttempt(ctx context.Context, userID int, attemptID string) (*practice.Attempt, error) {
	attempt, err := s.store.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	return attempt, nil
}

func (s *PracticeService) finalize(ctx context.Context, attemptID string) (*model.Session, error) {
	attempt, saved, err := s.store.Take(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	req := &model.SubmitSessionRequest{
		TopicID: attempt.TopicID,
		Answers: make([]model.SubmitAnswer, len(attempt.QuestionIDs)),
	}
	for i, qid := range attempt.QuestionIDs {
		answer := model.SubmitAnswer{QuestionID: qid}
		if sa, ok := saved[i]; ok {
			answer.SelectedOption = sa.SelectedOption
			answer.TimeSpent = sa.TimeSpent
		}
		req.Answers[i] = answer
	}

	session, err := s.sessionService.Submit(ctx, attempt.UserID, req)
	if err != nil {
		// Take already consumed the attempt; put it back so a failed
		// persist (DB outage, question deleted mid-attempt) leaves the
		// attempt retryable instead of lost.
		if restoreErr := s.store.Restore(ctx, attempt, saved); restoreErr != nil {
			s.log.Error().Err(restoreErr).Str("attempt_id", attemptID).Msg("Failed to restore attempt after persist failure")
		}
		return nil, err
	}
	return session, nil
}

func buildView(a *practice.Attempt, questions []model.Question, saved map[int]practice.SavedAnswer, now time.Time) *model.AttemptView {
	view := &model.AttemptView{
		ID:               a.ID,
		TopicID:          a.TopicID,
		Timed:            a.Timed,
		TotalSeconds:     a.TotalSeconds,
		RemainingSeconds: a.RemainingSeconds(now),
		StartedAt:        a.StartedAt,
		Questions:        make([]model.StudentQuestion, len(questions)),
		Answers:          make(map[int]*string, len(saved)),
	}
	for i := range questions {
		view.Questions[i] = questions[i].StudentView()
	}
	for idx, sa := range saved {
		view.Answers[idx] = sa.SelectedOption
	}
	return view
}
