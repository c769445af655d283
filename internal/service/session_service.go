package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/quiz"
	"github.com/quizdrill/backend/internal/repository"
)

// ErrNotSessionOwner is returned when a student reads another student's
// session. Admins may read any session.
var ErrNotSessionOwner = errors.New("session belongs to another user")

// SessionService persists completed quiz attempts and serves results.
type SessionService struct {
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// Submit scores and persists a completed quiz. The questions are reloaded
// by ID and re-scored server-side; client-reported correctness is never
// trusted. The session row and all per-question rows land in a single
// transaction.
func (s *SessionService) Submit(ctx context.Context, userID int, req *model.SubmitSessionRequest) (*model.Session, error) {
	ids := make([]int, len(req.Answers))
	for i, a := range req.Answers {
		ids[i] = a.QuestionID
	}

	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	answers := make([]quiz.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = quiz.Answer{SelectedOption: a.SelectedOption, TimeSpent: a.TimeSpent}
	}

	result, err := quiz.Score(questions, answers)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:         userID,
		TopicID:        req.TopicID,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		Score:          result.Score,
		TimeSpent:      result.TimeSpent,
	}

	sessionQuestions := make([]model.SessionQuestion, len(result.Questions))
	for i, qr := range result.Questions {
		sessionQuestions[i] = model.SessionQuestion{
			QuestionID:     qr.QuestionID,
			SelectedOption: qr.SelectedOption,
			IsCorrect:      qr.IsCorrect,
			TimeSpent:      qr.TimeSpent,
		}
	}

	if err := s.sessionRepo.CreateWithQuestions(ctx, session, sessionQuestions); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.log.Info().
		Int("session_id", session.ID).
		Int("user_id", userID).
		Float64("score", session.Score).
		Msg("Session recorded")

	return session, nil
}

// ListByUser retrieves a user's sessions, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID int) ([]model.Session, error) {
	return s.sessionRepo.ListByUser(ctx, userID)
}

// GetDetail retrieves a session with its per-question breakdown. Students
// may only read their own sessions.
func (s *SessionService) GetDetail(ctx context.Context, sessionID, requesterID int, requesterRole model.Role) (*model.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if requesterRole != model.RoleAdmin && session.UserID != requesterID {
		return nil, ErrNotSessionOwner
	}

	questions, err := s.sessionRepo.GetQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session questions: %w", err)
	}

	return &model.SessionDetail{Session: *session, Questions: questions}, nil
}
