// Package worker holds the background loops that run alongside the HTTP
// server: deadline enforcement for timed attempts and scheduled backups.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/practice"
	"github.com/quizdrill/backend/internal/repository"
	"github.com/quizdrill/backend/internal/service"
)

// ExpiryWorker force-submits timed attempts whose deadline has passed. It
// is the backstop for clients that disconnect mid-quiz: the WebSocket
// stream normally submits on expiry, but only while the client is
// connected.
type ExpiryWorker struct {
	practiceService *service.PracticeService
	log             zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(practiceService *service.PracticeService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		practiceService: practiceService,
		log:             log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	ids, err := w.practiceService.ExpiredAttemptIDs(ctx, time.Now())
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Deadline scan failed")
		}
		return
	}

	for _, id := range ids {
		session, err := w.practiceService.ForceSubmit(ctx, id)
		if err != nil {
			// Already submitted by the client or its WebSocket stream;
			// drop the stale deadline entry.
			if errors.Is(err, practice.ErrAttemptNotFound) {
				if err := w.practiceService.DropAttempt(ctx, id); err != nil {
					w.log.Error().Err(err).Str("attempt_id", id).Msg("Deadline cleanup failed")
				}
				continue
			}
			// A deleted question makes the attempt unscoreable on every
			// retry; stop rescheduling it. Transient errors stay queued.
			if errors.Is(err, repository.ErrQuestionNotFound) {
				w.log.Warn().Err(err).Str("attempt_id", id).Msg("Attempt references deleted questions, dropping deadline")
				if err := w.practiceService.DropAttempt(ctx, id); err != nil {
					w.log.Error().Err(err).Str("attempt_id", id).Msg("Deadline cleanup failed")
				}
				continue
			}
			w.log.Error().Err(err).Str("attempt_id", id).Msg("Forced submit failed")
			continue
		}

		w.log.Info().
			Str("attempt_id", id).
			Int("session_id", session.ID).
			Float64("score", session.Score).
			Msg("Expired attempt force-submitted")
	}
}
