package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/service"
)

// BackupWorker runs the daily automatic backup at the configured hour and
// prunes automatic backups beyond the retention count. A failed run is
// logged and recorded; the worker itself never stops until shutdown.
type BackupWorker struct {
	cfg           *config.Config
	backupService *service.BackupService
	log           zerolog.Logger
}

// NewBackupWorker creates a new BackupWorker.
func NewBackupWorker(cfg *config.Config, backupService *service.BackupService, log zerolog.Logger) *BackupWorker {
	return &BackupWorker{
		cfg:           cfg,
		backupService: backupService,
		log:           log.With().Str("component", "backup_worker").Logger(),
	}
}

// Start begins the scheduling loop. Call in a goroutine.
func (w *BackupWorker) Start(ctx context.Context) {
	w.log.Info().Int("hour", w.cfg.BackupHour).Msg("Worker started")

	for {
		next := w.nextRun(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("Worker stopped")
			return
		case <-timer.C:
			w.run(ctx)
		}
	}
}

func (w *BackupWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.cfg.BackupHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func (w *BackupWorker) run(ctx context.Context) {
	backup, err := w.backupService.Create(ctx, true)
	if err != nil {
		w.log.Error().Err(err).Msg("Automatic backup failed")
		return
	}

	w.log.Info().
		Str("filename", backup.Filename).
		Int64("size", backup.Size).
		Msg("Automatic backup completed")

	if err := w.backupService.PruneAutomatic(ctx, w.cfg.BackupKeep); err != nil {
		w.log.Error().Err(err).Msg("Backup pruning failed")
	}
}
