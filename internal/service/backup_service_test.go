package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quizdrill/backend/internal/config"
)

func TestBackupScheduleNextRun(t *testing.T) {
	cfg := &config.Config{BackupHour: 3, BackupKeep: 7}
	s := NewBackupService(cfg, nil, nil, zerolog.Nop())

	// Before the backup hour: runs today.
	now := time.Date(2026, 8, 30, 1, 30, 0, 0, time.UTC)
	sched := s.Schedule(now)
	assert.True(t, sched.Enabled)
	assert.Equal(t, 3, sched.Hour)
	assert.Equal(t, 7, sched.Keep)
	assert.Equal(t, time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC), sched.NextRun)

	// At or after the backup hour: runs tomorrow.
	now = time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC), s.Schedule(now).NextRun)

	now = time.Date(2026, 8, 30, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC), s.Schedule(now).NextRun)
}
