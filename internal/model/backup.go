package model

import "time"

// BackupStatus enumerates backup outcomes.
type BackupStatus string

const (
	BackupStatusSuccess BackupStatus = "success"
	BackupStatusError   BackupStatus = "error"
)

// BackupFile is the record of one point-in-time export of the dataset.
type BackupFile struct {
	ID          int          `json:"id"`
	Filename    string       `json:"filename"`
	Size        int64        `json:"size"`
	IsAutomatic bool         `json:"is_automatic"`
	Status      BackupStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// BackupConfirmRequest carries the typed-confirmation filename required for
// destructive backup operations (restore, delete).
type BackupConfirmRequest struct {
	ConfirmFilename string `json:"confirm_filename" binding:"required"`
}

// BackupSchedule describes the automatic backup job.
type BackupSchedule struct {
	Enabled bool      `json:"enabled"`
	Hour    int       `json:"hour"`
	Keep    int       `json:"keep"`
	NextRun time.Time `json:"next_run"`
}
