package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/repository"
)

// snapshotVersion guards against restoring files written by an
// incompatible format.
const snapshotVersion = 1

// ErrSnapshotVersion is returned when restoring a file with an unknown
// format version.
var ErrSnapshotVersion = errors.New("unsupported backup format version")

// snapshot is the on-disk backup format: one JSON document holding every
// entity the platform owns. backup_files bookkeeping is deliberately not
// part of the snapshot so restores don't eat the backup catalog.
type snapshot struct {
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	Topics    []topicRow    `json:"topics"`
	Questions []questionRow `json:"questions"`
	Users     []userRow     `json:"users"`
	Sessions  []sessionRow  `json:"sessions"`
	Answers   []answerRow   `json:"session_questions"`
}

type topicRow struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type questionRow struct {
	ID            int       `json:"id"`
	Text          string    `json:"text"`
	TopicID       *int      `json:"topic_id"`
	Subtopic      string    `json:"subtopic"`
	Difficulty    string    `json:"difficulty"`
	ImagePath     *string   `json:"image_path"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type userRow struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Approved     bool      `json:"approved"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type sessionRow struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	TopicID        *int      `json:"topic_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          float64   `json:"score"`
	TimeSpent      int       `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at"`
}

type answerRow struct {
	ID             int     `json:"id"`
	SessionID      int     `json:"session_id"`
	QuestionID     int     `json:"question_id"`
	SelectedOption *string `json:"selected_option"`
	IsCorrect      bool    `json:"is_correct"`
	TimeSpent      int     `json:"time_spent"`
}

// BackupService creates, restores, and manages full-dataset snapshots.
// Restore is destructive: every entity table is truncated and reloaded
// inside one transaction.
type BackupService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	backupRepo *repository.BackupRepository
	log        zerolog.Logger
}

// NewBackupService creates a new BackupService.
func NewBackupService(cfg *config.Config, pool *pgxpool.Pool, backupRepo *repository.BackupRepository, log zerolog.Logger) *BackupService {
	return &BackupService{
		cfg:        cfg,
		pool:       pool,
		backupRepo: backupRepo,
		log:        log.With().Str("component", "backup_service").Logger(),
	}
}

// List returns all backup records, newest first.
func (s *BackupService) List(ctx context.Context) ([]model.BackupFile, error) {
	return s.backupRepo.GetAll(ctx)
}

// GetByID returns one backup record.
func (s *BackupService) GetByID(ctx context.Context, id int) (*model.BackupFile, error) {
	return s.backupRepo.GetByID(ctx, id)
}

// Create exports the full dataset to a new snapshot file and records it.
// A failed export is still recorded, with status "error", so the admin UI
// can show what went wrong and when.
func (s *BackupService) Create(ctx context.Context, isAutomatic bool) (*model.BackupFile, error) {
	record := &model.BackupFile{
		Filename:    fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("20060102-150405")),
		IsAutomatic: isAutomatic,
		Status:      model.BackupStatusSuccess,
	}

	size, err := s.export(ctx, record.Filename)
	if err != nil {
		record.Status = model.BackupStatusError
		if recErr := s.backupRepo.Create(ctx, record); recErr != nil {
			s.log.Error().Err(recErr).Msg("Failed to record failed backup")
		}
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	record.Size = size

	if err := s.backupRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}

	s.log.Info().
		Str("filename", record.Filename).
		Int64("size", record.Size).
		Bool("automatic", isAutomatic).
		Msg("Backup created")

	return record, nil
}

// Content returns the raw snapshot JSON of a backup.
func (s *BackupService) Content(ctx context.Context, id int) ([]byte, error) {
	record, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.cfg.BackupDir, record.Filename))
}

// Delete removes a backup file and its record. Typed-confirmation of the
// filename is enforced at the handler boundary.
func (s *BackupService) Delete(ctx context.Context, id int) error {
	record, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.cfg.BackupDir, record.Filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return s.backupRepo.Delete(ctx, id)
}

// Restore overwrites the entire dataset with a snapshot's contents in a
// single transaction: truncate everything, reload every row with its
// original ID, and realign the sequences.
func (s *BackupService) Restore(ctx context.Context, id int) error {
	record, err := s.backupRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(filepath.Join(s.cfg.BackupDir, record.Filename))
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`TRUNCATE session_questions, sessions, questions, topics, users RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	if err := s.load(ctx, tx, &snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	s.log.Warn().
		Str("filename", record.Filename).
		Int("topics", len(snap.Topics)).
		Int("questions", len(snap.Questions)).
		Int("users", len(snap.Users)).
		Int("sessions", len(snap.Sessions)).
		Msg("Dataset restored from backup")

	return nil
}

// PruneAutomatic deletes automatic backups beyond the keep newest.
func (s *BackupService) PruneAutomatic(ctx context.Context, keep int) error {
	stale, err := s.backupRepo.ListAutomaticOlderThanNewest(ctx, keep)
	if err != nil {
		return err
	}
	for _, b := range stale {
		if err := s.Delete(ctx, b.ID); err != nil {
			return fmt.Errorf("prune %s: %w", b.Filename, err)
		}
		s.log.Info().Str("filename", b.Filename).Msg("Pruned old automatic backup")
	}
	return nil
}

// Schedule describes the automatic backup job for the admin UI.
func (s *BackupService) Schedule(now time.Time) model.BackupSchedule {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.BackupHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return model.BackupSchedule{
		Enabled: true,
		Hour:    s.cfg.BackupHour,
		Keep:    s.cfg.BackupKeep,
		NextRun: next,
	}
}

func (s *BackupService) export(ctx context.Context, filename string) (int64, error) {
	snap := snapshot{Version: snapshotVersion, CreatedAt: time.Now().UTC()}

	if err := s.dump(ctx, &snap); err != nil {
		return 0, err
	}

	raw, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		return 0, fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(s.cfg.BackupDir, filename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}

	return int64(len(raw)), nil
}

func (s *BackupService) dump(ctx context.Context, snap *snapshot) error {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM topics ORDER BY id`)
	if err != nil {
		return err
	}
	snap.Topics, err = pgx.CollectRows(rows, pgx.RowToStructByPos[topicRow])
	if err != nil {
		return fmt.Errorf("dump topics: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, text, topic_id, subtopic, difficulty, image_path,
		        option_a, option_b, option_c, option_d, correct_option, explanation,
		        created_at, updated_at
		 FROM questions ORDER BY id`)
	if err != nil {
		return err
	}
	snap.Questions, err = pgx.CollectRows(rows, pgx.RowToStructByPos[questionRow])
	if err != nil {
		return fmt.Errorf("dump questions: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, username, full_name, email, password_hash, role, approved, active, created_at
		 FROM users ORDER BY id`)
	if err != nil {
		return err
	}
	snap.Users, err = pgx.CollectRows(rows, pgx.RowToStructByPos[userRow])
	if err != nil {
		return fmt.Errorf("dump users: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, user_id, topic_id, total_questions, correct_answers, score, time_spent, completed_at
		 FROM sessions ORDER BY id`)
	if err != nil {
		return err
	}
	snap.Sessions, err = pgx.CollectRows(rows, pgx.RowToStructByPos[sessionRow])
	if err != nil {
		return fmt.Errorf("dump sessions: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, session_id, question_id, selected_option, is_correct, time_spent
		 FROM session_questions ORDER BY id`)
	if err != nil {
		return err
	}
	snap.Answers, err = pgx.CollectRows(rows, pgx.RowToStructByPos[answerRow])
	if err != nil {
		return fmt.Errorf("dump session questions: %w", err)
	}

	return nil
}

func (s *BackupService) load(ctx context.Context, tx pgx.Tx, snap *snapshot) error {
	for _, t := range snap.Topics {
		if _, err := tx.Exec(ctx,
			`INSERT INTO topics (id, name, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("load topic %d: %w", t.ID, err)
		}
	}
	for _, u := range snap.Users {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, full_name, email, password_hash, role, approved, active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.Username, u.FullName, u.Email, u.PasswordHash, u.Role, u.Approved, u.Active, u.CreatedAt); err != nil {
			return fmt.Errorf("load user %d: %w", u.ID, err)
		}
	}
	for _, q := range snap.Questions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (id, text, topic_id, subtopic, difficulty, image_path,
			   option_a, option_b, option_c, option_d, correct_option, explanation, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			q.ID, q.Text, q.TopicID, q.Subtopic, q.Difficulty, q.ImagePath,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Explanation,
			q.CreatedAt, q.UpdatedAt); err != nil {
			return fmt.Errorf("load question %d: %w", q.ID, err)
		}
	}
	for _, sess := range snap.Sessions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sessions (id, user_id, topic_id, total_questions, correct_answers, score, time_spent, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sess.ID, sess.UserID, sess.TopicID, sess.TotalQuestions, sess.CorrectAnswers,
			sess.Score, sess.TimeSpent, sess.CompletedAt); err != nil {
			return fmt.Errorf("load session %d: %w", sess.ID, err)
		}
	}
	for _, a := range snap.Answers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_questions (id, session_id, question_id, selected_option, is_correct, time_spent)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.SessionID, a.QuestionID, a.SelectedOption, a.IsCorrect, a.TimeSpent); err != nil {
			return fmt.Errorf("load session question %d: %w", a.ID, err)
		}
	}

	// Realign sequences after explicit-ID inserts.
	for _, seq := range []string{"topics", "users", "questions", "sessions", "session_questions"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			seq, seq)); err != nil {
			return fmt.Errorf("reset %s sequence: %w", seq, err)
		}
	}

	return nil
}
