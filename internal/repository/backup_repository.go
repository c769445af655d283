package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdrill/backend/internal/model"
)

// BackupRepository handles backup_files metadata. The snapshot payloads
// themselves live on disk; only their bookkeeping is in the database.
type BackupRepository struct {
	pool *pgxpool.Pool
}

// NewBackupRepository creates a new BackupRepository.
func NewBackupRepository(pool *pgxpool.Pool) *BackupRepository {
	return &BackupRepository{pool: pool}
}

// Create records a backup file.
func (r *BackupRepository) Create(ctx context.Context, b *model.BackupFile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO backup_files (filename, size, is_automatic, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		b.Filename, b.Size, b.IsAutomatic, b.Status,
	).Scan(&b.ID, &b.CreatedAt)
}

// GetByID retrieves one backup record.
func (r *BackupRepository) GetByID(ctx context.Context, id int) (*model.BackupFile, error) {
	var b model.BackupFile
	err := r.pool.QueryRow(ctx,
		`SELECT id, filename, size, is_automatic, status, created_at
		 FROM backup_files WHERE id = $1`, id).
		Scan(&b.ID, &b.Filename, &b.Size, &b.IsAutomatic, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetAll lists backup records, newest first.
func (r *BackupRepository) GetAll(ctx context.Context) ([]model.BackupFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, filename, size, is_automatic, status, created_at
		 FROM backup_files ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []model.BackupFile
	for rows.Next() {
		var b model.BackupFile
		if err := rows.Scan(&b.ID, &b.Filename, &b.Size, &b.IsAutomatic, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// ListAutomaticOlderThanNewest returns automatic backups beyond the keep
// newest, oldest first. Used by the pruning pass of the backup worker.
func (r *BackupRepository) ListAutomaticOlderThanNewest(ctx context.Context, keep int) ([]model.BackupFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, filename, size, is_automatic, status, created_at
		 FROM backup_files
		 WHERE is_automatic = TRUE
		 ORDER BY created_at DESC
		 OFFSET $1`, keep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []model.BackupFile
	for rows.Next() {
		var b model.BackupFile
		if err := rows.Scan(&b.ID, &b.Filename, &b.Size, &b.IsAutomatic, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// Delete removes a backup record.
func (r *BackupRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM backup_files WHERE id = $1`, id)
	return err
}
