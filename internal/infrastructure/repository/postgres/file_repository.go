package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

type FileRepository struct {
	db *sql.DB

	// pollInterval paces the Subscribe feed. Overridable in tests.
	pollInterval time.Duration
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db, pollInterval: 5 * time.Second}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *FileRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	storage_path TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	ai_summary TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_user_id ON files(user_id);
CREATE INDEX IF NOT EXISTS idx_files_user_created_at ON files(user_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO files (
	id, user_id, name, kind, mime_type, size_bytes, storage_path, notes, ai_summary, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		record.ID, record.UserID, record.Name, string(record.Kind), record.MimeType,
		record.SizeBytes, record.StoragePath, record.Notes, record.AISummary,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrCollaborator, "insert file", err)
	}
	return nil
}

// Update applies only the fields present in patch. A blank new name keeps
// the current one.
func (r *FileRepository) Update(ctx context.Context, userID, id string, patch domain.FilePatch, updatedAt int64) error {
	sets := []string{"updated_at = $3"}
	args := []any{id, userID, updatedAt}

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			args = append(args, name)
			sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
		}
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if patch.AISummary != nil {
		args = append(args, *patch.AISummary)
		sets = append(sets, fmt.Sprintf("ai_summary = $%d", len(args)))
	}

	query := "UPDATE files SET " + strings.Join(sets, ", ") + " WHERE id = $1 AND user_id = $2"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrCollaborator, "update file", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrCollaborator, "update file rows affected", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrFileNotFound, "update file", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return domain.WrapError(domain.ErrCollaborator, "delete file", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrCollaborator, "delete file rows affected", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrFileNotFound, "delete file", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *FileRepository) ListByUser(ctx context.Context, userID string) ([]domain.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, kind, mime_type, size_bytes, storage_path, notes, ai_summary, created_at, updated_at
FROM files
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "list files", err)
	}
	defer rows.Close()

	var records []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		var kind string
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Name, &kind, &rec.MimeType, &rec.SizeBytes,
			&rec.StoragePath, &rec.Notes, &rec.AISummary, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, domain.WrapError(domain.ErrCollaborator, "scan file", err)
		}
		rec.Kind = domain.FileKind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "iterate files", err)
	}
	return records, nil
}

func (r *FileRepository) GetByID(ctx context.Context, userID, id string) (*domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, kind, mime_type, size_bytes, storage_path, notes, ai_summary, created_at, updated_at
FROM files
WHERE id = $1 AND user_id = $2
`, id, userID)

	var rec domain.FileRecord
	var kind string
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Name, &kind, &rec.MimeType, &rec.SizeBytes,
		&rec.StoragePath, &rec.Notes, &rec.AISummary, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get file", fmt.Errorf("id %s", id))
		}
		return nil, domain.WrapError(domain.ErrCollaborator, "scan file", err)
	}
	rec.Kind = domain.FileKind(kind)
	return &rec, nil
}

// Subscribe polls the table and pushes full snapshots. The feed stops when
// ctx is cancelled or the returned cancel func is called.
func (r *FileRepository) Subscribe(ctx context.Context, userID string, onChange func([]domain.FileRecord)) (func(), error) {
	feedCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		var lastStamp int64 = -1
		for {
			select {
			case <-feedCtx.Done():
				return
			case <-ticker.C:
			}

			records, err := r.ListByUser(feedCtx, userID)
			if err != nil {
				continue
			}
			stamp := latestUpdate(records)
			if stamp == lastStamp {
				continue
			}
			lastStamp = stamp
			onChange(records)
		}
	}()
	return cancel, nil
}

func latestUpdate(records []domain.FileRecord) int64 {
	var max int64
	for _, rec := range records {
		if rec.UpdatedAt > max {
			max = rec.UpdatedAt
		}
	}
	// Fold the count in so a deletion of the newest row still changes the stamp.
	return max + int64(len(records))
}
