package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	photo_ref TEXT NOT NULL DEFAULT ''
);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute profile schema ddl: %w", err)
	}
	return nil
}

// Get returns an empty profile for a user without a row yet; the identity
// provider fills the fields lazily on first update.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, display_name, photo_ref
FROM profiles
WHERE id = $1
`, userID)

	var profile domain.UserProfile
	err := row.Scan(&profile.ID, &profile.Email, &profile.DisplayName, &profile.PhotoRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.UserProfile{ID: userID}, nil
		}
		return nil, domain.WrapError(domain.ErrCollaborator, "scan profile", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.DisplayName != nil {
		current.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.PhotoRef != nil {
		current.PhotoRef = *patch.PhotoRef
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO profiles (id, email, display_name, photo_ref)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email, display_name = EXCLUDED.display_name, photo_ref = EXCLUDED.photo_ref
`, userID, current.Email, current.DisplayName, current.PhotoRef)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "upsert profile", err)
	}
	return current, nil
}
