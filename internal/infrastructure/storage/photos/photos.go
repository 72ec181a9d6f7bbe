package photos

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/kirillkom/gemini-drive/internal/core/ports"
)

// Store keeps profile photos in the same object storage as file content,
// under a separate prefix. Each upload gets a fresh locator so stale CDN
// caches never serve an old photo.
type Store struct {
	objects ports.ObjectStorage
}

func New(objects ports.ObjectStorage) *Store {
	return &Store{objects: objects}
}

func (s *Store) Put(ctx context.Context, userID string, data io.Reader) (string, error) {
	locator := path.Join("profiles", userID, uuid.NewString())
	if err := s.objects.Save(ctx, locator, data); err != nil {
		return "", fmt.Errorf("save profile photo: %w", err)
	}
	return locator, nil
}

func (s *Store) Delete(ctx context.Context, locator string) error {
	if locator == "" {
		return nil
	}
	return s.objects.Delete(ctx, locator)
}
