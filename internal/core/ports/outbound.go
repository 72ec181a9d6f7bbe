package ports

import (
	"context"
	"io"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

// FileRepository is the durable metadata collaborator. Every mutation is
// keyed by (user, id), never by position.
type FileRepository interface {
	Create(ctx context.Context, record *domain.FileRecord) error
	Update(ctx context.Context, userID, id string, patch domain.FilePatch, updatedAt int64) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*domain.FileRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.FileRecord, error)
	// Subscribe pushes authoritative collection snapshots until ctx is done.
	// Each snapshot replaces the in-memory view wholesale.
	Subscribe(ctx context.Context, userID string, onChange func([]domain.FileRecord)) (func(), error)
}

// ObjectStorage stores the uploaded bytes. Delete tolerates a missing
// object and treats it as success.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// FileAnalyzer is the AI collaborator. Both calls may fail for network,
// quota or credential reasons; failure never mutates any state.
type FileAnalyzer interface {
	Analyze(ctx context.Context, data []byte, mimeType, prompt string) (string, error)
	SuggestName(ctx context.Context, data []byte, mimeType string) (string, error)
}

// MessageQueue carries asynchronous analysis jobs between api and worker.
type MessageQueue interface {
	PublishAnalyzeFile(ctx context.Context, job domain.AnalysisJob) error
	SubscribeAnalyzeFile(ctx context.Context, handler func(context.Context, domain.AnalysisJob) error) error
}

// ProfileStore persists the user profile.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.UserProfile, error)
}

// ProfilePhotoStore keeps profile photos. Deleting an unknown locator is
// treated as success.
type ProfilePhotoStore interface {
	Put(ctx context.Context, userID string, data io.Reader) (string, error)
	Delete(ctx context.Context, locator string) error
}
