package ports

import (
	"context"
	"io"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

// FileIngestor is the inbound contract for upload orchestration.
type FileIngestor interface {
	Upload(ctx context.Context, userID string, upload domain.Upload, body io.Reader) (domain.FileRecord, error)
}

// FileBrowser serves the filtered, ordered projection of the collection.
type FileBrowser interface {
	Browse(ctx context.Context, userID string, view domain.View, filter domain.FilterState) ([]domain.FileRecord, error)
	Get(ctx context.Context, userID, id string) (domain.FileRecord, error)
	Usage(ctx context.Context, userID string) (domain.StorageUsage, error)
	OpenContent(ctx context.Context, userID, id string) (domain.FileRecord, io.ReadCloser, error)
}

// FileEditor mutates the mutable record fields.
type FileEditor interface {
	Update(ctx context.Context, userID, id string, patch domain.FilePatch) (domain.FileRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

// FileAnalysisService runs or schedules AI analysis for a record.
type FileAnalysisService interface {
	AnalyzeByID(ctx context.Context, job domain.AnalysisJob) error
	RequestAnalysis(ctx context.Context, job domain.AnalysisJob) error
	SuggestName(ctx context.Context, userID, id string) (string, error)
}

// ProfileService reads and mutates the session user's profile.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.UserProfile, error)
}
