package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
)

type UploadFileUseCase struct {
	sessions  *Sessions
	repo      ports.FileRepository
	storage   ports.ObjectStorage
	nowMillis func() int64
}

func NewUploadFileUseCase(
	sessions *Sessions,
	repo ports.FileRepository,
	storage ports.ObjectStorage,
) *UploadFileUseCase {
	return &UploadFileUseCase{
		sessions:  sessions,
		repo:      repo,
		storage:   storage,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// Upload stores the content, creates the durable metadata record and only
// then admits the record into the in-memory collection. Any failure along
// the way leaves the collection exactly as before; a half-written object is
// released again.
func (uc *UploadFileUseCase) Upload(
	ctx context.Context,
	userID string,
	upload domain.Upload,
	body io.Reader,
) (domain.FileRecord, error) {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return domain.FileRecord{}, err
	}

	name := strings.TrimSpace(upload.Name)
	if name == "" {
		name = strings.TrimSpace(upload.Filename)
	}

	id := uuid.NewString()
	now := uc.nowMillis()
	record := domain.FileRecord{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Kind:        domain.KindFromMIME(upload.MimeType),
		MimeType:    upload.MimeType,
		SizeBytes:   upload.SizeBytes,
		StoragePath: fmt.Sprintf("%s/%s_%s", userID, id, sanitizeFilename(upload.Filename)),
		Notes:       upload.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.ValidateNew(); err != nil {
		return domain.FileRecord{}, err
	}

	if err := uc.storage.Save(ctx, record.StoragePath, body); err != nil {
		return domain.FileRecord{}, domain.WrapError(domain.ErrCollaborator, "save content", err)
	}

	if err := uc.repo.Create(ctx, &record); err != nil {
		if delErr := uc.storage.Delete(ctx, record.StoragePath); delErr != nil {
			slog.Warn("orphaned upload content", "storage_path", record.StoragePath, "error", delErr)
		}
		return domain.FileRecord{}, domain.WrapError(domain.ErrCollaborator, "create file metadata", err)
	}

	added, err := st.Add(record)
	if err != nil {
		// A live-feed snapshot delivered between the durable insert and
		// this add already carries the new row. The upload committed;
		// return the collection's copy.
		if existing, getErr := st.Get(record.ID); getErr == nil {
			return existing, nil
		}
		return domain.FileRecord{}, err
	}
	return added, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "file.bin"
	}
	return base
}
