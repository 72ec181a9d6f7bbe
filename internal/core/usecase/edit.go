package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
)

type EditFileUseCase struct {
	sessions  *Sessions
	repo      ports.FileRepository
	storage   ports.ObjectStorage
	nowMillis func() int64
}

func NewEditFileUseCase(
	sessions *Sessions,
	repo ports.FileRepository,
	storage ports.ObjectStorage,
) *EditFileUseCase {
	return &EditFileUseCase{
		sessions:  sessions,
		repo:      repo,
		storage:   storage,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// Update applies a rename / notes edit / summary reset. The durable write
// happens first; the in-memory record only changes after it succeeds, so a
// failed update changes zero fields.
func (uc *EditFileUseCase) Update(
	ctx context.Context,
	userID, id string,
	patch domain.FilePatch,
) (domain.FileRecord, error) {
	if patch.Empty() {
		return domain.FileRecord{}, domain.WrapError(domain.ErrInvalidInput, "update file", errEmptyPatch)
	}

	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return domain.FileRecord{}, err
	}
	if _, err := st.Get(id); err != nil {
		return domain.FileRecord{}, err
	}

	now := uc.nowMillis()
	if err := uc.repo.Update(ctx, userID, id, patch, now); err != nil {
		if domain.IsKind(err, domain.ErrFileNotFound) {
			return domain.FileRecord{}, err
		}
		return domain.FileRecord{}, domain.WrapError(domain.ErrCollaborator, "persist file update", err)
	}

	// The same stamp goes to the durable row and the collection so the
	// two views of the record never disagree about UpdatedAt.
	return st.Update(id, patch, now)
}

// Delete removes the record and asks storage to release the content. The
// content release is a side-effect request: its failure is logged, not
// surfaced, because the metadata delete already committed.
func (uc *EditFileUseCase) Delete(ctx context.Context, userID, id string) error {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	record, err := st.Get(id)
	if err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, userID, id); err != nil {
		if domain.IsKind(err, domain.ErrFileNotFound) {
			return err
		}
		return domain.WrapError(domain.ErrCollaborator, "delete file metadata", err)
	}

	if _, err := st.Remove(id); err != nil {
		return err
	}

	if err := uc.storage.Delete(ctx, record.StoragePath); err != nil {
		slog.Warn("release content failed", "file_id", id, "storage_path", record.StoragePath, "error", err)
	}
	return nil
}

var errEmptyPatch = errors.New("patch carries no fields")
