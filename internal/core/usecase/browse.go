package usecase

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
	"github.com/kirillkom/gemini-drive/internal/core/query"
)

type BrowseUseCase struct {
	sessions   *Sessions
	storage    ports.ObjectStorage
	totalBytes int64
	now        func() time.Time
}

func NewBrowseUseCase(sessions *Sessions, storage ports.ObjectStorage, totalBytes int64) *BrowseUseCase {
	return &BrowseUseCase{
		sessions:   sessions,
		storage:    storage,
		totalBytes: totalBytes,
		now:        time.Now,
	}
}

// Browse projects the current collection through the query engine.
func (uc *BrowseUseCase) Browse(
	ctx context.Context,
	userID string,
	view domain.View,
	filter domain.FilterState,
) ([]domain.FileRecord, error) {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return query.Apply(st.List(), view, filter, uc.now()), nil
}

func (uc *BrowseUseCase) Get(ctx context.Context, userID, id string) (domain.FileRecord, error) {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return domain.FileRecord{}, err
	}
	return st.Get(id)
}

func (uc *BrowseUseCase) Usage(ctx context.Context, userID string) (domain.StorageUsage, error) {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return domain.StorageUsage{}, err
	}

	used := st.UsedBytes()
	usage := domain.StorageUsage{
		UsedBytes:  used,
		TotalBytes: uc.totalBytes,
	}
	if uc.totalBytes > 0 {
		percent := float64(used) / float64(uc.totalBytes) * 100
		if percent > 100 {
			percent = 100
		}
		usage.Percent = percent
	}
	return usage, nil
}

// OpenContent streams the stored bytes for download. Read-only; imposes no
// state change.
func (uc *BrowseUseCase) OpenContent(ctx context.Context, userID, id string) (domain.FileRecord, io.ReadCloser, error) {
	record, err := uc.Get(ctx, userID, id)
	if err != nil {
		return domain.FileRecord{}, nil, err
	}

	reader, err := uc.storage.Open(ctx, record.StoragePath)
	if err != nil {
		return domain.FileRecord{}, nil, domain.WrapError(domain.ErrCollaborator, "open content", err)
	}
	return record, reader, nil
}
