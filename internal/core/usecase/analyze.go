package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
)

// DefaultAnalysisPrompt is used when the caller does not supply one.
const DefaultAnalysisPrompt = "Analyze this file and provide a short, helpful summary or description."

type AnalyzeFileUseCase struct {
	sessions  *Sessions
	repo      ports.FileRepository
	storage   ports.ObjectStorage
	analyzer  ports.FileAnalyzer
	queue     ports.MessageQueue
	nowMillis func() int64
}

func NewAnalyzeFileUseCase(
	sessions *Sessions,
	repo ports.FileRepository,
	storage ports.ObjectStorage,
	analyzer ports.FileAnalyzer,
	queue ports.MessageQueue,
) *AnalyzeFileUseCase {
	return &AnalyzeFileUseCase{
		sessions:  sessions,
		repo:      repo,
		storage:   storage,
		analyzer:  analyzer,
		queue:     queue,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// RequestAnalysis validates the target and hands the job to the worker
// queue. The record stays unanalyzed until the job resolves.
func (uc *AnalyzeFileUseCase) RequestAnalysis(ctx context.Context, job domain.AnalysisJob) error {
	st, err := uc.sessions.ForUser(ctx, job.UserID)
	if err != nil {
		return err
	}
	if _, err := st.Get(job.FileID); err != nil {
		return err
	}

	if err := uc.queue.PublishAnalyzeFile(ctx, job); err != nil {
		return domain.WrapError(domain.ErrCollaborator, "enqueue analysis", err)
	}
	return nil
}

// AnalyzeByID runs the AI call and applies the summary strictly by id. A
// record deleted while the call was in flight makes the resolution a benign
// no-op: the result is discarded, nothing is re-inserted, no error surfaces.
func (uc *AnalyzeFileUseCase) AnalyzeByID(ctx context.Context, job domain.AnalysisJob) error {
	st, err := uc.sessions.ForUser(ctx, job.UserID)
	if err != nil {
		return err
	}
	record, err := st.Get(job.FileID)
	if err != nil {
		if !domain.IsKind(err, domain.ErrFileNotFound) {
			return err
		}
		// The in-memory collection can lag the durable rows by one feed
		// cycle; only the repository decides the target is actually gone.
		fresh, repoErr := uc.repo.GetByID(ctx, job.UserID, job.FileID)
		if repoErr != nil {
			if domain.IsKind(repoErr, domain.ErrFileNotFound) {
				slog.Info("analysis target gone before start", "file_id", job.FileID)
				return nil
			}
			return domain.WrapError(domain.ErrCollaborator, "resolve analysis target", repoErr)
		}
		record = *fresh
		if added, addErr := st.Add(record); addErr == nil {
			record = added
		}
	}

	data, err := uc.readContent(ctx, record.StoragePath)
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(job.Prompt)
	if prompt == "" {
		prompt = DefaultAnalysisPrompt
	}

	summary, err := uc.analyzer.Analyze(ctx, data, record.MimeType, prompt)
	if err != nil {
		// The record keeps its empty summary; nothing was mutated.
		return domain.WrapError(domain.ErrCollaborator, "analyze file", err)
	}

	patch := domain.FilePatch{AISummary: &summary}
	now := uc.nowMillis()
	if err := uc.repo.Update(ctx, job.UserID, job.FileID, patch, now); err != nil {
		if domain.IsKind(err, domain.ErrFileNotFound) {
			slog.Info("discarding analysis for deleted file", "file_id", job.FileID)
			return nil
		}
		return domain.WrapError(domain.ErrCollaborator, "persist summary", err)
	}
	if _, err := st.Update(job.FileID, patch, now); err != nil {
		if domain.IsKind(err, domain.ErrFileNotFound) {
			slog.Info("discarding analysis for deleted file", "file_id", job.FileID)
			return nil
		}
		return err
	}
	return nil
}

// SuggestName asks the AI collaborator for a short display name based on
// the content. Purely advisory; the record is not touched.
func (uc *AnalyzeFileUseCase) SuggestName(ctx context.Context, userID, id string) (string, error) {
	st, err := uc.sessions.ForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	record, err := st.Get(id)
	if err != nil {
		return "", err
	}

	data, err := uc.readContent(ctx, record.StoragePath)
	if err != nil {
		return "", err
	}

	name, err := uc.analyzer.SuggestName(ctx, data, record.MimeType)
	if err != nil {
		return "", domain.WrapError(domain.ErrCollaborator, "suggest name", err)
	}
	return strings.TrimSpace(name), nil
}

func (uc *AnalyzeFileUseCase) readContent(ctx context.Context, storagePath string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, storagePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "open content", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "read content", err)
	}
	return data, nil
}
