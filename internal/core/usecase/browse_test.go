package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

func TestUsageSumsUploadedSizes(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	sessions := NewSessions(repo)

	uploadUC := NewUploadFileUseCase(sessions, repo, storage)
	for _, size := range []int64{1200000, 5000, 78000} {
		_, err := uploadUC.Upload(context.Background(), "u1", domain.Upload{
			Filename:  "f.bin",
			MimeType:  "application/octet-stream",
			SizeBytes: size,
		}, io.LimitReader(zeroReader{}, size))
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
	}

	uc := NewBrowseUseCase(sessions, storage, 5<<30)
	usage, err := uc.Usage(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if usage.UsedBytes != 1283000 {
		t.Fatalf("UsedBytes = %d, want 1283000", usage.UsedBytes)
	}
	if usage.TotalBytes != 5<<30 {
		t.Fatalf("TotalBytes = %d, want %d", usage.TotalBytes, int64(5<<30))
	}
	if usage.Percent <= 0 || usage.Percent >= 1 {
		t.Fatalf("unexpected percent %f", usage.Percent)
	}
}

func TestBrowseRequiresSession(t *testing.T) {
	repo := newRepoFake()
	uc := NewBrowseUseCase(NewSessions(repo), newStorageFake(), 5<<30)

	_, err := uc.Browse(context.Background(), "", domain.ViewDrive, domain.NewFilterState())
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestBrowseHydratesFromRepository(t *testing.T) {
	repo := newRepoFake()
	repo.records[repo.key("u1", "f1")] = domain.FileRecord{
		ID:        "f1",
		UserID:    "u1",
		Name:      "seeded.pdf",
		Kind:      domain.KindPDF,
		MimeType:  "application/pdf",
		SizeBytes: 10,
		CreatedAt: 100,
		UpdatedAt: 100,
	}
	sessions := NewSessions(repo)

	uc := NewBrowseUseCase(sessions, newStorageFake(), 5<<30)
	got, err := uc.Browse(context.Background(), "u1", domain.ViewDrive, domain.NewFilterState())
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "f1" {
		t.Fatalf("expected seeded record, got %+v", got)
	}
	if len(repo.subscribed) != 1 || repo.subscribed[0] != "u1" {
		t.Fatalf("live feed not attached: %v", repo.subscribed)
	}
}

func TestOpenContentStreamsStoredBytes(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	sessions := NewSessions(repo)
	record := seedUpload(t, sessions, repo, storage, "u1")

	uc := NewBrowseUseCase(sessions, storage, 5<<30)
	got, reader, err := uc.OpenContent(context.Background(), "u1", record.ID)
	if err != nil {
		t.Fatalf("OpenContent() error = %v", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(raw) != "pdf bytes" {
		t.Fatalf("unexpected content %q", raw)
	}
	if got.ID != record.ID {
		t.Fatalf("wrong record returned")
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
