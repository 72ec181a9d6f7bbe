package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

func TestUploadCreatesRecord(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, storage)

	record, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "meeting notes.txt",
		Notes:     "weekly sync",
		MimeType:  "text/plain",
		SizeBytes: 11,
	}, strings.NewReader("hello notes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if record.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if record.Name != "meeting notes.txt" {
		t.Fatalf("empty display name must fall back to the filename, got %q", record.Name)
	}
	if record.Kind != domain.KindText {
		t.Fatalf("expected TEXT kind, got %s", record.Kind)
	}
	if record.Analyzed() {
		t.Fatalf("new upload must start unanalyzed")
	}

	st, err := sessions.ForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	if len(st.List()) != 1 {
		t.Fatalf("record missing from in-memory collection")
	}
	if _, ok := storage.objects[record.StoragePath]; !ok {
		t.Fatalf("content missing from object storage")
	}
}

func TestUploadPrefersExplicitName(t *testing.T) {
	repo := newRepoFake()
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, newStorageFake())

	record, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "IMG_2041.png",
		Name:      "Team offsite photo",
		MimeType:  "image/png",
		SizeBytes: 5,
	}, strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if record.Name != "Team offsite photo" {
		t.Fatalf("explicit name ignored, got %q", record.Name)
	}
}

func TestUploadRejectsMissingMimeType(t *testing.T) {
	repo := newRepoFake()
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, newStorageFake())

	_, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "blob",
		SizeBytes: 1,
	}, strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRepoFailureLeavesNoPartialRecord(t *testing.T) {
	repo := newRepoFake()
	repo.createErr = errors.New("db down")
	storage := newStorageFake()
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, storage)

	_, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "doc.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4,
	}, strings.NewReader("data"))
	if !domain.IsKind(err, domain.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}

	st, err := sessions.ForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	if len(st.List()) != 0 {
		t.Fatalf("failed upload must not appear in the collection")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("orphaned content must be released after a failed create")
	}
}

func TestUploadStorageFailureAddsNothing(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	storage.saveErr = errors.New("bucket unreachable")
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, storage)

	_, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "doc.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4,
	}, strings.NewReader("data"))
	if !domain.IsKind(err, domain.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("metadata row must not exist after storage failure")
	}
}

func TestUploadSucceedsWhenFeedDeliversRowFirst(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	sessions := NewSessions(repo)
	if _, err := sessions.ForUser(context.Background(), "u1"); err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	// A feed snapshot lands right after the insert, so the collection
	// already holds the row when the upload tries to add it.
	repo.afterCreate = func() { repo.pushSnapshot("u1") }

	uc := NewUploadFileUseCase(sessions, repo, storage)
	record, err := uc.Upload(context.Background(), "u1", domain.Upload{
		Filename:  "doc.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4,
	}, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("committed upload must not fail on an already-delivered row: %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected the committed record back")
	}

	st, _ := sessions.ForUser(context.Background(), "u1")
	if len(st.List()) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(st.List()))
	}
}

func TestUploadRequiresSession(t *testing.T) {
	repo := newRepoFake()
	sessions := NewSessions(repo)
	uc := NewUploadFileUseCase(sessions, repo, newStorageFake())

	_, err := uc.Upload(context.Background(), "", domain.Upload{
		Filename:  "doc.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4,
	}, strings.NewReader("data"))
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"simple.txt":        "simple.txt",
		"with space.pdf":    "with_space.pdf",
		"../escape.txt":     "escape.txt",
		"résumé.docx":       "r_sum_.docx",
		"":                  "file.bin",
		"weird/..":          "file.bin",
	}
	for input, want := range cases {
		if got := sanitizeFilename(input); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
