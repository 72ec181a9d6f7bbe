package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*FileRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewFileRepository(db), mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, name, kind").
		WithArgs("missing", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u1", "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	notes := "updated notes"
	mock.ExpectExec("UPDATE files").
		WithArgs("missing", "u1", int64(1700000000000), notes).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "u1", "missing", domain.FilePatch{Notes: &notes}, 1700000000000)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateSkipsBlankRename(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	// A whitespace-only new name must not reach the SET clause.
	blank := "   "
	mock.ExpectExec(`UPDATE files SET updated_at = \$3 WHERE`).
		WithArgs("f1", "u1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "u1", "f1", domain.FilePatch{Name: &blank}, 42); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM files").
		WithArgs("missing", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u1", "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByUserScansRecords(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "kind", "mime_type", "size_bytes",
		"storage_path", "notes", "ai_summary", "created_at", "updated_at",
	}).AddRow(
		"f1", "u1", "report.pdf", "PDF", "application/pdf", int64(9),
		"u1/f1_report.pdf", "", "a summary", int64(100), int64(200),
	)
	mock.ExpectQuery("SELECT id, user_id, name, kind").
		WithArgs("u1").
		WillReturnRows(rows)

	records, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Kind != domain.KindPDF || got.AISummary != "a summary" || got.UpdatedAt != 200 {
		t.Fatalf("scan mismatch: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestProfileGetMissingRowYieldsEmptyProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("SELECT id, email, display_name, photo_ref").
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	profile, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if profile.ID != "u1" || profile.DisplayName != "" {
		t.Fatalf("expected empty profile shell, got %+v", profile)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
