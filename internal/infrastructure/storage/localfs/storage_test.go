package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	st, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := st.Save(ctx, "u1/f1_doc.pdf", strings.NewReader("payload")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := st.Open(ctx, "u1/f1_doc.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(raw) != "payload" {
		t.Fatalf("read back %q, err %v", raw, err)
	}

	if err := st.Delete(ctx, "u1/f1_doc.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := st.Open(ctx, "u1/f1_doc.pdf"); err == nil {
		t.Fatalf("object still readable after delete")
	}
}

func TestDeleteMissingObjectIsNoOp(t *testing.T) {
	st, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Delete(context.Background(), "u1/never_existed"); err != nil {
		t.Fatalf("Delete() on missing object must succeed, got %v", err)
	}
}
