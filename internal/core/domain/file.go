package domain

import "strings"

type FileKind string

const (
	KindImage FileKind = "IMAGE"
	KindText  FileKind = "TEXT"
	KindPDF   FileKind = "PDF"
	KindOther FileKind = "OTHER"
)

// KindFromMIME derives the display kind from the original MIME type.
// The mapping is fixed at upload time; re-uploading is the only way to
// change a record's kind.
func KindFromMIME(mimeType string) FileKind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case mt == "application/pdf":
		return KindPDF
	case strings.HasPrefix(mt, "text/"),
		strings.Contains(mt, "json"),
		strings.Contains(mt, "javascript"):
		return KindText
	default:
		return KindOther
	}
}

func ParseFileKind(raw string) (FileKind, error) {
	switch FileKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case KindImage:
		return KindImage, nil
	case KindText:
		return KindText, nil
	case KindPDF:
		return KindPDF, nil
	case KindOther:
		return KindOther, nil
	}
	return "", WrapError(ErrInvalidInput, "parse file kind", errInvalidEnum(raw))
}

// FileRecord is one uploaded artifact. Timestamps are epoch milliseconds;
// CreatedAt, Kind, MimeType, SizeBytes and StoragePath never change after
// creation.
type FileRecord struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Kind        FileKind `json:"kind"`
	MimeType    string   `json:"mime_type"`
	SizeBytes   int64    `json:"size_bytes"`
	StoragePath string   `json:"storage_path"`
	Notes       string   `json:"notes"`
	AISummary   string   `json:"ai_summary,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

// Analyzed reports whether the record carries a non-empty AI summary.
func (f FileRecord) Analyzed() bool {
	return strings.TrimSpace(f.AISummary) != ""
}

// ValidateNew checks the fields a freshly uploaded record must carry.
// It rejects before any state change happens.
func (f FileRecord) ValidateNew() error {
	if strings.TrimSpace(f.Name) == "" {
		return WrapError(ErrInvalidInput, "validate file", errMissingField("name"))
	}
	if strings.TrimSpace(f.MimeType) == "" {
		return WrapError(ErrInvalidInput, "validate file", errMissingField("mime_type"))
	}
	if f.SizeBytes < 0 {
		return WrapError(ErrInvalidInput, "validate file", errMissingField("size_bytes"))
	}
	return nil
}

// FilePatch is a partial change to the mutable fields of a record.
// A nil pointer means "leave untouched"; a pointer to the empty string is a
// legal value (clearing AISummary resets the record to unanalyzed).
type FilePatch struct {
	Name      *string `json:"name,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	AISummary *string `json:"ai_summary,omitempty"`
}

func (p FilePatch) Empty() bool {
	return p.Name == nil && p.Notes == nil && p.AISummary == nil
}
