package domain

import "io"

// Upload carries the caller-supplied metadata for a new file. Name is the
// optional display name; when empty after trimming, the original filename
// wins.
type Upload struct {
	Filename  string
	Name      string
	Notes     string
	MimeType  string
	SizeBytes int64
}

// AnalysisJob identifies one AI analysis request. Prompt may be empty; the
// analyzer falls back to its default summary prompt.
type AnalysisJob struct {
	UserID string `json:"user_id"`
	FileID string `json:"file_id"`
	Prompt string `json:"prompt,omitempty"`
}

// StorageUsage is the quota line rendered in the sidebar.
type StorageUsage struct {
	UsedBytes  int64   `json:"used_bytes"`
	TotalBytes int64   `json:"total_bytes"`
	Percent    float64 `json:"percent"`
}

// ProfileUpdate mutates profile fields. PhotoData replaces the stored
// photo; RemovePhoto clears it. Both unset leaves the photo as is.
type ProfileUpdate struct {
	DisplayName *string
	PhotoData   io.Reader
	RemovePhoto bool
}
