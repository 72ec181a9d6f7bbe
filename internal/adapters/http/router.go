package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/gemini-drive/internal/config"
	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
	"github.com/kirillkom/gemini-drive/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	ingest   ports.FileIngestor
	browser  ports.FileBrowser
	editor   ports.FileEditor
	analysis ports.FileAnalysisService
	profiles ports.ProfileService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.FileIngestor,
	browser ports.FileBrowser,
	editor ports.FileEditor,
	analysis ports.FileAnalysisService,
	profiles ports.ProfileService,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingest:   ingest,
		browser:  browser,
		editor:   editor,
		analysis: analysis,
		profiles: profiles,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/files", rt.filesCollection)
	mux.HandleFunc("/v1/files/", rt.fileSubtree)
	mux.HandleFunc("/v1/usage", rt.usage)
	mux.HandleFunc("/v1/profile", rt.profile)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := http.Handler(mux)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	backpressureWait := time.Duration(rt.cfg.APIBackpressureMS) * time.Millisecond
	if backpressureWait <= 0 {
		backpressureWait = 200 * time.Millisecond
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) user(r *http.Request) string {
	return userFromRequest(r, rt.cfg.APIAuthTokensEnabled)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) filesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.browse(w, r)
	case http.MethodPost:
		rt.upload(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) browse(w http.ResponseWriter, r *http.Request) {
	view, err := domain.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	typeFilter, err := domain.ParseTypeFilter(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	dateRange, err := domain.ParseDateRange(r.URL.Query().Get("date_range"))
	if err != nil {
		writeError(w, err)
		return
	}
	filter := domain.FilterState{
		Search:    r.URL.Query().Get("search"),
		Type:      typeFilter,
		DateRange: dateRange,
	}

	records, err := rt.browser.Browse(r.Context(), rt.user(r), view, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordBrowse(serviceName, string(view), len(records))
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": records})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	userID := rt.user(r)

	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if err := rt.checkQuota(r, userID, fileHeader.Size); err != nil {
		writeError(w, err)
		return
	}

	upload := domain.Upload{
		Filename:  fileHeader.Filename,
		Name:      r.FormValue("name"),
		Notes:     r.FormValue("notes"),
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
	}

	record, err := rt.ingest.Upload(r.Context(), userID, upload, file)
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, string(record.Kind), err, fileHeader.Size)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (rt *Router) checkQuota(r *http.Request, userID string, incomingBytes int64) error {
	usage, err := rt.browser.Usage(r.Context(), userID)
	if err != nil {
		return err
	}
	if usage.TotalBytes > 0 && usage.UsedBytes+incomingBytes > usage.TotalBytes {
		return domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("storage quota exceeded: %d of %d bytes used", usage.UsedBytes, usage.TotalBytes))
	}
	return nil
}

// fileSubtree dispatches /v1/files/{id} and its subresources.
func (rt *Router) fileSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id is required"})
		return
	}

	switch sub {
	case "":
		rt.fileByID(w, r, id)
	case "content":
		rt.download(w, r, id)
	case "analyze":
		rt.analyze(w, r, id)
	case "suggest-name":
		rt.suggestName(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) fileByID(w http.ResponseWriter, r *http.Request, id string) {
	userID := rt.user(r)

	switch r.Method {
	case http.MethodGet:
		record, err := rt.browser.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodPatch:
		var patch domain.FilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		record, err := rt.editor.Update(r.Context(), userID, id, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodDelete:
		if err := rt.editor.Delete(r.Context(), userID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) download(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	record, reader, err := rt.browser.OpenContent(r.Context(), rt.user(r), id)
	if rt.metrics != nil {
		rt.metrics.RecordDownload(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", record.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	_, _ = io.Copy(w, reader)
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	job := domain.AnalysisJob{
		UserID: rt.user(r),
		FileID: id,
		Prompt: req.Prompt,
	}
	err := rt.analysis.RequestAnalysis(r.Context(), job)
	if rt.metrics != nil {
		rt.metrics.RecordAnalysisRequest(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "file_id": id})
}

func (rt *Router) suggestName(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	name, err := rt.analysis.SuggestName(r.Context(), rt.user(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (rt *Router) usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	usage, err := rt.browser.Usage(r.Context(), rt.user(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (rt *Router) profile(w http.ResponseWriter, r *http.Request) {
	userID := rt.user(r)

	switch r.Method {
	case http.MethodGet:
		profile, err := rt.profiles.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case http.MethodPatch:
		update, cleanup, err := parseProfileUpdate(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		defer cleanup()

		profile, err := rt.profiles.Update(r.Context(), userID, update)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func parseProfileUpdate(r *http.Request) (domain.ProfileUpdate, func(), error) {
	cleanup := func() {}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return domain.ProfileUpdate{}, cleanup, fmt.Errorf("multipart form required")
	}

	var update domain.ProfileUpdate
	if values, ok := r.MultipartForm.Value["display_name"]; ok && len(values) > 0 {
		update.DisplayName = &values[0]
	}
	if r.FormValue("remove_photo") == "true" {
		update.RemovePhoto = true
	}
	if photo, _, err := r.FormFile("photo"); err == nil {
		update.PhotoData = photo
		cleanup = func() { _ = photo.Close() }
	}
	return update, cleanup, nil
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
