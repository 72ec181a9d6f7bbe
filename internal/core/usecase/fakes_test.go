package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

type repoFake struct {
	mu      sync.Mutex
	records map[string]domain.FileRecord

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	subscribed []string
	onChange   map[string]func([]domain.FileRecord)

	// afterCreate runs once the row is inserted, outside the lock. Tests
	// use it to interleave feed snapshots with an in-flight upload.
	afterCreate func()
}

func newRepoFake() *repoFake {
	return &repoFake{records: map[string]domain.FileRecord{}}
}

func (f *repoFake) key(userID, id string) string { return userID + "/" + id }

func (f *repoFake) Create(_ context.Context, record *domain.FileRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.records[f.key(record.UserID, record.ID)] = *record
	f.mu.Unlock()
	if f.afterCreate != nil {
		f.afterCreate()
	}
	return nil
}

func (f *repoFake) Update(_ context.Context, userID, id string, patch domain.FilePatch, updatedAt int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[f.key(userID, id)]
	if !ok {
		return domain.WrapError(domain.ErrFileNotFound, "update file row", errors.New(id))
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		record.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Notes != nil {
		record.Notes = *patch.Notes
	}
	if patch.AISummary != nil {
		record.AISummary = *patch.AISummary
	}
	record.UpdatedAt = updatedAt
	f.records[f.key(userID, id)] = record
	return nil
}

func (f *repoFake) Delete(_ context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[f.key(userID, id)]; !ok {
		return domain.WrapError(domain.ErrFileNotFound, "delete file row", errors.New(id))
	}
	delete(f.records, f.key(userID, id))
	return nil
}

func (f *repoFake) ListByUser(_ context.Context, userID string) ([]domain.FileRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FileRecord
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *repoFake) GetByID(_ context.Context, userID, id string) (*domain.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[f.key(userID, id)]
	if !ok {
		return nil, domain.WrapError(domain.ErrFileNotFound, "get file row", errors.New(id))
	}
	return &record, nil
}

func (f *repoFake) Subscribe(_ context.Context, userID string, onChange func([]domain.FileRecord)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, userID)
	if f.onChange == nil {
		f.onChange = map[string]func([]domain.FileRecord){}
	}
	f.onChange[userID] = onChange
	return func() {}, nil
}

// pushSnapshot delivers the current rows for userID through the captured
// feed callback, the way the polling repository does.
func (f *repoFake) pushSnapshot(userID string) {
	records, _ := f.ListByUser(context.Background(), userID)
	f.mu.Lock()
	fn := f.onChange[userID]
	f.mu.Unlock()
	if fn != nil {
		fn(records)
	}
}

type storageFake struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	saveErr error
	openErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object missing: " + key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type analyzerFake struct {
	summary      string
	name         string
	err          error
	beforeReturn func()
}

func (f *analyzerFake) Analyze(context.Context, []byte, string, string) (string, error) {
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *analyzerFake) SuggestName(context.Context, []byte, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.name, nil
}

type queueFake struct {
	mu         sync.Mutex
	published  []domain.AnalysisJob
	publishErr error
}

func (f *queueFake) PublishAnalyzeFile(_ context.Context, job domain.AnalysisJob) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, job)
	return nil
}

func (f *queueFake) SubscribeAnalyzeFile(context.Context, func(context.Context, domain.AnalysisJob) error) error {
	return nil
}
