// Package store owns the in-memory file collection for the signed-in user.
// It is the single source of truth the query engine projects from: mutations
// are atomic, keyed strictly by record id, and every change is pushed to
// subscribers so views recompute without manual invalidation.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
)

type Subscriber func(records []domain.FileRecord)

type Unsubscribe func()

type FileStore struct {
	mu        sync.Mutex
	records   []domain.FileRecord
	byID      map[string]int
	nowMillis func() int64

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

type Option func(*FileStore)

// WithClock overrides the epoch-milliseconds clock, used by tests to pin
// UpdatedAt stamps.
func WithClock(nowMillis func() int64) Option {
	return func(s *FileStore) {
		s.nowMillis = nowMillis
	}
}

func New(opts ...Option) *FileStore {
	s := &FileStore{
		byID:      make(map[string]int),
		subs:      make(map[int]Subscriber),
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a new record. An empty id gets a generated one; a duplicate id
// violates the collection invariant and is rejected before any change.
func (s *FileStore) Add(record domain.FileRecord) (domain.FileRecord, error) {
	if err := record.ValidateNew(); err != nil {
		return domain.FileRecord{}, err
	}

	s.mu.Lock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, exists := s.byID[record.ID]; exists {
		s.mu.Unlock()
		return domain.FileRecord{}, domain.WrapError(domain.ErrInvalidInput, "add file", errDuplicateID(record.ID))
	}

	now := s.nowMillis()
	if record.CreatedAt == 0 {
		record.CreatedAt = now
	}
	if record.UpdatedAt < record.CreatedAt {
		record.UpdatedAt = record.CreatedAt
	}

	s.records = append(s.records, record)
	s.byID[record.ID] = len(s.records) - 1
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return record, nil
}

// Update applies a partial change to name, notes or AI summary and stamps
// UpdatedAt. Callers that already stamped a durable row pass that stamp so
// both sides agree; a non-positive stamp falls back to the store clock. A
// failed update changes zero fields. Clearing the AI summary with an
// explicit empty string is the legal "regenerate" transition.
func (s *FileStore) Update(id string, patch domain.FilePatch, updatedAt int64) (domain.FileRecord, error) {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return domain.FileRecord{}, domain.WrapError(domain.ErrFileNotFound, "update file", errNoSuchID(id))
	}

	record := s.records[idx]
	if patch.Name != nil {
		if trimmed := strings.TrimSpace(*patch.Name); trimmed != "" {
			record.Name = trimmed
		}
	}
	if patch.Notes != nil {
		record.Notes = *patch.Notes
	}
	if patch.AISummary != nil {
		record.AISummary = *patch.AISummary
	}
	if updatedAt <= 0 {
		updatedAt = s.nowMillis()
	}
	record.UpdatedAt = updatedAt

	s.records[idx] = record
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return record, nil
}

// Remove deletes the record. Removal is not idempotent: a second call for
// the same id reports ErrFileNotFound and the caller decides whether that is
// benign (it is for late async resolutions).
func (s *FileStore) Remove(id string) (domain.FileRecord, error) {
	s.mu.Lock()
	idx, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return domain.FileRecord{}, domain.WrapError(domain.ErrFileNotFound, "remove file", errNoSuchID(id))
	}

	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byID, id)
	for i := idx; i < len(s.records); i++ {
		s.byID[s.records[i].ID] = i
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return removed, nil
}

func (s *FileStore) Get(id string) (domain.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.FileRecord{}, domain.WrapError(domain.ErrFileNotFound, "get file", errNoSuchID(id))
	}
	return s.records[idx], nil
}

// List returns a snapshot of the collection. The order is stable until the
// next mutation; consumers sort explicitly.
func (s *FileStore) List() []domain.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// UsedBytes sums SizeBytes over all records. Recomputed on demand; the
// collection is small enough that caching would only add staleness bugs.
func (s *FileStore) UsedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, record := range s.records {
		total += record.SizeBytes
	}
	return total
}

// Reset replaces the whole collection with an authoritative snapshot from
// the persistence feed. Later duplicates of an id are dropped so the
// uniqueness invariant survives a malformed snapshot.
func (s *FileStore) Reset(records []domain.FileRecord) {
	s.mu.Lock()
	s.records = s.records[:0]
	clear(s.byID)
	for _, record := range records {
		if _, exists := s.byID[record.ID]; exists {
			continue
		}
		s.records = append(s.records, record)
		s.byID[record.ID] = len(s.records) - 1
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners receive the post-mutation snapshot synchronously.
func (s *FileStore) Subscribe(fn Subscriber) Unsubscribe {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *FileStore) snapshotLocked() []domain.FileRecord {
	snapshot := make([]domain.FileRecord, len(s.records))
	copy(snapshot, s.records)
	return snapshot
}

func (s *FileStore) notify(snapshot []domain.FileRecord) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func errDuplicateID(id string) error {
	return fmt.Errorf("id %q already present", id)
}

func errNoSuchID(id string) error {
	return fmt.Errorf("id %q absent", id)
}
