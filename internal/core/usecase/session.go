package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/gemini-drive/internal/core/domain"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
	"github.com/kirillkom/gemini-drive/internal/core/store"
)

// Sessions hands out the per-user file store. The first access hydrates the
// store from the repository and attaches the live feed, so later snapshots
// from the persistence collaborator replace the in-memory collection
// wholesale.
type Sessions struct {
	repo ports.FileRepository
	opts []store.Option

	mu     sync.Mutex
	stores map[string]*store.FileStore
	cancel map[string]func()
}

func NewSessions(repo ports.FileRepository, opts ...store.Option) *Sessions {
	return &Sessions{
		repo:   repo,
		opts:   opts,
		stores: make(map[string]*store.FileStore),
		cancel: make(map[string]func()),
	}
}

func (s *Sessions) ForUser(ctx context.Context, userID string) (*store.FileStore, error) {
	if userID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", errNoSession)
	}

	s.mu.Lock()
	if st, ok := s.stores[userID]; ok {
		s.mu.Unlock()
		return st, nil
	}
	st := store.New(s.opts...)
	s.stores[userID] = st
	s.mu.Unlock()

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.evict(userID)
		return nil, domain.WrapError(domain.ErrCollaborator, "hydrate session", err)
	}
	st.Reset(records)

	// The feed outlives the request that created the session; only the
	// cancel func kept below ends it.
	unsubscribe, err := s.repo.Subscribe(context.WithoutCancel(ctx), userID, st.Reset)
	if err != nil {
		s.evict(userID)
		return nil, domain.WrapError(domain.ErrCollaborator, "attach live feed", err)
	}

	s.mu.Lock()
	s.cancel[userID] = unsubscribe
	s.mu.Unlock()
	return st, nil
}

// Close detaches every live feed. Called on shutdown.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, cancel := range s.cancel {
		cancel()
		delete(s.cancel, userID)
	}
}

func (s *Sessions) evict(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancel[userID]; ok {
		cancel()
		delete(s.cancel, userID)
	}
	delete(s.stores, userID)
}

var errNoSession = errors.New("no signed-in user")
