package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Store is injected into the dispatcher and the handler, so persistence is
// a wiring choice rather than a hardcoded singleton.
type Store interface {
	Save(ctx context.Context, n *Notification) error
	ListByOwner(ctx context.Context, ownerID string) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, ownerID string) (int, error)
}

// MemoryStore keeps notifications in process. Useful in tests and for
// deployments that treat in-app notifications as ephemeral.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Notification)}
}

func (s *MemoryStore) Save(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.items[n.ID] = *n
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Notification
	for _, n := range s.items {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Read = true
	s.items[id] = n
	return nil
}

func (s *MemoryStore) CountUnread(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if n.OwnerID == ownerID && !n.Read {
			count++
		}
	}
	return count, nil
}
