package push

import (
	"context"
	"slices"
	"sync"
)

// SubscriptionStore persists subscriptions per owner. Save replaces any record
// with the same endpoint, including one held by another owner.
type SubscriptionStore interface {
	Save(ctx context.Context, owner string, sub *Subscription) error
	List(ctx context.Context, owner string) ([]*Subscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// ReportSink consumes the reports of a dispatch round.
type ReportSink interface {
	Consume(ctx context.Context, reports []*Report) error
}

// MemoryStore is an in-process SubscriptionStore.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string][]string // owner -> endpoints in insertion order
	subs   map[string]memoryRecord
}

type memoryRecord struct {
	owner string
	sub   *Subscription
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners: make(map[string][]string),
		subs:   make(map[string]memoryRecord),
	}
}

func (s *MemoryStore) Save(_ context.Context, owner string, sub *Subscription) error {
	if owner == "" || sub == nil {
		return ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	endpoint := sub.Endpoint()
	if prev, ok := s.subs[endpoint]; ok && prev.owner != owner {
		s.unlink(prev.owner, endpoint)
	}
	if !slices.Contains(s.owners[owner], endpoint) {
		s.owners[owner] = append(s.owners[owner], endpoint)
	}
	s.subs[endpoint] = memoryRecord{owner: owner, sub: sub}
	return nil
}

func (s *MemoryStore) List(_ context.Context, owner string) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	endpoints := s.owners[owner]
	subs := make([]*Subscription, 0, len(endpoints))
	for _, endpoint := range endpoints {
		subs = append(subs, s.subs[endpoint].sub)
	}
	return subs, nil
}

func (s *MemoryStore) Delete(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.subs[endpoint]
	if !ok {
		return nil
	}
	delete(s.subs, endpoint)
	s.unlink(rec.owner, endpoint)
	return nil
}

func (s *MemoryStore) unlink(owner, endpoint string) {
	endpoints := slices.DeleteFunc(s.owners[owner], func(e string) bool { return e == endpoint })
	if len(endpoints) == 0 {
		delete(s.owners, owner)
		return
	}
	s.owners[owner] = endpoints
}
