package vapid

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// KeyStore persists key pairs by identity name.
type KeyStore interface {
	// Load returns ErrKeysNotFound when nothing is stored under name.
	Load(ctx context.Context, name string) (*KeyPair, error)
	// Create stores kp only if name is absent and returns the stored pair,
	// which is the existing one when another writer won.
	Create(ctx context.Context, name string, kp *KeyPair) (*KeyPair, error)
	// Replace overwrites the pair unconditionally.
	Replace(ctx context.Context, name string, kp *KeyPair) error
}

// Provision loads the identity's key pair, generating and storing one on first use.
func Provision(ctx context.Context, store KeyStore, name string) (*Identity, error) {
	kp, err := store.Load(ctx, name)
	if err == nil {
		return NewIdentity(name, kp), nil
	}
	if !errors.Is(err, ErrKeysNotFound) {
		return nil, fmt.Errorf("vapid: load %q: %w", name, err)
	}

	generated, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	kp, err = store.Create(ctx, name, generated)
	if err != nil {
		return nil, fmt.Errorf("vapid: create %q: %w", name, err)
	}
	return NewIdentity(name, kp), nil
}

// MemoryKeyStore is an in-process KeyStore.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*KeyPair
}

// NewMemoryKeyStore returns an empty store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]*KeyPair)}
}

func (s *MemoryKeyStore) Load(_ context.Context, name string) (*KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kp, ok := s.keys[name]
	if !ok {
		return nil, ErrKeysNotFound
	}
	return kp, nil
}

func (s *MemoryKeyStore) Create(_ context.Context, name string, kp *KeyPair) (*KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.keys[name]; ok {
		return existing, nil
	}
	s.keys[name] = kp
	return kp, nil
}

func (s *MemoryKeyStore) Replace(_ context.Context, name string, kp *KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[name] = kp
	return nil
}
