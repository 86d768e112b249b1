package vapid

import (
	"context"
	"sync"
	"sync/atomic"
)

// Identity is a named sending identity. Readers always see a whole key pair;
// rotation swaps the pointer.
type Identity struct {
	name string
	keys atomic.Pointer[KeyPair]
	mu   sync.Mutex // serializes Regenerate
}

// NewIdentity binds a key pair to a name.
func NewIdentity(name string, kp *KeyPair) *Identity {
	id := &Identity{name: name}
	id.keys.Store(kp)
	return id
}

// Name returns the identity name.
func (id *Identity) Name() string {
	return id.name
}

// Keys returns the current key pair or nil.
func (id *Identity) Keys() *KeyPair {
	if id == nil {
		return nil
	}
	return id.keys.Load()
}

// Swap installs kp and returns the previous pair.
func (id *Identity) Swap(kp *KeyPair) *KeyPair {
	return id.keys.Swap(kp)
}

// Regenerate replaces the identity's key pair in the store and in memory.
// Every subscription created against the old public key stops accepting
// messages, so this is an operator action, not routine.
func (id *Identity) Regenerate(ctx context.Context, store KeyStore) (*KeyPair, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := store.Replace(ctx, id.name, kp); err != nil {
		return nil, err
	}
	id.keys.Store(kp)
	return kp, nil
}
