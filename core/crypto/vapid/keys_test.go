package vapid

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPairJSON(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	data, err := json.Marshal(kp)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, kp.PublicKeyString(), raw["publicKey"])
	assert.Equal(t, kp.PrivateKeyString(), raw["privateKey"])
	assert.Len(t, raw["publicKey"], 87)
	assert.Len(t, raw["privateKey"], 43)
	assert.NotContains(t, raw["publicKey"], "=")

	var decoded KeyPair
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, kp.Equal(&decoded))
	assert.True(t, kp.PublicKey().Equal(decoded.PublicKey()))
}

func TestParseKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name    string
		pub     string
		priv    string
		wantErr error
	}{
		{"valid", kp.PublicKeyString(), kp.PrivateKeyString(), nil},
		{"mismatch", other.PublicKeyString(), kp.PrivateKeyString(), ErrKeyMismatch},
		{"bad base64", "!!!", kp.PrivateKeyString(), ErrInvalidKey},
		{"bad point", strings.Repeat("A", 87), kp.PrivateKeyString(), ErrInvalidKey},
		{"zero scalar", kp.PublicKeyString(), strings.Repeat("A", 43), ErrInvalidKey},
		{"empty private", kp.PublicKeyString(), "", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyPair(tt.pub, tt.priv)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.True(t, kp.Equal(got))
		})
	}
}

func TestKeyPairStringHidesPrivateKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.NotContains(t, kp.String(), kp.PrivateKeyString())
	assert.Contains(t, kp.String(), kp.PublicKeyString())
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()

	first, err := Provision(ctx, store, "default")
	require.NoError(t, err)
	require.NotNil(t, first.Keys())
	assert.Equal(t, "default", first.Name())

	second, err := Provision(ctx, store, "default")
	require.NoError(t, err)
	assert.True(t, first.Keys().Equal(second.Keys()), "identity must be generated once")

	other, err := Provision(ctx, store, "marketing")
	require.NoError(t, err)
	assert.False(t, first.Keys().Equal(other.Keys()))
}

func TestProvisionConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()

	const n = 16
	ids := make([]*Identity, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := Provision(ctx, store, "default")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.True(t, ids[0].Keys().Equal(id.Keys()), "all writers must observe the first stored pair")
	}
}

type failingStore struct{ MemoryKeyStore }

func (s *failingStore) Load(context.Context, string) (*KeyPair, error) {
	return nil, errors.New("connection refused")
}

func TestProvisionLoadError(t *testing.T) {
	_, err := Provision(context.Background(), &failingStore{}, "default")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeysNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRegenerate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKeyStore()

	id, err := Provision(ctx, store, "default")
	require.NoError(t, err)
	old := id.Keys()

	fresh, err := id.Regenerate(ctx, store)
	require.NoError(t, err)
	assert.False(t, old.Equal(fresh))
	assert.Same(t, fresh, id.Keys())

	stored, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, fresh.Equal(stored))
}

func TestIdentityConcurrentReads(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	id := NewIdentity("default", kp1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				kp := id.Keys()
				// a pair is always internally consistent
				assert.True(t, kp.PrivateKey().Public().Equal(kp.PublicKey()))
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			id.Swap(kp2)
		} else {
			id.Swap(kp1)
		}
	}
	wg.Wait()
}
