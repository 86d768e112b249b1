package vapid

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/kochabx/webpush/core/crypto/ecc"
)

// KeyPair is an application server key pair. It is never mutated after creation.
type KeyPair struct {
	privateKey *ecc.PrivateKey
	publicKey  *ecc.PublicKey
}

// GenerateKeyPair returns a fresh key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := ecc.GenerateKey()
	if err != nil {
		return nil, err
	}
	return NewKeyPair(priv), nil
}

// NewKeyPair wraps an existing private key.
func NewKeyPair(priv *ecc.PrivateKey) *KeyPair {
	return &KeyPair{privateKey: priv, publicKey: priv.Public()}
}

// ParseKeyPair decodes base64url keys and checks that they belong together.
func ParseKeyPair(publicKey, privateKey string) (*KeyPair, error) {
	privBytes, err := base64.RawURLEncoding.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrInvalidKey, err)
	}
	priv, err := ecc.NewPrivateKey(privBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	pubBytes, err := base64.RawURLEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidKey, err)
	}
	pub, err := ecc.ParsePublicKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if !priv.Public().Equal(pub) {
		return nil, ErrKeyMismatch
	}
	return NewKeyPair(priv), nil
}

// PublicKey returns the public key.
func (kp *KeyPair) PublicKey() *ecc.PublicKey {
	return kp.publicKey
}

// PrivateKey returns the private key.
func (kp *KeyPair) PrivateKey() *ecc.PrivateKey {
	return kp.privateKey
}

// PublicKeyString returns the base64url public key, the applicationServerKey
// a browser passes to pushManager.subscribe.
func (kp *KeyPair) PublicKeyString() string {
	return base64.RawURLEncoding.EncodeToString(kp.publicKey.Bytes())
}

// PrivateKeyString returns the base64url private scalar.
func (kp *KeyPair) PrivateKeyString() string {
	return base64.RawURLEncoding.EncodeToString(kp.privateKey.Bytes())
}

// Equal reports whether both pairs hold the same keys.
func (kp *KeyPair) Equal(other *KeyPair) bool {
	if kp == nil || other == nil {
		return kp == other
	}
	return kp.privateKey.Equal(other.privateKey)
}

type keyPairJSON struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// MarshalJSON encodes the pair as {"publicKey": ..., "privateKey": ...}.
func (kp *KeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyPairJSON{
		PublicKey:  kp.PublicKeyString(),
		PrivateKey: kp.PrivateKeyString(),
	})
}

// UnmarshalJSON decodes and validates the persisted shape.
func (kp *KeyPair) UnmarshalJSON(data []byte) error {
	var raw keyPairJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseKeyPair(raw.PublicKey, raw.PrivateKey)
	if err != nil {
		return err
	}
	*kp = *parsed
	return nil
}

// String never includes the private key.
func (kp *KeyPair) String() string {
	return "vapid.KeyPair{" + kp.PublicKeyString() + "}"
}
