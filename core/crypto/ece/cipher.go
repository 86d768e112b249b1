package ece

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kochabx/webpush/core/crypto/ecc"
)

var randReader io.Reader = rand.Reader

// Option configures Encrypt.
type Option func(*options)

type options struct {
	padding   int
	salt      []byte
	ephemeral *ecc.PrivateKey
}

// WithPadding appends n zero bytes of padding to hide the payload length.
// Padding is truncated so the body stays within RecordSize.
func WithPadding(n int) Option {
	return func(o *options) {
		o.padding = n
	}
}

// withKeys pins the salt and sender key. Only tests reproducing fixed vectors use it.
func withKeys(salt []byte, ephemeral *ecc.PrivateKey) Option {
	return func(o *options) {
		o.salt = salt
		o.ephemeral = ephemeral
	}
}

// Encrypt encrypts plaintext for the subscriber identified by pub and auth.
//
// The encryption process:
// 1. Draw a fresh salt and ephemeral key pair
// 2. ECDH between the ephemeral key and the subscriber key
// 3. Derive the content encryption key and nonce with HKDF-SHA256
// 4. Pad the plaintext into a single record and seal it with AES-128-GCM
func Encrypt(pub *ecc.PublicKey, auth, plaintext []byte, enc Encoding, opts ...Option) (*Message, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(enc))
	}
	if pub == nil {
		return nil, fmt.Errorf("%w: subscriber public key is empty", ErrMissingKey)
	}
	if len(auth) < AuthSecretSize {
		return nil, fmt.Errorf("%w: auth secret must be at least %d bytes", ErrMissingKey, AuthSecretSize)
	}
	limit := MaxPayloadLength(enc)
	if len(plaintext) > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d for %s", ErrPayloadTooLarge, len(plaintext), limit, enc)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	salt := o.salt
	if salt == nil {
		salt = make([]byte, SaltSize)
		if _, err := io.ReadFull(randReader, salt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
		}
	}

	ephemeral := o.ephemeral
	if ephemeral == nil {
		var err error
		if ephemeral, err = ecc.GenerateKey(); err != nil {
			return nil, err
		}
		defer ephemeral.Destroy()
	}

	shared, err := ephemeral.ECDH(pub)
	if err != nil {
		return nil, err
	}

	uaPublic := pub.Bytes()
	asPublic := ephemeral.Public().Bytes()

	cek, nonce, err := deriveKeys(enc, shared, auth, salt, uaPublic, asPublic)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, err
	}

	padding := min(max(o.padding, 0), limit-len(plaintext))
	record := getRecord(len(plaintext) + padding + paddingLengthSize)
	defer putRecord(record)
	record = pad(record, enc, plaintext, padding)

	m := &Message{
		Encoding:  enc,
		Salt:      salt,
		PublicKey: asPublic,
	}

	switch enc {
	case AES128GCM:
		body := make([]byte, 0, HeaderSize+len(record)+TagSize)
		body = append(body, salt...)
		body = binary.BigEndian.AppendUint32(body, RecordSize)
		body = append(body, byte(len(asPublic)))
		body = append(body, asPublic...)
		m.Body = gcm.Seal(body, nonce, record, nil)
	case AESGCM:
		m.Body = gcm.Seal(nil, nonce, record, nil)
	}

	return m, nil
}

// pad lays out the plaintext record for enc.
//
//	aes128gcm: plaintext || 0x02 || zeros
//	aesgcm:    uint16 padding length || zeros || plaintext
func pad(record []byte, enc Encoding, plaintext []byte, padding int) []byte {
	switch enc {
	case AES128GCM:
		record = append(record, plaintext...)
		record = append(record, lastRecordDelimiter)
		record = append(record, make([]byte, padding)...)
	case AESGCM:
		padding = min(padding, maxPaddingLength)
		record = binary.BigEndian.AppendUint16(record, uint16(padding))
		record = append(record, make([]byte, padding)...)
		record = append(record, plaintext...)
	}
	return record
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ece: failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ece: failed to create GCM: %w", err)
	}
	return gcm, nil
}
