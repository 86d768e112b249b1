package ece

import (
	"encoding/binary"
	"fmt"

	"github.com/kochabx/webpush/core/crypto/ecc"
)

// Decrypt recovers the plaintext of a single-record message addressed to priv.
// It is the user agent side of Encrypt.
func Decrypt(priv *ecc.PrivateKey, auth []byte, m *Message) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: subscriber private key is empty", ErrMissingKey)
	}
	if len(auth) < AuthSecretSize {
		return nil, fmt.Errorf("%w: auth secret must be at least %d bytes", ErrMissingKey, AuthSecretSize)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidRecord)
	}

	var salt, asPublic, ciphertext []byte

	switch m.Encoding {
	case AES128GCM:
		if len(m.Body) < HeaderSize+TagSize+1 {
			return nil, fmt.Errorf("%w: body too short", ErrInvalidRecord)
		}
		rs := binary.BigEndian.Uint32(m.Body[SaltSize:])
		if idlen := int(m.Body[SaltSize+4]); idlen != ecc.PublicKeySize {
			return nil, fmt.Errorf("%w: key id length %d", ErrInvalidRecord, idlen)
		}
		salt = m.Body[:SaltSize]
		asPublic = m.Body[SaltSize+5 : HeaderSize]
		ciphertext = m.Body[HeaderSize:]
		if uint64(len(ciphertext)) > uint64(rs) {
			return nil, fmt.Errorf("%w: multiple records are not supported", ErrInvalidRecord)
		}
	case AESGCM:
		if len(m.Salt) != SaltSize {
			return nil, fmt.Errorf("%w: salt must be %d bytes", ErrInvalidRecord, SaltSize)
		}
		if len(m.Body) < TagSize+paddingLengthSize {
			return nil, fmt.Errorf("%w: body too short", ErrInvalidRecord)
		}
		salt = m.Salt
		asPublic = m.PublicKey
		ciphertext = m.Body
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(m.Encoding))
	}

	sender, err := ecc.ParsePublicKey(asPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	shared, err := priv.ECDH(sender)
	if err != nil {
		return nil, err
	}

	cek, nonce, err := deriveKeys(m.Encoding, shared, auth, salt, priv.Public().Bytes(), asPublic)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, err
	}

	record, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return unpad(m.Encoding, record)
}

func unpad(enc Encoding, record []byte) ([]byte, error) {
	switch enc {
	case AES128GCM:
		end := len(record) - 1
		for end >= 0 && record[end] == 0 {
			end--
		}
		if end < 0 || record[end] != lastRecordDelimiter {
			return nil, fmt.Errorf("%w: missing last record delimiter", ErrInvalidRecord)
		}
		return record[:end], nil
	default:
		if len(record) < paddingLengthSize {
			return nil, fmt.Errorf("%w: record too short", ErrInvalidRecord)
		}
		padding := int(binary.BigEndian.Uint16(record))
		start := paddingLengthSize + padding
		if start > len(record) {
			return nil, fmt.Errorf("%w: padding exceeds record", ErrInvalidRecord)
		}
		if !allZero(record[paddingLengthSize:start]) {
			return nil, fmt.Errorf("%w: non-zero padding", ErrInvalidRecord)
		}
		return record[start:], nil
	}
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
