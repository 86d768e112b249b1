package ece

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

var (
	webPushInfo    = []byte("WebPush: info\x00")
	aes128gcmInfo  = []byte("Content-Encoding: aes128gcm\x00")
	aesgcmInfo     = []byte("Content-Encoding: aesgcm\x00")
	nonceInfo      = []byte("Content-Encoding: nonce\x00")
	authInfo       = []byte("Content-Encoding: auth\x00")
	p256ContextTag = []byte("P-256\x00")
)

// hkdfExpand runs HKDF-SHA256 extract-then-expand and reads length bytes.
func hkdfExpand(secret, salt, info []byte, length int) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("ece: key derivation failed: %w", err)
	}
	return out, nil
}

// deriveKeys produces the content encryption key and nonce for one message.
// uaPublic is the subscriber key, asPublic the ephemeral sender key.
func deriveKeys(enc Encoding, shared, auth, salt, uaPublic, asPublic []byte) (cek, nonce []byte, err error) {
	var ikmInfo, cekInfo, nonceCtx []byte

	switch enc {
	case AES128GCM:
		ikmInfo = slices.Concat(webPushInfo, uaPublic, asPublic)
		cekInfo = aes128gcmInfo
		nonceCtx = nonceInfo
	case AESGCM:
		context := keyContext(uaPublic, asPublic)
		ikmInfo = authInfo
		cekInfo = slices.Concat(aesgcmInfo, context)
		nonceCtx = slices.Concat(nonceInfo, context)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(enc))
	}

	ikm, err := hkdfExpand(shared, auth, ikmInfo, 32)
	if err != nil {
		return nil, nil, err
	}
	if cek, err = hkdfExpand(ikm, salt, cekInfo, KeySize); err != nil {
		return nil, nil, err
	}
	if nonce, err = hkdfExpand(ikm, salt, nonceCtx, NonceSize); err != nil {
		return nil, nil, err
	}
	return cek, nonce, nil
}

// keyContext is "P-256\0" || len(ua) || ua || len(as) || as with 16-bit big-endian lengths.
func keyContext(uaPublic, asPublic []byte) []byte {
	ctx := make([]byte, 0, len(p256ContextTag)+4+len(uaPublic)+len(asPublic))
	ctx = append(ctx, p256ContextTag...)
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(len(uaPublic)))
	ctx = append(ctx, uaPublic...)
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(len(asPublic)))
	ctx = append(ctx, asPublic...)
	return ctx
}
