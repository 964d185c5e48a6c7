package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// MinHMACKeyLength is the minimum symmetric key size in bytes (256 bits).
const MinHMACKeyLength = 32

// KeyProvider retrieves verification keys for token validation.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: GetKey returns ErrKeyNotFound (possibly wrapped) for unknown key IDs.
type KeyProvider interface {
	// GetKey returns the symmetric key for the given key ID.
	// The key ID is empty when the token header carries no kid.
	GetKey(ctx context.Context, keyID string) ([]byte, error)
}

// StaticKeyProvider provides a single verification key for every key ID.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider after checking the key length.
func NewStaticKeyProvider(key []byte) (*StaticKeyProvider, error) {
	k, err := NewHMACKey(key)
	if err != nil {
		return nil, err
	}
	return &StaticKeyProvider{key: k}, nil
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) ([]byte, error) {
	return p.key, nil
}

// NewHMACKey copies key and checks it is long enough for HMAC-SHA256.
func NewHMACKey(key []byte) ([]byte, error) {
	if len(key) < MinHMACKeyLength {
		return nil, fmt.Errorf("%w: key is %d bytes, need at least %d", ErrInvalidKey, len(key), MinHMACKeyLength)
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}

// DecodeBase64Key decodes a base64 key in standard or URL encoding,
// with or without padding.
func DecodeBase64Key(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if key, err := enc.DecodeString(s); err == nil {
			return NewHMACKey(key)
		}
	}
	return nil, fmt.Errorf("%w: not valid base64", ErrInvalidKey)
}

// Ensure StaticKeyProvider implements KeyProvider
var _ KeyProvider = (*StaticKeyProvider)(nil)
