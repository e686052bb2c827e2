// Package security holds the credential helpers: deterministic email
// sealing, password hashing and access tokens.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrMalformedSeal = errors.New("malformed sealed value")

// Sealer encrypts emails deterministically: the same normalized email always
// seals to the same string, so the sealed value can back a unique index and
// an equality lookup.
type Sealer struct {
	key []byte
}

func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key must be at least %d characters", chacha20poly1305.KeySize)
	}
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nonce derives the XChaCha20 nonce from the plaintext.
func (s *Sealer) nonce(plain string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(plain))
	return mac.Sum(nil)[:chacha20poly1305.NonceSizeX]
}

// Seal normalizes email and encrypts it. The result is URL-safe base64 of
// nonce || ciphertext.
func (s *Sealer) Seal(email string) (string, error) {
	plain := NormalizeEmail(email)
	if plain == "" {
		return "", errors.New("email is empty")
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := s.nonce(plain)
	out := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < chacha20poly1305.NonceSizeX {
		return "", ErrMalformedSeal
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return "", ErrMalformedSeal
	}
	return string(plain), nil
}
