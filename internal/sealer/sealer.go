// Package sealer encrypts individual record fields at rest.
package sealer

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrMalformed = errors.New("malformed sealed value")

// Sealer encrypts with XChaCha20-Poly1305. Every call to Seal uses a fresh random nonce, so
// sealing the same plaintext twice yields different outputs.
type Sealer struct {
	aead cipher.AEAD
}

func New(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// NewFromBase64 decodes a standard base64 key of chacha20poly1305.KeySize bytes.
func NewFromBase64(encoded string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}

	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	return New(key)
}

// Seal returns base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(raw) < chacha20poly1305.NonceSizeX+s.aead.Overhead() {
		return "", ErrMalformed
	}

	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]

	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("opening sealed value: %w", err)
	}

	return string(plain), nil
}

func (s *Sealer) SealCents(cents int64) (string, error) {
	return s.Seal(strconv.FormatInt(cents, 10))
}

func (s *Sealer) OpenCents(sealed string) (int64, error) {
	plain, err := s.Open(sealed)
	if err != nil {
		return 0, err
	}

	cents, err := strconv.ParseInt(plain, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return cents, nil
}

// SealDate stores only the calendar date.
func (s *Sealer) SealDate(t time.Time) (string, error) {
	return s.Seal(t.Format(time.DateOnly))
}

// OpenDate returns the stored calendar date at midnight in loc.
func (s *Sealer) OpenDate(sealed string, loc *time.Location) (time.Time, error) {
	plain, err := s.Open(sealed)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.ParseInLocation(time.DateOnly, plain, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return t, nil
}
