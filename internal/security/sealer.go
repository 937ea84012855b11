package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:v1:"

var ErrInvalidSealedData = errors.New("sealed data is invalid or was sealed with another key")

// Sealer encrypts small records at rest with NaCl secretbox
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from a passphrase
func NewSealer(passphrase string) *Sealer {
	return &Sealer{key: sha256.Sum256([]byte(passphrase))}
}

// Seal encrypts plaintext under a fresh random nonce
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal
func (s *Sealer) Open(sealed string) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrInvalidSealedData
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil || len(raw) < 24+secretbox.Overhead {
		return nil, ErrInvalidSealedData
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return nil, ErrInvalidSealedData
	}
	return plaintext, nil
}

// IsSealed reports whether value looks like the output of Seal
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
