// Package seal encrypts session blobs at rest. Wizard sessions carry PII and
// credentials; Redis gets ciphertext only.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer seals and opens byte blobs with a symmetric key.
type Sealer struct {
	key [32]byte
}

// New derives a sealing key from the configured secret. An empty secret is
// rejected so a misconfigured deployment fails at startup, not at read time.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("seal: empty secret")
	}
	return &Sealer{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal encrypts plaintext with a fresh random nonce prepended to the box.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

// Open decrypts a sealed blob.
func (s *Sealer) Open(box []byte) ([]byte, error) {
	if len(box) < nonceSize {
		return nil, errors.New("seal: box too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plaintext, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("seal: decryption failed")
	}
	return plaintext, nil
}
