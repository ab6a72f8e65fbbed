// Package vault seals and opens username/password pairs with authenticated
// symmetric encryption so they can be persisted locally.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/siiapp/phasetrack/internal/model"
)

// KeySize is the required encryption key size (AES-256).
const KeySize = 32

// Vault encrypts and decrypts credential pairs with AES-256-GCM using a
// process wide key loaded once at startup.
type Vault struct {
	aead cipher.AEAD
}

// New creates a new vault from a 32 byte key.
func New(key []byte) (*Vault, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create gcm: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// sealedPair is the plaintext layout inside a sealed blob.
type sealedPair struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EncryptPair seals a credential pair into an opaque blob. The blob is the
// random nonce followed by the GCM ciphertext.
func (v *Vault) EncryptPair(creds model.Credentials) ([]byte, error) {
	plaintext, err := json.Marshal(sealedPair{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("could not marshal pair: %w", err)
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptPair opens a sealed blob. Malformed blobs and authentication tag
// mismatches fail with model.ErrDecrypt.
func (v *Vault) DecryptPair(blob []byte) (model.Credentials, error) {
	if len(blob) < v.aead.NonceSize() {
		return model.Credentials{}, fmt.Errorf("blob too short: %w", model.ErrDecrypt)
	}

	nonce, ciphertext := blob[:v.aead.NonceSize()], blob[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("could not open blob: %w", model.ErrDecrypt)
	}

	var pair sealedPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return model.Credentials{}, fmt.Errorf("malformed pair payload: %w", model.ErrDecrypt)
	}

	return model.Credentials{Username: pair.Username, Password: pair.Password}, nil
}
