package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey = errors.New("invalid encryption key")
	ErrDecrypt    = errors.New("cannot decrypt token")
)

// Box encrypts short secrets such as the SMTP password. Tokens are
// base64(nonce || secretbox) and are only readable with the same key.
type Box struct {
	key [keySize]byte
}

func New(key [keySize]byte) *Box {
	return &Box{key: key}
}

// Generate returns a Box with a fresh random key.
func Generate() (*Box, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return New(key), nil
}

// LoadOrCreate reads the key file at path. A missing or empty file is
// replaced by a newly generated key, readable only by the owner.
func LoadOrCreate(path string) (*Box, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	encoded := strings.TrimSpace(string(data))
	if encoded == "" {
		b, err := Generate()
		if err != nil {
			return nil, err
		}
		if err := b.save(path); err != nil {
			return nil, err
		}
		return b, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != keySize {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, path)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return New(key), nil
}

func (b *Box) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(b.key[:]) + "\n"
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Encrypt seals plaintext. The empty string encrypts to the empty string.
func (b *Box) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token made by Encrypt. Tokens from another key or
// damaged tokens yield ErrDecrypt.
func (b *Box) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// IsEncrypted reports whether token has the shape of an Encrypt result.
// It does not check that the token opens with any particular key.
func IsEncrypted(token string) bool {
	raw, err := base64.URLEncoding.DecodeString(token)
	return err == nil && len(raw) >= nonceSize+secretbox.Overhead
}
