// Package security provides the optional privacy layer around the memory
// service: symmetric encryption of stored text, content screening, and
// retention-based purging.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the PBKDF2 salt size in bytes.
	SaltLength = 16
	// KeyLength selects AES-256.
	KeyLength = 32
	// NonceLength is the GCM nonce size in bytes.
	NonceLength = 12
	// PBKDF2Iterations follows the OWASP 2025 recommendation.
	PBKDF2Iterations = 310000
)

// Cipher encrypts and decrypts strings with AES-256-GCM using a key derived
// from a password.
type Cipher struct {
	aead cipher.AEAD
	salt []byte
}

// GenerateSalt returns a fresh random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an AES-256 key from the password via PBKDF2-SHA256.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeyLength, sha256.New)
}

// NewCipher derives a key from password and salt and prepares the AEAD.
// A nil salt generates a fresh one, readable via Salt.
func NewCipher(password string, salt []byte) (*Cipher, error) {
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if salt == nil {
		var err error
		if salt, err = GenerateSalt(); err != nil {
			return nil, err
		}
	}
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("invalid salt length: expected %d, got %d", SaltLength, len(salt))
	}

	block, err := aes.NewCipher(DeriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Cipher{aead: aead, salt: salt}, nil
}

// Salt returns the salt used for key derivation.
func (c *Cipher) Salt() []byte {
	return c.salt
}

// EncryptString seals the plaintext and returns base64(nonce || ciphertext).
// Empty input passes through untouched.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func (c *Cipher) DecryptString(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	sealed, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(sealed) < NonceLength {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := c.aead.Open(nil, sealed[:NonceLength], sealed[NonceLength:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}
