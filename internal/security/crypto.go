// Package security provides cryptographic primitives shared across
// AWMKit's key slot registry, message codec, and secret-store wrapping:
// secure random key generation, constant-time comparison, and HKDF-based
// key derivation for at-rest wrapping (never for cross-slot key material,
// which spec.md's Non-goals explicitly excludes).
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Errors returned by this package.
var (
	ErrInsufficientEntropy = errors.New("security: insufficient entropy")
	ErrWeakKey             = errors.New("security: key is too weak")
	ErrInvalidKeySize      = errors.New("security: invalid key size")
)

// SlotKeySize is the size in bytes of a key slot secret (spec §3).
const SlotKeySize = 32

// GenerateSecureRandom fills data with cryptographically secure random bytes.
func GenerateSecureRandom(data []byte) error {
	n, err := rand.Read(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientEntropy, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: only got %d of %d bytes", ErrInsufficientEntropy, n, len(data))
	}
	return nil
}

// GenerateKey generates a cryptographically secure random key of the
// given size in bytes.
func GenerateKey(size int) ([]byte, error) {
	key := make([]byte, size)
	if err := GenerateSecureRandom(key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveKey derives a key using HKDF with SHA-256. This is used only to
// derive at-rest wrapping keys for the file-backed test keystore
// (internal/secretstore); it is never used to derive one key slot's
// secret from another.
func DeriveKey(masterKey, salt, info []byte, keySize int) ([]byte, error) {
	if len(masterKey) < 16 {
		return nil, fmt.Errorf("%w: master key is %d bytes, minimum 16 required", ErrWeakKey, len(masterKey))
	}
	if keySize < 16 {
		return nil, fmt.Errorf("%w: minimum 16 bytes required", ErrInvalidKeySize)
	}

	reader := hkdf.New(sha256.New, masterKey, salt, info)
	derived := make([]byte, keySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return derived, nil
}

// SecureCompare performs a constant-time comparison of two byte slices.
func SecureCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ValidateKeyStrength checks a key slot secret against minimum security
// requirements: correct size, not all-zero, not a single repeating byte.
func ValidateKeyStrength(key []byte) error {
	if len(key) < SlotKeySize {
		return fmt.Errorf("%w: key is %d bytes, minimum %d required", ErrWeakKey, len(key), SlotKeySize)
	}

	allZero := true
	for _, b := range key {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return fmt.Errorf("%w: key is all zeros", ErrWeakKey)
	}

	pattern := key[0]
	allSame := true
	for _, b := range key {
		if b != pattern {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("%w: key has repeating pattern", ErrWeakKey)
	}

	return nil
}

// Fingerprint returns the 8-hex-char Key ID: the first 4 bytes of
// SHA-256(key), hex-encoded.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 0; i < 4; i++ {
		out[i*2] = hexDigits[sum[i]>>4]
		out[i*2+1] = hexDigits[sum[i]&0x0F]
	}
	return string(out)
}
