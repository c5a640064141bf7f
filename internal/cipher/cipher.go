// Package cipher implements per-message encryption for session logs.
//
// A session key both names a session and encrypts its messages. Each
// message is sealed independently with AES-256-GCM under a key derived
// from the session key string, with a fresh random nonce per call, so a
// stored log is decryptable by any holder of the key and nothing else.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo     = "keyroom-msg-v1"
	rawKeyLen   = 16 // random bytes per session key, rendered as 32 hex chars
	aesKeySize  = 32
	nonceSize   = 12
	tagSize     = 16
	minBlobSize = nonceSize + tagSize
)

var keyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// DecryptionError reports a blob that could not be decrypted: malformed
// encoding, truncation, tampering, or a key that does not match.
type DecryptionError struct {
	Message string
}

func (e *DecryptionError) Error() string {
	return e.Message
}

// IsDecryptionError checks if an error is a DecryptionError.
func IsDecryptionError(err error) bool {
	var de *DecryptionError
	return errors.As(err, &de)
}

// GenerateKey returns a fresh session key: 128 bits from a cryptographically
// secure source, hex-encoded. The key space makes collisions negligible; no
// uniqueness check against existing sessions is performed.
func GenerateKey() (string, error) {
	raw := make([]byte, rawKeyLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// ValidKey reports whether key has the exact shape GenerateKey produces.
// Stores use this as a guard before the key string touches any lookup path.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// deriveKey stretches the session key string to an AES-256 key via
// HKDF-SHA256, bound to the message protocol label.
func deriveKey(sessionKey string) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(sessionKey), nil, []byte(keyInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newAEAD(sessionKey string) (stdcipher.AEAD, error) {
	key, err := deriveKey(sessionKey)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return stdcipher.NewGCM(block)
}

// Encrypt seals plaintext under the session key with a fresh random nonce
// and returns base64(nonce || ciphertext). The nonce is drawn independently
// for every call and never reused, even within one session.
func Encrypt(sessionKey, plaintext string) (string, error) {
	aead, err := newAEAD(sessionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, nonceSize+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. It fails with a DecryptionError when the blob
// is not valid base64, too short to contain a nonce and tag, or does not
// authenticate under the session key.
func Decrypt(sessionKey, blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", &DecryptionError{Message: fmt.Sprintf("invalid base64 blob: %v", err)}
	}

	if len(raw) < minBlobSize {
		return "", &DecryptionError{Message: fmt.Sprintf("blob too short: %d bytes, minimum %d", len(raw), minBlobSize)}
	}

	aead, err := newAEAD(sessionKey)
	if err != nil {
		return "", err
	}

	nonce := raw[:nonceSize]
	ciphertext := raw[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", &DecryptionError{Message: "decryption failed: wrong key or tampered blob"}
	}

	return string(plaintext), nil
}
