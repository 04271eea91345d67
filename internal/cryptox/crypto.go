// Package cryptox holds the cryptographic primitives behind the credential
// subsystem: a small capability interface for digest and authenticated
// encryption, its AES-GCM implementation, and an HKDF key-stretching helper.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Provider abstracts the crypto operations the envelope codec depends on,
// so implementations can be swapped in tests or replaced with a hardware
// backed one.
type Provider interface {
	// Digest returns a cryptographic hash of data.
	Digest(data []byte) []byte

	// NonceSize returns the nonce length AEADEncrypt produces and
	// AEADDecrypt expects.
	NonceSize() int

	// AEADEncrypt seals plaintext under key with a freshly generated nonce.
	// The nonce is returned alongside the ciphertext; both are needed to
	// decrypt.
	AEADEncrypt(key, plaintext []byte) (nonce, ciphertext []byte, err error)

	// AEADDecrypt opens ciphertext and verifies its integrity. A failure
	// means a wrong key or tampered data; callers must not use partial
	// output.
	AEADDecrypt(key, nonce, ciphertext []byte) ([]byte, error)
}

const gcmNonceSize = 12

// AESGCM is the default Provider: SHA-256 digests and AES-256-GCM
// authenticated encryption.
type AESGCM struct{}

func (AESGCM) Digest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

func (AESGCM) NonceSize() int { return gcmNonceSize }

func (AESGCM) AEADEncrypt(key, plaintext []byte) ([]byte, []byte, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

func (AESGCM) AEADDecrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// StretchKey expands material into length output bytes via HKDF-SHA256,
// bound to salt and the given context label. The expansion is deterministic:
// identical inputs always produce identical output.
func StretchKey(material, salt []byte, label string, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, material, salt, []byte(label))
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
