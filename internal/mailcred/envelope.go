package mailcred

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/cryptox"
)

// sessionKeyBytes is how much of the session key serves as AEAD key
// material. The hex session key is 64 bytes; the first 32 back AES-256.
const sessionKeyBytes = 32

// Codec encrypts credential bundles into opaque string envelopes and back.
// The envelope layout is base64(nonce || ciphertext).
type Codec struct {
	provider cryptox.Provider
}

// NewCodec returns a Codec over the given crypto provider. A nil provider
// selects the default AES-GCM implementation.
func NewCodec(p cryptox.Provider) *Codec {
	if p == nil {
		p = cryptox.AESGCM{}
	}
	return &Codec{provider: p}
}

func aeadKey(key SessionKey) ([]byte, error) {
	if len(key) < sessionKeyBytes {
		return nil, fmt.Errorf("%w: session key too short", common.ErrMissingAuthContext)
	}
	return []byte(key)[:sessionKeyBytes], nil
}

// Encrypt serializes bundle and seals it under key with a fresh nonce.
func (c *Codec) Encrypt(key SessionKey, bundle *CredentialBundle) (string, error) {
	k, err := aeadKey(key)
	if err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}

	nonce, ciphertext, err := c.provider.AEADEncrypt(k, plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt bundle: %w", err)
	}

	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// Decrypt opens an envelope produced by Encrypt.
//
// Failure modes:
//   - common.ErrMalformedEnvelope: the envelope cannot be decoded or split —
//     storage corruption.
//   - common.ErrAuthTagMismatch: integrity check failed — wrong (likely
//     rotated) session key or tampered data.
func (c *Codec) Decrypt(key SessionKey, envelope string) (*CredentialBundle, error) {
	k, err := aeadKey(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedEnvelope, err)
	}

	ns := c.provider.NonceSize()
	if len(raw) <= ns {
		return nil, common.ErrMalformedEnvelope
	}

	plaintext, err := c.provider.AEADDecrypt(k, raw[:ns], raw[ns:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthTagMismatch, err)
	}

	var bundle CredentialBundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedEnvelope, err)
	}
	return &bundle, nil
}
