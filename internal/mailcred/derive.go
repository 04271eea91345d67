package mailcred

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/cryptox"
)

const (
	// passwordBytes is the HKDF output length; base64 RawURL encoding turns
	// it into a 32-character password.
	passwordBytes = 24

	// deriveLabel versions the derivation contract. The mail-provisioning
	// side computes the same derivation with the same label; bump the
	// suffix only together with a server-side rollover.
	deriveLabel = "keykeeper mail password v1"
)

// DerivePassword computes the mail-server password for email from the
// user's private key material.
//
// The derivation must be reproducible, so it never touches the key's native
// signing operation (PGP signatures embed a random nonce). Instead a stable
// SHA-256 digest of the raw key material is stretched through HKDF-SHA256,
// salted with the normalized address and bound to deriveLabel. Identical
// inputs always produce byte-identical output; the mail server relies on
// computing the same value independently.
func DerivePassword(email string, keyMaterial []byte) (string, error) {
	addr := normalizeEmail(email)
	if addr == "" {
		return "", fmt.Errorf("%w: email", common.ErrMissingKeyMaterial)
	}
	if len(keyMaterial) == 0 {
		return "", fmt.Errorf("%w: private key", common.ErrMissingKeyMaterial)
	}

	ikm := sha256.Sum256(keyMaterial)
	out, err := cryptox.StretchKey(ikm[:], []byte(addr), deriveLabel, passwordBytes)
	if err != nil {
		return "", fmt.Errorf("derive password: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(out), nil
}
