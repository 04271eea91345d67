package mailcred

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/novalis78/keykeeper/internal/common"
)

// SessionKey is the hex-encoded symmetric key scoped to one authenticated
// session. It encrypts cached credential bundles and nothing else; the mail
// password itself is never derived from it.
type SessionKey string

// DeriveSessionKey computes the session key for the current auth token and
// key fingerprint pair. The derivation is pure: the key is
// hex(SHA-256(authToken ":" keyFingerprint)), so it rotates whenever the
// token does and needs no TTL state of its own.
func DeriveSessionKey(authToken, keyFingerprint string) (SessionKey, error) {
	if authToken == "" || keyFingerprint == "" {
		return "", common.ErrMissingAuthContext
	}

	sum := sha256.Sum256([]byte(authToken + ":" + keyFingerprint))
	return SessionKey(hex.EncodeToString(sum[:])), nil
}
