// Package mailcred implements the deterministic mail-credential subsystem:
// reproducible derivation of a mail-server password from a user's PGP key
// material, session-scoped envelope encryption of the resulting credential
// bundle, and a dual-tier encrypted credential cache.
package mailcred

import (
	"strings"
	"time"
)

// CredentialBundle carries everything the IMAP/SMTP transport needs to log
// in to a mailbox, plus lifecycle metadata. It is never persisted in the
// clear; storage only ever sees its encrypted envelope.
type CredentialBundle struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	IMAPServer string     `json:"imap_server"`
	IMAPPort   int        `json:"imap_port"`
	IMAPSecure bool       `json:"imap_secure"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the bundle's expiry, if set, has passed.
func (b *CredentialBundle) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountID maps an email address to the stable identifier used as the
// storage key component for its bundle. "alice@example.com" becomes
// "account_alice_example_com".
func AccountID(email string) string {
	var sb strings.Builder
	sb.WriteString("account_")
	for _, r := range normalizeEmail(email) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
