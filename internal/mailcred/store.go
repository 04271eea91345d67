package mailcred

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/kvstore"
	"github.com/novalis78/keykeeper/internal/logging"
)

const (
	// keyPrefix namespaces every bundle entry this subsystem writes, in
	// both tiers. ClearAll removes exactly this namespace.
	keyPrefix = "keykeeper_cred_"

	// sessionKeySlot is the fixed slot holding the session key so it can
	// be recovered across restarts.
	sessionKeySlot = "keykeeper_session_key"
)

// Store is the credential store facade. It encrypts bundles with the
// session key and keeps the envelopes in two injected storage tiers: an
// ephemeral one gone at session end and a persistent one surviving
// restarts.
type Store struct {
	ephemeral  kvstore.Store
	persistent kvstore.Store
	codec      *Codec
	log        logging.Logger
	now        func() time.Time
}

type Option func(*Store)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCodec overrides the envelope codec, e.g. to inject a crypto provider.
func WithCodec(c *Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithClock overrides the expiry clock in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(ephemeral, persistent kvstore.Store, opts ...Option) *Store {
	s := &Store{
		ephemeral:  ephemeral,
		persistent: persistent,
		codec:      NewCodec(nil),
		log:        logging.Nop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func bundleKey(accountID string) string {
	return keyPrefix + accountID
}

// SessionKey resolves the session key for the current auth context: the
// ephemeral tier first, then the persistent slot, then a fresh derivation
// written back to both tiers (read-through with lazy population).
func (s *Store) SessionKey(ctx context.Context, authToken, keyFingerprint string) (SessionKey, error) {
	for _, tier := range []kvstore.Store{s.ephemeral, s.persistent} {
		v, err := tier.Get(ctx, sessionKeySlot)
		if err != nil {
			return "", err
		}
		if len(v) > 0 {
			return SessionKey(v), nil
		}
	}

	key, err := DeriveSessionKey(authToken, keyFingerprint)
	if err != nil {
		return "", err
	}

	if err := s.ephemeral.Set(ctx, sessionKeySlot, []byte(key)); err != nil {
		return "", err
	}
	if err := s.persistent.Set(ctx, sessionKeySlot, []byte(key)); err != nil {
		return "", err
	}
	return key, nil
}

// Store encrypts bundle under key and writes the envelope. The persistent
// tier is always written; the ephemeral tier is added as a convenience
// cache when remember is false. The session key is recorded in the
// persistent slot so a later retrieval can fall back to it.
func (s *Store) Store(ctx context.Context, accountID string, bundle *CredentialBundle, key SessionKey, remember bool) error {
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = s.now()
	}

	envelope, err := s.codec.Encrypt(key, bundle)
	if err != nil {
		return fmt.Errorf("storing bundle for %s: %w", accountID, err)
	}

	k := bundleKey(accountID)
	if err := s.persistent.Set(ctx, k, []byte(envelope)); err != nil {
		return err
	}
	if !remember {
		if err := s.ephemeral.Set(ctx, k, []byte(envelope)); err != nil {
			return err
		}
	}
	if err := s.persistent.Set(ctx, sessionKeySlot, []byte(key)); err != nil {
		return err
	}

	s.log.Info(ctx, "credential bundle stored", "account", accountID, "remember", remember)
	return nil
}

// Retrieve reads the bundle for accountID, trying the ephemeral tier before
// the persistent one.
//
// Outcomes:
//   - common.ErrNotFound: nothing stored, the envelope was corrupted (and
//     has been purged), or the bundle expired (and has been purged).
//   - common.ErrCredentialsUnavailable: decryption failed with both the
//     caller's key and the fallback key from the persistent slot; the entry
//     is purged and the caller should re-authenticate.
//
// Storage-layer errors propagate as-is.
func (s *Store) Retrieve(ctx context.Context, accountID string, key SessionKey) (*CredentialBundle, error) {
	k := bundleKey(accountID)

	envelope, err := s.ephemeral.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	if envelope == nil {
		envelope, err = s.persistent.Get(ctx, k)
		if err != nil {
			return nil, err
		}
	}
	if envelope == nil {
		return nil, common.ErrNotFound
	}

	bundle, err := s.decryptWithFallback(ctx, key, string(envelope))
	switch {
	case errors.Is(err, common.ErrMalformedEnvelope):
		s.log.Warn(ctx, "purging corrupted credential envelope", "account", accountID)
		s.purge(ctx, accountID)
		return nil, common.ErrNotFound
	case errors.Is(err, common.ErrAuthTagMismatch):
		s.log.Warn(ctx, "credential envelope not decryptable, re-authentication required", "account", accountID)
		s.purge(ctx, accountID)
		return nil, common.ErrCredentialsUnavailable
	case err != nil:
		return nil, err
	}

	if bundle.Expired(s.now()) {
		s.log.Info(ctx, "credential bundle expired", "account", accountID)
		s.purge(ctx, accountID)
		return nil, common.ErrNotFound
	}

	return bundle, nil
}

// decryptWithFallback is the two-step decrypt policy: the caller's key
// first and, on a tag mismatch only, one retry with the session key
// recorded in the persistent slot. Handles the caller holding a stale
// in-memory key relative to what encrypted the envelope.
func (s *Store) decryptWithFallback(ctx context.Context, key SessionKey, envelope string) (*CredentialBundle, error) {
	bundle, err := s.codec.Decrypt(key, envelope)
	if err == nil || !errors.Is(err, common.ErrAuthTagMismatch) {
		return bundle, err
	}

	stored, getErr := s.persistent.Get(ctx, sessionKeySlot)
	if getErr != nil {
		return nil, getErr
	}
	fallback := SessionKey(stored)
	if len(fallback) == 0 || fallback == key {
		return nil, err
	}

	s.log.Warn(ctx, "session key mismatch, retrying with stored key")
	return s.codec.Decrypt(fallback, envelope)
}

func (s *Store) purge(ctx context.Context, accountID string) {
	k := bundleKey(accountID)
	_ = s.ephemeral.Delete(ctx, k)
	_ = s.persistent.Delete(ctx, k)
}

// ClearAll removes every entry under the subsystem's namespace in both
// tiers, plus the session-key slot. Idempotent; called unconditionally at
// logout and on unrecoverable auth failure.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, tier := range []kvstore.Store{s.ephemeral, s.persistent} {
		keys, err := tier.Keys(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if strings.HasPrefix(k, keyPrefix) || k == sessionKeySlot {
				if err := tier.Delete(ctx, k); err != nil {
					return err
				}
			}
		}
	}
	s.log.Info(ctx, "credential storage cleared")
	return nil
}
