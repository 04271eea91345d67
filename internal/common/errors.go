// Package common defines shared constants and sentinel errors used across
// the KeyKeeper credential subsystem. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound = errors.New("not found")

	// Precondition errors (caller supplied insufficient input).
	ErrMissingKeyMaterial = errors.New("missing key material")
	ErrMissingAuthContext = errors.New("missing auth context")

	// Envelope decrypt errors.
	ErrAuthTagMismatch   = errors.New("authentication tag mismatch")
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// Surfaced when decryption fails even after the fallback session key.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")
)
