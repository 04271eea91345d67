package mailcred

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/novalis78/keykeeper/internal/kvstore"
)

// TestEndToEnd_FreshProcessRetrievesStoredBundle walks the whole flow:
// derive the mail password, derive the session key, store the bundle, then
// simulate a process restart (new ephemeral tier, new Store, same
// persistent tier) and retrieve the bundle unchanged.
func TestEndToEnd_FreshProcessRetrievesStoredBundle(t *testing.T) {
	ctx := context.Background()

	persistent, err := kvstore.OpenSQLite(ctx, "file:e2e?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = persistent.Close() })

	// First process: login and capture credentials.
	first := NewStore(kvstore.NewMemory(), persistent)

	password, err := DerivePassword("alice@example.com", testKeyMaterial)
	require.NoError(t, err)

	key, err := first.SessionKey(ctx, "tok123", "FPR456")
	require.NoError(t, err)

	bundle := &CredentialBundle{
		Email:      "alice@example.com",
		Password:   password,
		IMAPServer: "mail.example.com",
		IMAPPort:   993,
		IMAPSecure: true,
	}
	accountID := AccountID(bundle.Email)
	require.Equal(t, "account_alice_example_com", accountID)

	require.NoError(t, first.Store(ctx, accountID, bundle, key, true))

	// Fresh process: in-memory state is gone, the persistent tier is not.
	second := NewStore(kvstore.NewMemory(), persistent)

	sameKey, err := DeriveSessionKey("tok123", "FPR456")
	require.NoError(t, err)

	got, err := second.Retrieve(ctx, accountID, sameKey)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(bundle, got))

	// The derived password inside the bundle still matches a re-derivation,
	// which is what lets the mail server agree on it.
	again, err := DerivePassword("alice@example.com", testKeyMaterial)
	require.NoError(t, err)
	require.Equal(t, again, got.Password)
}
