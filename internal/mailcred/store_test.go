package mailcred

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/novalis78/keykeeper/internal/common"
	"github.com/novalis78/keykeeper/internal/kvstore"
)

type storeFixture struct {
	store      *Store
	ephemeral  *kvstore.Memory
	persistent *kvstore.Memory
}

func newFixture(t *testing.T, opts ...Option) *storeFixture {
	t.Helper()
	f := &storeFixture{
		ephemeral:  kvstore.NewMemory(),
		persistent: kvstore.NewMemory(),
	}
	f.store = NewStore(f.ephemeral, f.persistent, opts...)
	return f
}

func TestStore_RememberTrue_SurvivesInPersistentTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)
	bundle := testBundle()

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", bundle, key, true))

	// Persistent tier holds the envelope; ephemeral holds no bundle entry.
	v, err := f.persistent.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.NotNil(t, v)

	v, err = f.ephemeral.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.Nil(t, v)

	got, err := f.store.Retrieve(ctx, "account_alice_example_com", key)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(bundle, got))
}

func TestStore_RememberFalse_CachesInEphemeralTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", testBundle(), key, false))

	v, err := f.ephemeral.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestStore_RecordsSessionKeyInPersistentSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", testBundle(), key, true))

	v, err := f.persistent.Get(ctx, "keykeeper_session_key")
	require.NoError(t, err)
	require.Equal(t, []byte(key), v)
}

func TestStore_EnvelopeIsOpaque(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bundle := testBundle()

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", bundle, testSessionKey(t), true))

	v, err := f.persistent.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.NotContains(t, string(v), bundle.Password)
	require.NotContains(t, string(v), bundle.Email)
}

func TestRetrieve_Absent_ReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Retrieve(context.Background(), "account_nobody", testSessionKey(t))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetrieve_IsolatedPerAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	alice := testBundle()
	bob := testBundle()
	bob.Email = "bob@example.com"
	bob.Password = "bobs-derived-password"

	require.NoError(t, f.store.Store(ctx, AccountID(alice.Email), alice, key, true))
	require.NoError(t, f.store.Store(ctx, AccountID(bob.Email), bob, key, true))

	got, err := f.store.Retrieve(ctx, AccountID(alice.Email), key)
	require.NoError(t, err)
	require.Equal(t, alice.Email, got.Email)
	require.Equal(t, alice.Password, got.Password)
}

func TestRetrieve_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	first := testBundle()
	second := testBundle()
	second.Password = "rotated-password"

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", first, key, true))
	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", second, key, true))

	got, err := f.store.Retrieve(ctx, "account_alice_example_com", key)
	require.NoError(t, err)
	require.Equal(t, "rotated-password", got.Password)
}

func TestRetrieve_Expired_PurgesAndReturnsNotFound(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	key := testSessionKey(t)

	bundle := testBundle()
	exp := now.Add(-time.Hour)
	bundle.ExpiresAt = &exp

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", bundle, key, true))

	_, err := f.store.Retrieve(ctx, "account_alice_example_com", key)
	require.ErrorIs(t, err, common.ErrNotFound)

	// The purge must be a side effect of the failed retrieval.
	v, err := f.persistent.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestRetrieve_StaleCallerKey_FallsBackToStoredKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	storedKey := testSessionKey(t)
	staleKey, err := DeriveSessionKey("tok-rotated", "FPR456")
	require.NoError(t, err)

	bundle := testBundle()
	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", bundle, storedKey, true))

	got, err := f.store.Retrieve(ctx, "account_alice_example_com", staleKey)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(bundle, got))
}

func TestRetrieve_FallbackAlsoFails_CredentialsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	encryptKey := testSessionKey(t)
	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", testBundle(), encryptKey, true))

	// Neither the caller's key nor the recorded slot matches the envelope.
	wrongKey, err := DeriveSessionKey("tok-wrong", "FPR456")
	require.NoError(t, err)
	otherKey, err := DeriveSessionKey("tok-other", "FPR456")
	require.NoError(t, err)
	require.NoError(t, f.persistent.Set(ctx, "keykeeper_session_key", []byte(otherKey)))

	_, err = f.store.Retrieve(ctx, "account_alice_example_com", wrongKey)
	require.ErrorIs(t, err, common.ErrCredentialsUnavailable)

	// Unrecoverable mismatch destroys the bundle.
	v, err := f.persistent.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestRetrieve_CorruptedEnvelope_PurgesAndReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	require.NoError(t, f.persistent.Set(ctx, "keykeeper_cred_account_alice_example_com", []byte("###garbage###")))

	_, err := f.store.Retrieve(ctx, "account_alice_example_com", key)
	require.ErrorIs(t, err, common.ErrNotFound)

	v, err := f.persistent.Get(ctx, "keykeeper_cred_account_alice_example_com")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSessionKey_ReadThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Empty tiers: derive and populate both.
	key, err := f.store.SessionKey(ctx, "tok123", "FPR456")
	require.NoError(t, err)

	derived, err := DeriveSessionKey("tok123", "FPR456")
	require.NoError(t, err)
	require.Equal(t, derived, key)

	for _, tier := range []*kvstore.Memory{f.ephemeral, f.persistent} {
		v, err := tier.Get(ctx, "keykeeper_session_key")
		require.NoError(t, err)
		require.Equal(t, []byte(key), v)
	}
}

func TestSessionKey_PrefersCachedOverDerivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cached, err := DeriveSessionKey("tok-old", "FPR456")
	require.NoError(t, err)
	require.NoError(t, f.ephemeral.Set(ctx, "keykeeper_session_key", []byte(cached)))

	// Auth context differs, but the cached key wins.
	key, err := f.store.SessionKey(ctx, "tok-new", "FPR456")
	require.NoError(t, err)
	require.Equal(t, cached, key)
}

func TestSessionKey_MissingAuthContextWithEmptyCache(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.SessionKey(context.Background(), "", "")
	require.ErrorIs(t, err, common.ErrMissingAuthContext)
}

func TestClearAll_RemovesNamespaceAndSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := testSessionKey(t)

	require.NoError(t, f.store.Store(ctx, "account_alice_example_com", testBundle(), key, false))
	require.NoError(t, f.store.Store(ctx, "account_bob_example_com", testBundle(), key, true))
	_, err := f.store.SessionKey(ctx, "tok123", "FPR456")
	require.NoError(t, err)

	// An unrelated entry in the persistent tier must survive the wipe.
	require.NoError(t, f.persistent.Set(ctx, "unrelated", []byte("keep me")))

	require.NoError(t, f.store.ClearAll(ctx))

	for _, tier := range []*kvstore.Memory{f.ephemeral, f.persistent} {
		keys, err := tier.Keys(ctx)
		require.NoError(t, err)
		for _, k := range keys {
			require.NotContains(t, k, "keykeeper_")
		}
	}

	v, err := f.persistent.Get(ctx, "unrelated")
	require.NoError(t, err)
	require.Equal(t, []byte("keep me"), v)
}

func TestClearAll_IdempotentOnEmptyStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.ClearAll(ctx))
	require.NoError(t, f.store.ClearAll(ctx))
}
