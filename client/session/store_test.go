package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() Session {
	profile := Profile{ID: "s-1", DisplayName: "Asha Verma", Email: "asha@example.com", Role: RoleStudent}
	return Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Role:         RoleStudent,
		Profile:      &profile,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	require.NoError(t, store.SetSession(ctx, sampleSession()))

	token, _ := store.AccessToken(ctx)
	role, _ := store.Role(ctx)
	profile, _ := store.CachedProfile(ctx)
	assert.Equal(t, "access-token", token)
	assert.Equal(t, RoleStudent, role)
	require.NotNil(t, profile)
	assert.Equal(t, "Asha Verma", profile.DisplayName)

	require.NoError(t, store.Clear(ctx))
	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Nil(t, snap.Profile)
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SetSession(ctx, sampleSession()))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	snap.Profile.DisplayName = "mutated"

	fresh, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", fresh.Profile.DisplayName)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	require.NoError(t, store.SetSession(ctx, sampleSession()))

	reopened := NewFileStore(path)
	snap, err = reopened.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-token", snap.AccessToken)
	assert.Equal(t, RoleStudent, snap.Role)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "asha@example.com", snap.Profile.Email)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestFileStoreCorruptFileReadsAsSignedOut(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}
