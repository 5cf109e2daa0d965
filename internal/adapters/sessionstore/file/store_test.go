package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "session key is empty"},
		{name: "whitespace", key: "   ", wantErr: "session key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid session key"},
		{name: "traversal", key: "../escape", wantErr: "invalid session key"},
		{name: "deep traversal", key: "../../session", wantErr: "invalid session key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := "care/localhost:5000/session"
	want := `[{"name":"session","value":"abc"}]`

	require.NoError(t, store.Put(context.Background(), key, "stale"))
	require.NoError(t, store.Put(context.Background(), key, want))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	sessionPath := filepath.Join(root, "care", "localhost_5000", "session")
	info, err := os.Stat(sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(sessionFileMod), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(sessionPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreGetMissingIsSessionNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "care/example.com/session")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreDeleteIsIdempotentWhenSessionMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	key := "care/example.com/session"

	require.NoError(t, store.Put(context.Background(), key, "v"))
	require.NoError(t, store.Delete(context.Background(), key))
	require.NoError(t, store.Delete(context.Background(), key))

	_, err := store.Get(context.Background(), key)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreHonoursCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStore(t.TempDir()).Put(ctx, "care/example.com/session", "v")
	require.ErrorIs(t, err, context.Canceled)
}
