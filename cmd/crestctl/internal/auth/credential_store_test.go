package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/auth"
	"github.com/crestapp/crest-go/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".crest")
	store, err := auth.NewFileStoreAt(dir)
	require.NoError(t, err)

	// Empty store reads as "not logged in".
	creds, err := store.LoadCredentials()
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, store.SaveCredentials(&sdk.Credentials{
		Token:    "tok-1",
		Username: "alice",
	}))

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	creds, err = store.LoadCredentials()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "tok-1", creds.Token)
	assert.Equal(t, "alice", creds.Username)

	require.NoError(t, store.DeleteCredentials())
	require.NoError(t, store.DeleteCredentials())

	creds, err = store.LoadCredentials()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := auth.NewFileStoreAt(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{"), 0600))

	_, err = store.LoadCredentials()
	require.Error(t, err)
}
