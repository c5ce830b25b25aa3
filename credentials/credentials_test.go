package credentials

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	require.NoError(t, OpenDB(filepath.Join(t.TempDir(), "Credentials.db")))
	t.Cleanup(func() { CloseDB() })

	key, err := Register(map[string]string{"accessKey": "AK", "secretKey": "SK", "bucket": "media"})
	require.NoError(t, err)
	assert.Len(t, key, 32)

	creds, err := GetCredentials(key)
	require.NoError(t, err)
	assert.Equal(t, "media", creds["bucket"])

	require.NoError(t, DeleteCredentials(key))
	_, err = GetCredentials(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterRejectsEmpty(t *testing.T) {
	require.NoError(t, OpenDB(filepath.Join(t.TempDir(), "Credentials.db")))
	t.Cleanup(func() { CloseDB() })

	_, err := Register(nil)
	assert.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	_, err := GetCredentials("k")
	assert.Error(t, err)
}
