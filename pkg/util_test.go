package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(35)
	require.NoError(t, err)
	s2, err := GenerateRandomString(35)
	require.NoError(t, err)

	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(filepath.Join(dir, "nope"), false)
	require.NoError(t, err)
	assert.False(t, exists)

	filePath := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(filePath, []byte("{}"), 0o600))

	exists, err = PathExists(filePath, false)
	require.NoError(t, err)
	assert.True(t, exists)

	// a file is not a dir
	exists, err = PathExists(filePath, true)
	require.NoError(t, err)
	assert.False(t, exists)
}
