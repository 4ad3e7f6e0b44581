package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("squat-every-day")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("squat-every-day", hash))
	assert.False(t, CheckPasswordHash("bench-every-day", hash))
	assert.False(t, CheckPasswordHash("", hash))
}
