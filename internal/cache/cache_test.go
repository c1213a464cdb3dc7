package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeCache(t *testing.T) {
	c := NewFreeCache(1024 * 1024)

	_, err := c.Get([]byte("muscles"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set([]byte("muscles"), []byte(`[{"id":"pecho"}]`), 60))
	val, err := c.Get([]byte("muscles"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"pecho"}]`, string(val))

	assert.True(t, c.Del([]byte("muscles")))
	assert.False(t, c.Del([]byte("muscles")))

	require.NoError(t, c.Set([]byte("a"), []byte("1"), 0))
	require.NoError(t, c.Set([]byte("b"), []byte("2"), 0))
	c.Clear()
	_, err = c.Get([]byte("a"))
	assert.True(t, IsNotFound(err))
	_, err = c.Get([]byte("b"))
	assert.True(t, IsNotFound(err))
}
