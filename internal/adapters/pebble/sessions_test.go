package pebbleadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_PutGetDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	a := s.Session("alice")
	b := s.Session("bob")

	_, ok, err := a.Get(ctx, "cart_items")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Put(ctx, "cart_items", []byte(`[1,2]`)))
	v, ok, err := a.Get(ctx, "cart_items")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))

	_, ok, _ = b.Get(ctx, "cart_items")
	assert.False(t, ok)

	require.NoError(t, a.Delete(ctx, "cart_items"))
	_, ok, _ = a.Get(ctx, "cart_items")
	assert.False(t, ok)
}

func TestSessions_SurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Session("alice").Put(ctx, "cart_items", []byte(`["x"]`)))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, ok, err := s.Session("alice").Get(ctx, "cart_items")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, string(v))
}
