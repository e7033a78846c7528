package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(map[string]string{KeySelectedTheme: "dark"})

	v, ok, err := m.Get(ctx, KeySelectedTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	_, ok, err = m.Get(ctx, KeySelectedResume)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, KeySelectedResume, "resources/a/a.json"))
	assert.Equal(t, map[string]string{
		KeySelectedTheme:  "dark",
		KeySelectedResume: "resources/a/a.json",
	}, m.Snapshot())
}

func TestFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	f := NewFile(path)

	_, ok, err := f.Get(ctx, KeySelectedTheme)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set(ctx, KeySelectedTheme, "modern"))
	require.NoError(t, f.Set(ctx, KeySelectedResume, "resources/b/b.json"))

	// a second store on the same path sees the writes
	other := NewFile(path)
	v, ok, err := other.Get(ctx, KeySelectedTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "modern", v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"selectedTheme":"modern","selectedResume":"resources/b/b.json"}`, string(data))
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, _, err := NewFile(path).Get(context.Background(), KeySelectedTheme)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse preferences file")
}
