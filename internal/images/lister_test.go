package images

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirLister_List(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.jpg", "b.webp", ".hidden.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.jpg"), filepath.Join(dir, "link.jpg")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "subdir"), filepath.Join(dir, "linkdir")))

	paths, err := NewDirLister(dir).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.webp"),
		filepath.Join(dir, "c.png"),
		filepath.Join(dir, "link.jpg"),
	}, paths)
}

func TestDirLister_Empty(t *testing.T) {
	paths, err := NewDirLister(t.TempDir()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDirLister_Missing(t *testing.T) {
	_, err := NewDirLister("/nonexistent/wallpapers").List(context.Background())
	assert.Error(t, err)
}

func TestDirLister_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirLister(t.TempDir()).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic_ReturnsCopy(t *testing.T) {
	s := Static{"a", "b"}
	got, err := s.List(context.Background())
	require.NoError(t, err)
	got[0] = "z"
	assert.Equal(t, "a", s[0])
}
