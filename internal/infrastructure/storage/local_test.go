package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l := NewLocal(dir)
	ctx := context.Background()

	name, err := l.Save(ctx, "photo_1.jpg", "image/jpeg", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "photo_1.jpg", name)

	_, err = l.Save(ctx, "photo_1.jpg", "image/jpeg", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "photo_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalSaveRejectsPaths(t *testing.T) {
	l := NewLocal(t.TempDir())
	_, err := l.Save(context.Background(), "../escape.jpg", "image/jpeg", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/uploads/p.jpg", PublicURL("b", "uploads/p.jpg"))
}
