package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oksasatya/bootcamp-directory/internal/application"
)

// Local writes photos into Dir, which is served statically under /uploads.
type Local struct {
	Dir string
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

// Save writes r to Dir/name, replacing any previous file, and returns name.
func (l *Local) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.Dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.Dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

var _ application.PhotoStore = (*Local)(nil)
