package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir keeps documents as files under a root directory. The root plays the role of the mounted
// flash partition: when it is missing every Create fails.
type Dir struct {
	root string
}

// NewDir creates a new instance of Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Check reports whether the root directory is usable.
func (d *Dir) Check() error {
	fi, err := os.Stat(d.root)
	if err != nil {
		return errors.Wrap(err, "store: dir: func Stat")
	}
	if !fi.IsDir() {
		return errors.Errorf("store: dir: %s is not a directory", d.root)
	}
	return nil
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(clean(name)))
}

// Open .
func (d *Dir) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(d.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store: dir: func Open %s", name)
	}
	return f, nil
}

// Create .
func (d *Dir) Create(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(d.path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "store: dir: func OpenFile %s", name)
	}
	return f, nil
}

// Remove .
func (d *Dir) Remove(name string) error {
	err := os.Remove(d.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "store: dir: func Remove %s", name)
	}
	return nil
}
