// Package store provides means for document storage and retrieving.
package store

import (
	"io"
	"path"

	"github.com/pkg/errors"
)

// ErrNotExist is returned by Open when no document is stored under the name.
var ErrNotExist = errors.New("store: document does not exist")

// FS is the contract of the flash file system the parameters live on. Names are slash separated
// absolute paths such as "/userconfig.txt".
type FS interface {
	// Open returns a reader of the stored document or ErrNotExist.
	Open(name string) (io.ReadCloser, error)
	// Create truncates or creates the document and returns its writer.
	Create(name string) (io.WriteCloser, error)
	// Remove deletes the document. Removing an absent document is not an error.
	Remove(name string) error
}

func clean(name string) string {
	return path.Clean("/" + name)
}
