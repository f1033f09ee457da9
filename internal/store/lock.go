package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("master file is locked by another process")

// Lock takes an advisory lock next to the master file. It does not wait:
// a second writer fails with ErrLocked.
func Lock(masterPath string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(masterPath), 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(masterPath + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, fl.Path())
	}
	return fl.Unlock, nil
}
