package state

import (
	"errors"
	"fmt"
)

// Validation errors surfaced to the UI as inline input errors. The
// operation aborts before any write.
var (
	// ErrEmptyName rejects a blank (or whitespace-only) playlist name.
	ErrEmptyName = errors.New("playlist name is empty")
	// ErrDuplicateName rejects a case-insensitive playlist name collision.
	ErrDuplicateName = errors.New("playlist name already exists")
	// ErrMissingPlaylist means an explicitly referenced playlist id does
	// not resolve.
	ErrMissingPlaylist = errors.New("playlist not found")
	// ErrDuplicateVideo rejects adding a url already present in the
	// target playlist.
	ErrDuplicateVideo = errors.New("video already in playlist")
)

// StorageError wraps a gateway I/O failure. The operation aborted and
// state is unchanged; callers log it and carry on.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
