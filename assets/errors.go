package assets

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no object exists at the requested path.
	ErrNotFound = errors.New("asset not found")
	// ErrTransient covers every other storage failure: network, permission, quota, cancellation.
	ErrTransient = errors.New("asset storage unavailable")
	// ErrInvalidFileType is returned before any storage call when an upload is not allowed in its folder.
	ErrInvalidFileType = errors.New("invalid file type")
)

// StorageError describes a failed storage operation on a logical path.
// Kind is one of ErrNotFound or ErrTransient.
type StorageError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps a collaborator error onto the resolver taxonomy.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	kind := ErrTransient
	if errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		kind = ErrNotFound
	}
	return &StorageError{Op: op, Path: path, Kind: kind, Err: err}
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsTransient reports whether err is a non-NotFound storage failure.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }
