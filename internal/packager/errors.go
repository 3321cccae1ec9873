// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"errors"
	"fmt"

	"github.com/chatpack/chatpack/pkg/types"
)

var (
	// ErrInvalidRequest is returned for empty or malformed id lists.
	ErrInvalidRequest = errors.New("invalid build request")
	// ErrFileRead is the sentinel error wrapped by FileReadError.
	ErrFileRead = errors.New("component file read failed")
	// ErrArchiveWrite is the sentinel error wrapped by ArchiveWriteError.
	ErrArchiveWrite = errors.New("archive write failed")
	// ErrInvalidCompressionLevel is returned by New for levels flate does not support.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")
)

type (
	// FileReadError reports which component's source file could not be read.
	FileReadError struct {
		ComponentID types.ComponentID
		Path        string
		Err         error
	}

	// ArchiveWriteError reports a failure inside the zip writer. Entry is empty
	// when the failure happened while finalizing the central directory.
	ArchiveWriteError struct {
		Entry string
		Err   error
	}
)

// Error implements the error interface.
func (e *FileReadError) Error() string {
	return fmt.Sprintf("component %d: cannot read %s: %v", e.ComponentID, e.Path, e.Err)
}

// Unwrap returns both ErrFileRead and the underlying cause, so errors.Is matches
// ErrFileRead as well as fs.ErrNotExist and friends.
func (e *FileReadError) Unwrap() []error { return []error{ErrFileRead, e.Err} }

// Error implements the error interface.
func (e *ArchiveWriteError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("finalize archive: %v", e.Err)
	}
	return fmt.Sprintf("write archive entry %s: %v", e.Entry, e.Err)
}

// Unwrap returns both ErrArchiveWrite and the underlying cause.
func (e *ArchiveWriteError) Unwrap() []error { return []error{ErrArchiveWrite, e.Err} }
