// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chatpack/chatpack/pkg/types"
)

var (
	// ErrUnknownComponent is the sentinel error wrapped by UnknownComponentError.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrInvalidCatalog is the sentinel error wrapped by InvalidCatalogError.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnsupportedFormat is returned when a catalog file extension is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

type (
	// UnknownComponentError is returned when a requested id has no catalog entry.
	UnknownComponentError struct {
		ID types.ComponentID
	}

	// InvalidCatalogError collects every problem found while validating a catalog.
	InvalidCatalogError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %d", e.ID)
}

// Unwrap returns ErrUnknownComponent for errors.Is() compatibility.
func (e *UnknownComponentError) Unwrap() error { return ErrUnknownComponent }

// Error implements the error interface.
func (e *InvalidCatalogError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid catalog: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidCatalog for errors.Is() compatibility.
func (e *InvalidCatalogError) Unwrap() error { return ErrInvalidCatalog }
