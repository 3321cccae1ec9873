// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidComponentID is the sentinel error wrapped by InvalidComponentIDError.
var ErrInvalidComponentID = errors.New("invalid component id")

type (
	// ComponentID identifies a catalog component. Valid ids are positive.
	ComponentID int

	// InvalidComponentIDError is returned when a ComponentID is zero or negative,
	// or when a string cannot be parsed as one.
	InvalidComponentIDError struct {
		Input string
	}
)

// String returns the decimal representation of the id.
func (id ComponentID) String() string { return strconv.Itoa(int(id)) }

// Validate returns an error wrapping ErrInvalidComponentID if id is not positive.
func (id ComponentID) Validate() error {
	if id <= 0 {
		return &InvalidComponentIDError{Input: id.String()}
	}
	return nil
}

// ParseComponentID parses a decimal component id.
func ParseComponentID(s string) (ComponentID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &InvalidComponentIDError{Input: s}
	}
	id := ComponentID(n)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// ParseComponentIDs parses every element of args, failing on the first bad one.
func ParseComponentIDs(args []string) ([]ComponentID, error) {
	ids := make([]ComponentID, 0, len(args))
	for _, a := range args {
		id, err := ParseComponentID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Error implements the error interface for InvalidComponentIDError.
func (e *InvalidComponentIDError) Error() string {
	return fmt.Sprintf("invalid component id %q: must be a positive integer", e.Input)
}

// Unwrap returns ErrInvalidComponentID for errors.Is() compatibility.
func (e *InvalidComponentIDError) Unwrap() error { return ErrInvalidComponentID }
