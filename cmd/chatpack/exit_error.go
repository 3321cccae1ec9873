// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/client"
	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps err to a process exit code: ExitUsage for requests
// the caller can fix by changing arguments, ExitUnavailable when no server
// answered, ExitFailure otherwise.
func classifyExitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnreachable):
		return types.ExitUnavailable
	case errors.Is(err, types.ErrInvalidComponentID),
		errors.Is(err, packager.ErrInvalidRequest),
		errors.Is(err, catalog.ErrUnknownComponent):
		return types.ExitUsage
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound {
			return types.ExitUsage
		}
	}
	return types.ExitFailure
}
