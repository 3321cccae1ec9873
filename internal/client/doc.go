// SPDX-License-Identifier: MPL-2.0

// Package client talks to a running chatpack server. Calls are never
// retried; a failed request surfaces immediately as an *APIError or a
// transport error wrapping ErrUnreachable.
package client
