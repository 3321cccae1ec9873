// SPDX-License-Identifier: MPL-2.0

// Package issue carries user-facing failures: ActionableError adds the
// operation, resource and remediation hints to an error, and the issue guides
// are Markdown troubleshooting pages rendered with glamour.
package issue
