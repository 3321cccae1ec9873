// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the chatpack command tree.
//
// Every command receives an *App, the composition root that loads
// configuration and builds the catalog, package builder, API client and
// logger on demand. Failures are rendered by the command itself and returned
// as *ExitError so Execute can pick the process exit code.
package cmd
