// SPDX-License-Identifier: MPL-2.0

// Package server exposes the component catalog and the package builder over
// HTTP, and serves the browser UI from the same origin.
//
// Routes:
//
//	GET  /api/components  list the catalog
//	POST /api/build       build a zip from {"components":[ids]}
//	GET  /health          liveness check
//	GET  /                embedded browser UI
//
// API failures use the envelope {"success":false,"error":"..."}.
package server
