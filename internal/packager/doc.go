// SPDX-License-Identifier: MPL-2.0

// Package packager turns a list of component ids into a zip archive.
//
// A build resolves every id through the catalog, reads each component's source
// file and writes one deflate-compressed entry per component, named after the
// file's base name and ordered as requested. Any failure aborts the whole build:
// callers either get a complete archive or an error, never a partial archive.
//
// Builds share nothing but the read-only catalog, so a single Builder may serve
// concurrent requests.
package packager
