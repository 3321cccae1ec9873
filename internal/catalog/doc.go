// SPDX-License-Identifier: MPL-2.0

// Package catalog holds the immutable list of components that can be packaged.
//
// A Catalog is built once at startup, either from the definition embedded in the
// binary (catalog.cue) or from a user-supplied catalog file, and is then passed
// by value to every consumer. Nothing in this package mutates a Catalog after
// construction, so it is safe for concurrent use without locking.
package catalog
