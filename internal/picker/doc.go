// SPDX-License-Identifier: MPL-2.0

// Package picker is the terminal counterpart of the browser UI: a Bubble Tea
// model that lists the catalog, keeps an ordered selection and builds a
// package on request.
package picker
