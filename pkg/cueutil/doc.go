// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Both the configuration file and the component catalog go through the same
// three steps: compile the schema, unify the user document with a schema
// definition, then validate and decode into a Go value.
//
//	//go:embed catalog_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[catalogFile](schema, data, "#Catalog",
//	    cueutil.WithFilename("catalog.cue"))
package cueutil
