// SPDX-License-Identifier: MPL-2.0

// Package web embeds the browser UI served at the server root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html app.js style.css
var files embed.FS

// FS holds index.html and its assets at the root.
var FS fs.FS = files
