// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chatpack/chatpack/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a catalog file encoding.
type Format string

const (
	// FormatCUE is validated against catalog_schema.cue.
	FormatCUE Format = "cue"
	// FormatYAML accepts .yaml and .yml files.
	FormatYAML Format = "yaml"
	// FormatTOML uses [[components]] tables.
	FormatTOML Format = "toml"
	// FormatJSON is the same shape as the API's component list.
	FormatJSON Format = "json"

	schemaDefinition = "#Catalog"

	// BuiltinLocation is the Dir of a catalog served from the embedded files.
	BuiltinLocation = "(built-in)"
)

var (
	//go:embed catalog_schema.cue
	schemaCUE []byte

	//go:embed catalog.cue
	defaultCUE []byte

	//go:embed components/*.py
	builtinFiles embed.FS
)

// file is the on-disk shape shared by every format.
type file struct {
	Components []Component `json:"components" yaml:"components" toml:"components"`
}

// Default returns the built-in catalog. Component files resolve against dir,
// or against the copies embedded in the binary when dir is empty.
func Default(dir string) (*Catalog, error) {
	if dir != "" {
		return Parse(defaultCUE, FormatCUE, "catalog.cue", dir)
	}

	components, err := decode(defaultCUE, FormatCUE, "catalog.cue")
	if err != nil {
		return nil, err
	}
	cat, err := NewFS(BuiltinFiles(), BuiltinLocation, components)
	if err != nil {
		return nil, fmt.Errorf("catalog.cue: %w", err)
	}
	return cat, nil
}

// BuiltinFiles returns the component files shipped with the binary.
func BuiltinFiles() fs.FS {
	files, err := fs.Sub(builtinFiles, "components")
	if err != nil {
		panic(err) // constant, valid path
	}
	return files
}

// FormatFromPath picks a Format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (use .cue, .yaml, .yml, .toml or .json)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads a catalog definition from path. Component files resolve
// against dir; an empty dir means the catalog file's own directory.
func LoadFile(path, dir string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	if dir == "" {
		dir = filepath.Dir(path)
	}
	return Parse(data, format, path, dir)
}

// Parse decodes data in the given format and validates the result.
// name is only used in error messages.
func Parse(data []byte, format Format, name, dir string) (*Catalog, error) {
	components, err := decode(data, format, name)
	if err != nil {
		return nil, err
	}
	cat, err := New(dir, components)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cat, nil
}

func decode(data []byte, format Format, name string) ([]Component, error) {
	var f file

	switch format {
	case FormatCUE:
		res, err := cueutil.ParseAndDecode[file](schemaCUE, data, schemaDefinition, cueutil.WithFilename(name))
		if err != nil {
			return nil, err
		}
		f = *res.Value
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return f.Components, nil
}
