// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chatpack/chatpack/internal/platform"
	"github.com/chatpack/chatpack/pkg/types"

	"golang.org/x/exp/slices"
)

type (
	// Component is one source file offered for inclusion in a package.
	Component struct {
		ID          types.ComponentID `json:"id" yaml:"id" toml:"id"`
		Name        string            `json:"name" yaml:"name" toml:"name"`
		Description string            `json:"description" yaml:"description" toml:"description"`
		// File is slash-separated and relative to the catalog's components directory.
		File string `json:"file" yaml:"file" toml:"file"`
	}

	// Catalog is a read-only, ordered set of components whose files live in
	// a directory or in an fs.FS such as the files embedded in the binary.
	Catalog struct {
		dir        string
		files      fs.FS
		components []Component
		byID       map[types.ComponentID]int
	}
)

// EntryName is the archive entry name for the component: the base name of its file.
func (c Component) EntryName() string {
	return path.Base(c.File)
}

// New validates components and returns a Catalog rooted at dir.
// Definition order is preserved by List.
func New(dir string, components []Component) (*Catalog, error) {
	root := dir
	if root == "" {
		root = "."
	}
	return NewFS(os.DirFS(root), dir, components)
}

// NewFS is New for component files served from files. location names the
// source in logs and error messages.
func NewFS(files fs.FS, location string, components []Component) (*Catalog, error) {
	if err := Validate(components); err != nil {
		return nil, err
	}

	c := &Catalog{
		dir:        location,
		files:      files,
		components: slices.Clone(components),
		byID:       make(map[types.ComponentID]int, len(components)),
	}
	for i, comp := range c.components {
		c.byID[comp.ID] = i
	}
	return c, nil
}

// Validate checks the existence-level rules every catalog must satisfy:
// positive unique ids, non-empty names, local relative files and unique
// archive entry names.
func Validate(components []Component) error {
	var errs []error
	seenIDs := make(map[types.ComponentID]int)
	seenEntries := make(map[string]int)

	for i, comp := range components {
		prefix := fmt.Sprintf("components[%d]", i)

		if err := comp.ID.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s.id: %w", prefix, err))
		} else if first, dup := seenIDs[comp.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %d (same as components[%d])", prefix, comp.ID, first))
		} else {
			seenIDs[comp.ID] = i
		}

		if strings.TrimSpace(comp.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name: must be non-empty", prefix))
		}

		if strings.TrimSpace(comp.File) == "" {
			errs = append(errs, fmt.Errorf("%s.file: must be non-empty", prefix))
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(comp.File)) {
			errs = append(errs, fmt.Errorf("%s.file: %q must be a relative path inside the components directory", prefix, comp.File))
			continue
		}

		entry := comp.EntryName()
		if !platform.PortableEntryName(entry) {
			errs = append(errs, fmt.Errorf("%s.file: %q is not a portable file name", prefix, entry))
			continue
		}
		if first, dup := seenEntries[entry]; dup {
			errs = append(errs, fmt.Errorf("%s.file: archive entry %q collides with components[%d]", prefix, entry, first))
		} else {
			seenEntries[entry] = i
		}
	}

	if len(errs) > 0 {
		return &InvalidCatalogError{FieldErrors: errs}
	}
	return nil
}

// Dir returns the directory component files are resolved against, or
// BuiltinLocation for the embedded files.
func (c *Catalog) Dir() string {
	return c.dir
}

// Len returns the number of components.
func (c *Catalog) Len() int {
	return len(c.components)
}

// List returns every component in definition order. The slice is a copy.
func (c *Catalog) List() []Component {
	return slices.Clone(c.components)
}

// Lookup returns the component with the given id.
func (c *Catalog) Lookup(id types.ComponentID) (Component, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Component{}, false
	}
	return c.components[i], true
}

// Resolve maps ids to components in request order. The first id without a
// catalog entry fails the whole call with an UnknownComponentError.
func (c *Catalog) Resolve(ids []types.ComponentID) ([]Component, error) {
	out := make([]Component, 0, len(ids))
	for _, id := range ids {
		comp, ok := c.Lookup(id)
		if !ok {
			return nil, &UnknownComponentError{ID: id}
		}
		out = append(out, comp)
	}
	return out, nil
}

// SourcePath returns where comp's file is read from, for messages.
func (c *Catalog) SourcePath(comp Component) string {
	return filepath.Join(c.dir, filepath.FromSlash(comp.File))
}

// Open opens comp's file. Every call reads the current contents.
func (c *Catalog) Open(comp Component) (fs.File, error) {
	return c.files.Open(path.Clean(comp.File))
}
