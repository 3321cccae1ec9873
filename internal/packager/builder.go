// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/pkg/types"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"
)

type (
	// Builder assembles archives from a catalog. It holds no per-build state.
	Builder struct {
		catalog *catalog.Catalog
		opts    options
	}

	// Entry describes one file written into an archive.
	Entry struct {
		ComponentID types.ComponentID `json:"componentId"`
		Name        string            `json:"name"`
		Size        int64             `json:"size"`
		SHA256      string            `json:"sha256"`
	}

	// Archive is a finished build.
	Archive struct {
		// ID identifies the build in logs and the X-Build-Id response header.
		ID string
		// Filename is the suggested download name.
		Filename  string
		CreatedAt time.Time
		Entries   []Entry
		Data      []byte
	}

	// source is a component file loaded into memory ahead of archiving.
	source struct {
		component catalog.Component
		info      fs.FileInfo
		data      []byte
	}
)

// New returns a Builder over cat.
func New(cat *catalog.Catalog, opts ...Option) (*Builder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := ValidateCompressionLevel(o.level); err != nil {
		return nil, fmt.Errorf("%w: %d", err, o.level)
	}
	return &Builder{catalog: cat, opts: o}, nil
}

// Build resolves ids and returns a complete zip archive with one entry per id,
// in request order. Files are re-read on every call.
func (b *Builder) Build(ctx context.Context, ids []types.ComponentID) (*Archive, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	components, err := b.catalog.Resolve(ids)
	if err != nil {
		return nil, err
	}

	sources, err := b.readSources(ctx, components)
	if err != nil {
		return nil, err
	}

	now := b.opts.clock()
	data, entries, err := b.writeArchive(sources, now)
	if err != nil {
		return nil, err
	}

	archive := &Archive{
		ID:        uuid.NewString(),
		Filename:  fmt.Sprintf("%s-%d.zip", b.opts.prefix, now.UnixMilli()),
		CreatedAt: now,
		Entries:   entries,
		Data:      data,
	}

	b.opts.logger.Debug("archive built",
		"build", archive.ID,
		"entries", len(entries),
		"bytes", len(data),
	)
	return archive, nil
}

// checkIDs rejects empty requests and repeated ids; each id maps to exactly one entry.
func checkIDs(ids []types.ComponentID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no components requested", ErrInvalidRequest)
	}
	seen := make(map[types.ComponentID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: component %d requested more than once", ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// readSources loads every component file concurrently. Results keep the
// resolution order regardless of which read finishes first.
func (b *Builder) readSources(ctx context.Context, components []catalog.Component) ([]source, error) {
	sources := make([]source, len(components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.maxConcurrency)

	for i, comp := range components {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, data, err := b.readFile(comp)
			if err != nil {
				return &FileReadError{ComponentID: comp.ID, Path: b.catalog.SourcePath(comp), Err: err}
			}
			sources[i] = source{component: comp, info: info, data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (b *Builder) readFile(comp catalog.Component) (info fs.FileInfo, data []byte, err error) {
	f, err := b.catalog.Open(comp)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err = f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("not a regular file (mode %s)", info.Mode())
	}

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return info, data, nil
}

// writeArchive compresses sources into an in-memory zip. The buffer is only
// returned once the central directory has been written. Files without a
// modification time, such as embedded ones, are stamped with now.
func (b *Builder) writeArchive(sources []source, now time.Time) ([]byte, []Entry, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	level := b.opts.level
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	entries := make([]Entry, 0, len(sources))
	for _, src := range sources {
		name := src.component.EntryName()

		header, err := zip.FileInfoHeader(src.info)
		if err != nil {
			return nil, nil, &ArchiveWriteError{Entry: name, Err: err}
		}
		header.Name = name
		header.Method = zip.Deflate
		if header.Modified.IsZero() {
			header.Modified = now
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, nil, &ArchiveWriteError{Entry: name, Err: err}
		}
		if _, err := w.Write(src.data); err != nil {
			return nil, nil, &ArchiveWriteError{Entry: name, Err: err}
		}

		sum := sha256.Sum256(src.data)
		entries = append(entries, Entry{
			ComponentID: src.component.ID,
			Name:        name,
			Size:        int64(len(src.data)),
			SHA256:      hex.EncodeToString(sum[:]),
		})
	}

	if err := zw.Close(); err != nil {
		return nil, nil, &ArchiveWriteError{Err: err}
	}
	return buf.Bytes(), entries, nil
}
