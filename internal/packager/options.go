// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
)

const (
	// DefaultFilenamePrefix matches the download name the web UI has always used.
	DefaultFilenamePrefix = "chatbot-package"
	// DefaultCompressionLevel is flate's best compression.
	DefaultCompressionLevel = flate.BestCompression
)

type (
	// Option configures a Builder.
	Option func(*options)

	options struct {
		level          int
		clock          func() time.Time
		prefix         string
		maxConcurrency int
		logger         *log.Logger
	}
)

func defaultOptions() options {
	return options{
		level:          DefaultCompressionLevel,
		clock:          time.Now,
		prefix:         DefaultFilenamePrefix,
		maxConcurrency: runtime.GOMAXPROCS(0),
		logger:         log.New(io.Discard),
	}
}

// WithCompressionLevel sets the deflate level (-2 huffman-only through 9 best).
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithClock replaces time.Now for the filename timestamp.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithFilenamePrefix sets the suggested download name prefix.
func WithFilenamePrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithMaxConcurrency bounds how many component files are read at once.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// ValidateCompressionLevel reports whether level is accepted by flate.
func ValidateCompressionLevel(level int) error {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return ErrInvalidCompressionLevel
	}
	return nil
}
