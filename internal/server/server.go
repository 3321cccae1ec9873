// SPDX-License-Identifier: MPL-2.0

package server

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/core/serverbase"
	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/internal/server/web"

	"github.com/charmbracelet/log"
)

type (
	// Server serves the catalog, the builder and the browser UI.
	// A Server instance is single-use: once stopped or failed, create a new one.
	Server struct {
		*serverbase.Base

		cfg     Config
		catalog *catalog.Catalog
		builder *packager.Builder
		logger  *log.Logger
		handler http.Handler

		srvMu    sync.Mutex
		srv      *http.Server
		listener net.Listener
		addr     string
	}

	// Option configures a Server.
	Option func(*Server)
)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wires a server around cat and builder. Nothing listens until Start.
func New(cfg Config, cat *catalog.Catalog, builder *packager.Builder, opts ...Option) *Server {
	s := &Server{
		Base:    serverbase.NewBase(),
		cfg:     cfg.withDefaults(),
		catalog: cat,
		builder: builder,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the full middleware-wrapped handler, for mounting the API
// elsewhere or driving it with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/components", s.handleComponents)
	mux.HandleFunc("/api/build", s.handleBuild)
	mux.HandleFunc("/api/", s.handleAPINotFound)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", http.FileServerFS(web.FS))

	return withRequestID(withCORS(s.withAccessLog(mux)))
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}),
	}
}
