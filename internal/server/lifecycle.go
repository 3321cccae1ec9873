// SPDX-License-Identifier: MPL-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/chatpack/chatpack/internal/core/serverbase"
)

// Start binds the listener and blocks until the server is accepting requests,
// startup fails, or ctx is done. The serve loop marks the server running
// before it accepts, so failures after that point arrive on Err.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		s.Fail(err)
		return err
	}
	if err := s.BeginStart(ctx); err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	addr := s.cfg.Addr()
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.Fail(fmt.Errorf("failed to listen on %s: %w", addr, err))
		return s.LastError()
	}

	srv := s.newHTTPServer()

	s.srvMu.Lock()
	s.listener = listener
	s.addr = listener.Addr().String()
	s.srv = srv
	s.srvMu.Unlock()

	s.Go(func(context.Context) { s.serve(srv, listener) })

	if err := s.WaitReady(startupCtx); err != nil {
		_ = listener.Close()
		s.Fail(fmt.Errorf("startup timeout: %w", err))
		return s.LastError()
	}
	s.logger.Info("server started",
		"address", s.Address(),
		"components", s.catalog.Len(),
		"components_dir", s.catalog.Dir(),
	)
	return nil
}

func (s *Server) serve(srv *http.Server, listener net.Listener) {
	s.MarkRunning()

	err := srv.Serve(listener)
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return
	}
	s.logger.Error("serve failed", "error", err)
	s.SendError(fmt.Errorf("serve error: %w", err))
}

// Stop drains in-flight requests for up to the configured shutdown timeout.
// It is safe to call more than once and on a server that never started.
func (s *Server) Stop() error {
	if !s.BeginStop() {
		s.Base.Wait()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	s.srvMu.Lock()
	if s.srv != nil {
		if err := s.srv.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("graceful shutdown: %w", err)
			_ = s.srv.Close()
		}
	}
	s.srvMu.Unlock()

	s.Base.Wait()
	s.MarkStopped()
	s.logger.Info("server stopped")
	return shutdownErr
}

// Wait blocks until the serve loop exits and returns the failure cause, if any.
func (s *Server) Wait() error {
	s.Base.Wait()
	if s.State() == serverbase.StateFailed {
		return s.LastError()
	}
	return nil
}

// Address returns the bound host:port, or "" before Start succeeds.
func (s *Server) Address() string {
	s.srvMu.Lock()
	defer s.srvMu.Unlock()
	return s.addr
}

// URL returns an http URL for the bound address. A wildcard host is replaced
// by loopback so the result can be dialed.
func (s *Server) URL() string {
	addr := s.Address()
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
