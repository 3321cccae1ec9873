// SPDX-License-Identifier: MPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/pkg/types"
)

const (
	// HeaderBuildID carries the archive's build id on successful builds.
	HeaderBuildID = "X-Build-Id"

	contentTypeJSON = "application/json"
	contentTypeZip  = "application/zip"
)

type (
	// ComponentsResponse is the body of GET /api/components.
	ComponentsResponse struct {
		Success    bool                `json:"success"`
		Components []catalog.Component `json:"components"`
	}

	// BuildRequest is the body of POST /api/build.
	BuildRequest struct {
		Components []types.ComponentID `json:"components"`
	}

	// ErrorResponse is the envelope for every API failure.
	ErrorResponse struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	writeJSON(w, http.StatusOK, ComponentsResponse{
		Success:    true,
		Components: s.catalog.List(),
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	req, err := decodeBuildRequest(w, r, s.cfg.MaxBodyBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	archive, err := s.builder.Build(r.Context(), req.Components)
	if errors.Is(err, context.Canceled) {
		// The client went away; there is nobody left to answer.
		s.logger.Debug("build canceled",
			"request", RequestID(r.Context()),
			"components", req.Components,
		)
		return
	}
	if err != nil {
		status, msg := classify(err)
		s.logger.Warn("build failed",
			"request", RequestID(r.Context()),
			"components", req.Components,
			"status", status,
			"error", err,
		)
		writeError(w, status, msg)
		return
	}

	s.logger.Info("build served",
		"request", RequestID(r.Context()),
		"build", archive.ID,
		"components", req.Components,
		"bytes", len(archive.Data),
	)

	h := w.Header()
	h.Set("Content-Type", contentTypeZip)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Filename))
	h.Set("Content-Length", strconv.Itoa(len(archive.Data)))
	h.Set(HeaderBuildID, archive.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "no such endpoint: "+r.URL.Path)
}

// decodeBuildRequest reads a single JSON object of at most limit bytes.
func decodeBuildRequest(w http.ResponseWriter, r *http.Request, limit int64) (BuildRequest, error) {
	var req BuildRequest

	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return req, fmt.Errorf("malformed request body: %w", err)
	}
	if dec.More() {
		return req, errors.New("malformed request body: trailing data after JSON object")
	}
	return req, nil
}

// classify maps a build error to an HTTP status and the message returned to
// the caller. Server-side failures do not expose file paths.
func classify(err error) (int, string) {
	var fileErr *packager.FileReadError
	switch {
	case errors.Is(err, packager.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrUnknownComponent):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &fileErr):
		return http.StatusInternalServerError, fmt.Sprintf("component %d: source file could not be read", fileErr.ComponentID)
	case errors.Is(err, packager.ErrArchiveWrite):
		return http.StatusInternalServerError, "failed to write archive"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}
