// SPDX-License-Identifier: MPL-2.0

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/server"
	"github.com/chatpack/chatpack/pkg/types"
)

// Response limits per endpoint.
const (
	responseLimitJSON    = 2 << 20   // 2MB
	responseLimitArchive = 256 << 20 // 256MB

	defaultTimeout = 60 * time.Second
)

var (
	// ErrAPI is the sentinel error wrapped by APIError.
	ErrAPI = errors.New("server returned an error")
	// ErrUnreachable wraps transport failures: refused connections, DNS, timeouts.
	ErrUnreachable = errors.New("server unreachable")
	// ErrResponseTooLarge is returned when a body exceeds its endpoint limit.
	ErrResponseTooLarge = errors.New("response exceeds size limit")
)

type (
	// Options configures a Client. Zero values receive defaults.
	Options struct {
		// Timeout bounds each request, including reading the body (default 60s).
		Timeout time.Duration
		// HTTPClient overrides the underlying client; Timeout is then ignored.
		HTTPClient *http.Client
	}

	// Client calls the chatpack HTTP API.
	Client struct {
		baseURL    string
		httpClient *http.Client
	}

	// BuildResult is a downloaded archive.
	BuildResult struct {
		// Filename is the server's suggested name, reduced to a base name.
		Filename string
		BuildID  string
		Data     []byte
	}

	// APIError is a non-2xx response from the server.
	APIError struct {
		StatusCode int
		Method     string
		Path       string
		// Message comes from the error envelope, or the status text when the
		// body was not an envelope.
		Message string
	}
)

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap returns ErrAPI for errors.Is() compatibility.
func (e *APIError) Unwrap() error { return ErrAPI }

// New returns a client for the server at baseURL (scheme and host required).
func New(baseURL string, opts Options) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("server URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("server URL must include a host")
	}
	u.RawQuery = ""
	u.Fragment = ""

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: hc,
	}, nil
}

// BaseURL returns the normalized server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health reports whether the server answers GET /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(req, responseLimitJSON)
	return err
}

// ListComponents returns the server's catalog in definition order.
func (c *Client) ListComponents(ctx context.Context) ([]catalog.Component, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/components", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, _, err := c.do(req, responseLimitJSON)
	if err != nil {
		return nil, err
	}

	var resp server.ComponentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode components response: %w", err)
	}
	if !resp.Success {
		return nil, errors.New("decode components response: success flag not set")
	}
	return resp.Components, nil
}

// Build asks the server to package ids and returns the archive bytes.
func (c *Client) Build(ctx context.Context, ids []types.ComponentID) (*BuildResult, error) {
	payload, err := json.Marshal(server.BuildRequest{Components: ids})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/build", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/zip")

	body, header, err := c.do(req, responseLimitArchive)
	if err != nil {
		return nil, err
	}
	if ct := header.Get("Content-Type"); !strings.HasPrefix(ct, "application/zip") {
		return nil, fmt.Errorf("unexpected build response content type %q", ct)
	}

	return &BuildResult{
		Filename: FilenameFromDisposition(header.Get("Content-Disposition")),
		BuildID:  header.Get(server.HeaderBuildID),
		Data:     body,
	}, nil
}

// FilenameFromDisposition extracts a safe base filename from a
// Content-Disposition header, or "" when there is none.
func FilenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	name := path.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}

// do sends req and reads at most limit bytes of a 2xx body.
func (c *Client) do(req *http.Request, limit int64) ([]byte, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if int64(len(body)) > limit {
		return nil, nil, fmt.Errorf("%w: %s returned more than %d bytes", ErrResponseTooLarge, req.URL.Path, limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, newAPIError(req, resp.StatusCode, body)
	}
	return body, resp.Header, nil
}

func newAPIError(req *http.Request, status int, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		Method:     req.Method,
		Path:       req.URL.Path,
		Message:    http.StatusText(status),
	}
	var envelope server.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		e.Message = envelope.Error
	} else if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 512 {
		e.Message = msg
	}
	return e
}
