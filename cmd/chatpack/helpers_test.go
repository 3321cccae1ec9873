// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/internal/packager"
	"github.com/chatpack/chatpack/internal/server"
	"github.com/chatpack/chatpack/internal/testutil"
)

// lockedBuffer is a bytes.Buffer safe for the server goroutines that log
// while a command runs.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fixture is a components directory with a two-entry YAML catalog.
type fixture struct {
	dir     string
	catalog string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"components/greeting.py": "def greet():\n    return 'hello'\n",
		"components/farewell.py": "def bye():\n    return 'bye'\n",
		"catalog.yaml": `components:
  - id: 1
    name: Greeting
    description: Says hello
    file: greeting.py
  - id: 2
    name: Farewell
    description: Says goodbye
    file: farewell.py
`,
	})
	return fixture{
		dir:     filepath.Join(dir, "components"),
		catalog: filepath.Join(dir, "catalog.yaml"),
	}
}

func (f fixture) localFlags() []string {
	return []string{"--local", "--components-dir", f.dir, "--catalog", f.catalog}
}

// startAPI serves the fixture catalog on an httptest server.
func (f fixture) startAPI(t *testing.T) *httptest.Server {
	t.Helper()

	cat, err := catalog.LoadFile(f.catalog, f.dir)
	if err != nil {
		t.Fatalf("catalog.LoadFile() error = %v", err)
	}
	b, err := packager.New(cat)
	if err != nil {
		t.Fatalf("packager.New() error = %v", err)
	}
	ts := httptest.NewServer(server.New(server.DefaultConfig(), cat, b).Handler())
	t.Cleanup(ts.Close)
	return ts
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes chatpack with args against an isolated config directory.
func runCLI(t *testing.T, ctx context.Context, args ...string) cliResult {
	t.Helper()
	app, stdout, stderr := newTestApp(t)
	return runApp(t, ctx, app, stdout, stderr, args...)
}

func newTestApp(t *testing.T) (*App, *lockedBuffer, *lockedBuffer) {
	t.Helper()
	var stdout, stderr lockedBuffer
	app := NewApp(Dependencies{
		Stdout:    &stdout,
		Stderr:    &stderr,
		ConfigDir: t.TempDir(),
	})
	return app, &stdout, &stderr
}

func runApp(t *testing.T, ctx context.Context, app *App, stdout, stderr *lockedBuffer, args ...string) cliResult {
	t.Helper()

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(""))

	err := root.ExecuteContext(ctx)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
