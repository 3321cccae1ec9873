// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type stopCounter struct {
	calls int
	err   error
}

func (s *stopCounter) Stop() error {
	s.calls++
	return s.err
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	WriteFiles(t, dir, map[string]string{
		"a.txt":        "alpha",
		"nested/b.txt": "beta",
	})

	for name, want := range map[string]string{"a.txt": "alpha", "nested/b.txt": "beta"} {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestMustSetenv(t *testing.T) {
	const key = "CHATPACK_TESTUTIL_SETENV"
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}

	restore := MustSetenv(t, key, "on")
	if got := os.Getenv(key); got != "on" {
		t.Errorf("env = %q, want on", got)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("env should be unset after restore")
	}
}

func TestStopHelpers(t *testing.T) {
	t.Parallel()

	s := &stopCounter{err: errors.New("already closed")}
	MustStop(t, s)
	DeferStop(t, s)()
	if s.calls != 2 {
		t.Errorf("Stop called %d times, want 2", s.calls)
	}
}

func TestFakeClock(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	start := c.Now()
	if start.Year() != 2020 {
		t.Errorf("default start = %v", start)
	}

	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("advanced by %v", got)
	}

	at := time.UnixMilli(1700000000000)
	c.Set(at)
	if !c.Now().Equal(at) {
		t.Errorf("Now() = %v, want %v", c.Now(), at)
	}
}
