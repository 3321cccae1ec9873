// SPDX-License-Identifier: MPL-2.0

package picker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
)

var testComponents = []catalog.Component{
	{ID: 1, Name: "Response Handler", Description: "Routes replies", File: "response_handler.py"},
	{ID: 2, Name: "Conversation Logger", File: "logger.py"},
	{ID: 3, Name: "Data Processor", File: "data_processor.py"},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press feeds keys to m and returns the command produced by the last one.
func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func newModel(t *testing.T, build BuildFunc) (*Model, string) {
	t.Helper()
	if build == nil {
		build = func(context.Context, []types.ComponentID) (*Result, error) {
			return nil, errors.New("unexpected build")
		}
	}
	dir := t.TempDir()
	m, err := New(context.Background(), testComponents, Options{OutputDir: dir, Build: build})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, dir
}

func TestSelection(t *testing.T) {
	t.Parallel()

	var s Selection
	if !s.Toggle(3) || !s.Toggle(1) || !s.Toggle(2) {
		t.Fatal("Toggle on new ids should report selected")
	}
	if s.Toggle(1) {
		t.Error("Toggle on selected id should report deselected")
	}
	if s.Contains(1) {
		t.Error("1 should be deselected")
	}
	s.Toggle(1)

	want := []types.ComponentID{3, 2, 1}
	if got := s.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	ids := s.IDs()
	ids[0] = 99
	if s.Contains(99) {
		t.Error("IDs() must return a copy")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	build := func(context.Context, []types.ComponentID) (*Result, error) { return nil, nil }

	if _, err := New(context.Background(), nil, Options{Build: build}); !errors.Is(err, ErrNoComponents) {
		t.Errorf("empty catalog error = %v", err)
	}
	if _, err := New(context.Background(), testComponents, Options{}); err == nil {
		t.Error("missing build func should fail")
	}
}

func TestCursorAndToggle(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t, nil)
	press(m, "up", "space", "down", "down", "down", "x", "k", "space")

	want := []types.ComponentID{1, 3, 2}
	if got := m.Selected(); !slices.Equal(got, want) {
		t.Errorf("Selected() = %v, want %v", got, want)
	}

	press(m, "j", "space")
	if got := m.Selected(); !slices.Equal(got, []types.ComponentID{1, 2}) {
		t.Errorf("after deselect Selected() = %v", got)
	}
}

func TestClearSelection(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t, nil)
	press(m, "space", "down", "space")
	if !strings.Contains(m.View(), "c clear") {
		t.Error("help should offer clear while something is selected")
	}

	press(m, "c")
	if got := m.Selected(); len(got) != 0 {
		t.Errorf("Selected() after clear = %v, want none", got)
	}
	if !strings.Contains(m.View(), "0 selected") {
		t.Error("view should report an empty selection")
	}
	if cmd := press(m, "enter"); cmd != nil {
		t.Error("enter after clear should not start a build")
	}

	press(m, "space")
	if got := m.Selected(); !slices.Equal(got, []types.ComponentID{2}) {
		t.Errorf("Selected() after reselect = %v, want [2]", got)
	}
}

func TestBuildDisabledWithoutSelection(t *testing.T) {
	t.Parallel()

	called := false
	m, _ := newModel(t, func(context.Context, []types.ComponentID) (*Result, error) {
		called = true
		return nil, nil
	})

	if cmd := press(m, "enter"); cmd != nil {
		t.Error("enter with empty selection should not start a build")
	}
	if called {
		t.Error("build func should not run")
	}
	if strings.Contains(m.View(), "enter build") {
		t.Error("help should not offer build with nothing selected")
	}
}

func TestBuildSuccess(t *testing.T) {
	t.Parallel()

	var got []types.ComponentID
	m, dir := newModel(t, func(_ context.Context, ids []types.ComponentID) (*Result, error) {
		got = ids
		return &Result{Filename: "chatbot-package-7.zip", BuildID: "0123456789abcdef", Data: []byte("PK")}, nil
	})

	press(m, "down", "space", "up", "space")
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should start a build")
	}
	if !strings.Contains(m.Status(), "Building") {
		t.Errorf("status while building = %q", m.Status())
	}
	if again := press(m, "b"); again != nil {
		t.Error("second build while one is running should be ignored")
	}
	if press(m, "space"); !slices.Equal(m.Selected(), []types.ComponentID{2, 1}) {
		t.Error("selection must not change while building")
	}

	m.Update(cmd())

	if !slices.Equal(got, []types.ComponentID{2, 1}) {
		t.Errorf("build ids = %v, want [2 1]", got)
	}
	path := filepath.Join(dir, "chatbot-package-7.zip")
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "PK" {
		t.Fatalf("archive not written: %v", err)
	}
	if !strings.Contains(m.Status(), "Saved") || !strings.Contains(m.Status(), "01234567") {
		t.Errorf("status = %q", m.Status())
	}
	if saved := m.Saved(); len(saved) != 1 || saved[0] != path {
		t.Errorf("Saved() = %v", saved)
	}
}

func TestBuildFailureAllowsRetry(t *testing.T) {
	t.Parallel()

	attempts := 0
	m, _ := newModel(t, func(context.Context, []types.ComponentID) (*Result, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("unknown component 9")
		}
		return &Result{Filename: "ok.zip", Data: []byte("PK")}, nil
	})

	press(m, "space")
	m.Update(press(m, "enter")())

	if attempts != 1 {
		t.Fatalf("attempts = %d", attempts)
	}
	if !strings.Contains(m.Status(), "unknown component 9") {
		t.Errorf("status = %q", m.Status())
	}
	if len(m.Saved()) != 0 {
		t.Error("nothing should be saved after a failure")
	}

	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("manual retry should start a new build")
	}
	m.Update(cmd())
	if attempts != 2 || len(m.Saved()) != 1 {
		t.Errorf("attempts = %d, saved = %v", attempts, m.Saved())
	}
}

func TestBuildWithoutFilename(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t, func(context.Context, []types.ComponentID) (*Result, error) {
		return &Result{Data: []byte("PK")}, nil
	})
	press(m, "space")
	m.Update(press(m, "enter")())
	if !strings.Contains(m.Status(), "no filename") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestQuit(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"q", "ctrl+c"} {
		m, _ := newModel(t, nil)
		cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not produce tea.QuitMsg", k)
		}
		if m.View() != "" {
			t.Error("view should be empty after quitting")
		}
	}
}

func TestView(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t, nil)
	press(m, "space")
	view := m.View()

	for _, want := range []string{"Response Handler", "Conversation Logger", "logger.py", "Routes replies", "1 selected", "enter build"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
