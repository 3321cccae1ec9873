// SPDX-License-Identifier: MPL-2.0

package picker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chatpack/chatpack/internal/catalog"
	"github.com/chatpack/chatpack/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	statusNone statusKind = iota
	statusBusy
	statusOK
	statusError
)

// ErrNoComponents is returned by New for an empty catalog.
var ErrNoComponents = errors.New("no components to pick from")

type (
	// Result is a finished build as seen by the picker.
	Result struct {
		Filename string
		BuildID  string
		Data     []byte
	}

	// BuildFunc produces an archive for ids. It runs off the UI goroutine.
	BuildFunc func(ctx context.Context, ids []types.ComponentID) (*Result, error)

	// Options configures a Model.
	Options struct {
		// OutputDir receives built archives (default ".").
		OutputDir string
		// Build is required.
		Build BuildFunc
	}

	// Model is the picker's view-controller. Every state change goes through Update.
	Model struct {
		ctx        context.Context
		components []catalog.Component
		cursor     int
		selection  Selection
		building   bool
		status     string
		statusKind statusKind
		outputDir  string
		build      BuildFunc
		saved      []string
		quitting   bool
	}

	statusKind int

	builtMsg struct {
		path    string
		buildID string
		entries int
	}

	buildFailedMsg struct {
		err error
	}
)

// New returns a picker over components. ctx bounds builds started from the UI.
func New(ctx context.Context, components []catalog.Component, opts Options) (*Model, error) {
	if len(components) == 0 {
		return nil, ErrNoComponents
	}
	if opts.Build == nil {
		return nil, errors.New("picker: build function is required")
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	return &Model{
		ctx:        ctx,
		components: components,
		outputDir:  dir,
		build:      opts.Build,
	}, nil
}

// Run shows the picker until the user quits and returns the paths of every
// archive written during the session.
func Run(ctx context.Context, components []catalog.Component, opts Options, teaOpts ...tea.ProgramOption) ([]string, error) {
	m, err := New(ctx, components, opts)
	if err != nil {
		return nil, err
	}
	teaOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, teaOpts...)
	final, err := tea.NewProgram(m, teaOpts...).Run()
	if err != nil {
		return nil, err
	}
	return final.(*Model).Saved(), nil
}

// Selected returns the selected ids in selection order.
func (m *Model) Selected() []types.ComponentID {
	return m.selection.IDs()
}

// Saved returns the archive paths written so far.
func (m *Model) Saved() []string {
	return append([]string(nil), m.saved...)
}

// Status returns the current status line text.
func (m *Model) Status() string {
	return m.status
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case builtMsg:
		m.building = false
		m.saved = append(m.saved, msg.path)
		m.setStatus(statusOK, fmt.Sprintf("Saved %s (%d components, build %s)", msg.path, msg.entries, shortID(msg.buildID)))
		return m, nil

	case buildFailedMsg:
		m.building = false
		m.setStatus(statusError, "Build failed: "+msg.err.Error())
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.components)-1 {
			m.cursor++
		}

	case " ", "x":
		if m.building {
			return m, nil
		}
		m.selection.Toggle(m.components[m.cursor].ID)
		m.setStatus(statusNone, "")

	case "c":
		if m.building || m.selection.Len() == 0 {
			return m, nil
		}
		m.selection.Clear()
		m.setStatus(statusNone, "")

	case "enter", "b":
		return m, m.startBuild()
	}
	return m, nil
}

// startBuild returns nil while a build is running or nothing is selected.
func (m *Model) startBuild() tea.Cmd {
	if m.building || m.selection.Len() == 0 {
		return nil
	}
	m.building = true
	m.setStatus(statusBusy, "Building package...")

	ctx, ids, dir, build := m.ctx, m.selection.IDs(), m.outputDir, m.build
	return func() tea.Msg {
		res, err := build(ctx, ids)
		if err != nil {
			return buildFailedMsg{err: err}
		}
		path, err := save(dir, res)
		if err != nil {
			return buildFailedMsg{err: err}
		}
		return builtMsg{path: path, buildID: res.BuildID, entries: len(ids)}
	}
}

// save writes res into dir under its suggested name.
func save(dir string, res *Result) (string, error) {
	name := filepath.Base(res.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", errors.New("build returned no filename")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return path, nil
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Chatbot Package Builder"))
	b.WriteString("\n\n")

	for i, comp := range m.components {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		name := comp.Name
		if m.selection.Contains(comp.ID) {
			box = selectedStyle.Render("[x]")
			name = selectedStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, box, name, descStyle.Render("("+comp.File+")"))
		if i == m.cursor && comp.Description != "" {
			fmt.Fprintf(&b, "      %s\n", descStyle.Render(comp.Description))
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}

	help := "↑/↓ move • space select • c clear • enter build • q quit"
	if m.selection.Len() == 0 {
		help = "↑/↓ move • space select • q quit"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d selected • %s", m.selection.Len(), help)))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderStatus() string {
	switch m.statusKind {
	case statusBusy:
		return busyStyle.Render(m.status)
	case statusOK:
		return okStyle.Render(m.status)
	case statusError:
		return errStyle.Render(m.status)
	default:
		return m.status
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
