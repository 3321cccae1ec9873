// SPDX-License-Identifier: MPL-2.0

package picker

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	busyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)
