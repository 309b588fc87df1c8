package cli

import "github.com/charmbracelet/lipgloss"

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	unreadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)
