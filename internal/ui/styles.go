package ui

import "github.com/charmbracelet/lipgloss"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#2F6FED", Dark: "#5C9DFF"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	text      = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#fafafa"}
	muted     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			MarginBottom(1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(1, 2)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(highlight).
				Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(special)

	MutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight)

	TagStyle = lipgloss.NewStyle().
			Foreground(special).
			Padding(0, 1).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	ToastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(special).
			Padding(0, 1)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(2, 3).
			Align(lipgloss.Center)

	FooterStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true).
			Padding(0, 1)
)

const (
	PinIcon   = "📍"
	NoteIcon  = "📝"
	GlobeIcon = "🌐"
	PhotoIcon = "🖼"
	AudioIcon = "🎙"
)
