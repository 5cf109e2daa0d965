package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	heading   lipgloss.Style
	detail    lipgloss.Style
	key       lipgloss.Style
	warning   lipgloss.Style
	notice    lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	selected  lipgloss.Style
	selfLabel lipgloss.Style
	peerLabel lipgloss.Style
	bubble    lipgloss.Style
	timestamp lipgloss.Style
	code      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		key:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		selfLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		peerLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		bubble:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		code:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}
