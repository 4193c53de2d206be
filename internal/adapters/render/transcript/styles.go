package transcript

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	command      lipgloss.Style
	notification lipgloss.Style
	completion   lipgloss.Style
	failure      lipgloss.Style
	timestamp    lipgloss.Style
	detail       lipgloss.Style
	section      lipgloss.Style
	empty        lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		command:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		notification: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		completion:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		failure:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		timestamp:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		detail:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:      lipgloss.NewStyle().MarginTop(1),
		empty:        lipgloss.NewStyle().Faint(true),
	}
}
