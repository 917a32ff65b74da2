package picker

import "github.com/charmbracelet/lipgloss"

var (
	previewPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12"))

	previewEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242")).
				Italic(true)
)

func joinColumns(left, right string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}
