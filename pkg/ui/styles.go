package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#44475A"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorLong    = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorShort   = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorNeutral = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
)

var (
	styleNode      = lipgloss.NewStyle().Foreground(ColorText)
	styleNodeDim   = lipgloss.NewStyle().Foreground(ColorMuted)
	styleSelected  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	styleCluster   = lipgloss.NewStyle().Foreground(ColorAccent)
	styleStatusBar = lipgloss.NewStyle().Foreground(ColorSubtext)
	styleTitle     = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	stylePanel     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
	styleLong    = lipgloss.NewStyle().Foreground(ColorLong)
	styleShort   = lipgloss.NewStyle().Foreground(ColorShort)
	styleNeutral = lipgloss.NewStyle().Foreground(ColorNeutral)
)
