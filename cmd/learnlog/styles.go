package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	achievedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	celebrate     = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
)

const barWidth = 20

// progressBar renders pct (0..100) as a fixed-width bar.
func progressBar(pct int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

// milestoneBanner renders the celebration box for a new milestone.
func milestoneBanner(title, reward string) string {
	body := "Milestone achieved: " + title
	if reward != "" {
		body += "\n" + reward
	}
	return celebrate.Render(body)
}

func fraction(cur, req int) string {
	return fmt.Sprintf("%d/%d", cur, req)
}
