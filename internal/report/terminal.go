package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
	warning lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

// Render 返回终端汇总
func Render(r Results, art Artifacts) string {
	s := newStyles()

	lines := []string{
		s.title.Render("Final Political Framework"),
		s.header.Render(fmt.Sprintf("run %s: %d/%d turns, %s", r.RunID, r.TurnsCompleted, r.TotalTurns, r.Termination)),
	}
	if r.Error != "" {
		lines = append(lines, s.warning.Render("error: "+r.Error))
	}

	lines = append(lines,
		s.section.Render(block(s, "Proposals", r.Framework.Proposals)),
		s.section.Render(block(s, "Decisions", r.Framework.Decisions)),
		s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			kv(s, "economy", r.Framework.Metrics.Economy),
			kv(s, "fairness", r.Framework.Metrics.Fairness),
			kv(s, "equality", r.Framework.Metrics.Equality),
			kv(s, "technological progress", r.Framework.Metrics.TechnologicalProgress),
			kv(s, "political leaning", r.Framework.Leaning),
			kv(s, "average leaning", r.MeanLeaning),
			kv(s, "leaning std dev", r.StdDevLeaning),
		)),
		s.section.Render(block(s, "Final Summary", r.FinalSummary)),
	)

	files := []string{art.ResultsPath}
	if art.ChartPath != "" {
		files = append(files, art.ChartPath)
	}
	lines = append(lines, s.section.Render(s.header.Render("written: "+strings.Join(files, ", "))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func block(s styles, title, text string) string {
	body := s.empty.Render("(none)")
	if strings.TrimSpace(text) != "" {
		body = text
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.label.Render(title+":"), body)
}

func kv(s styles, key string, v float64) string {
	return s.label.Render(fmt.Sprintf("%-24s", key)) + s.value.Render(fmt.Sprintf("%6.2f", v))
}
