package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"club-incentives/domain/verification"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	heldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderTable lays out rows with tabwriter and frames them in a box
func renderTable(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, titleStyle.Render(strings.Join(header, "\t")))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
	return boxStyle.Render(strings.TrimRight(buf.String(), "\n"))
}

// renderVerification formats a gate result with its defects
func renderVerification(result verification.Result) string {
	if result.Passed {
		return passStyle.Render("PASSED")
	}
	lines := []string{failStyle.Render(fmt.Sprintf("FAILED (%d defects)", len(result.Defects)))}
	for _, d := range result.Defects {
		lines = append(lines, "  - "+d)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
