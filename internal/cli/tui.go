package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/depexplain/depexplain/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// findingsModel is the bubbletea model for browsing a report's findings.
// The left list holds one row per finding; the detail pane shows the full
// explanation of the row under the cursor.
type findingsModel struct {
	report *report.Report
	cursor int
	height int
	offset int
	width  int
}

func newFindingsModel(rep *report.Report) findingsModel {
	return findingsModel{report: rep, height: 15, width: 80}
}

func (m findingsModel) Init() tea.Cmd {
	return nil
}

func (m findingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.report.Findings)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m findingsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Conflicts") + " " + listDimStyle.Render(m.report.Input))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.report.Findings) {
		end = len(m.report.Findings)
	}

	for i := m.offset; i < end; i++ {
		f := m.report.Findings[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		severity := severityStyle(f.Severity).Render(fmt.Sprintf("%-8s", f.Severity))
		b.WriteString(cursor + severity + " " + style.Render(strings.Join(f.Packages, " / ")))
		b.WriteString("\n")
	}

	if len(m.report.Findings) > 0 {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.report.Findings[m.cursor]))
	}

	return b.String()
}

func (m findingsModel) detailView(f report.Finding) string {
	wrap := lipgloss.NewStyle().Width(m.width - 4)

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(f.Explanation.Summary))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s · source: %s", f.Left, f.Right, f.Explanation.Source)))
	b.WriteString("\n\n")
	b.WriteString(wrap.Render("Why: " + f.Explanation.Why))
	b.WriteString("\n")
	b.WriteString(wrap.Render("Fix: " + f.Explanation.Fix))
	return b.String()
}

// runFindingsTUI opens the interactive findings browser for a report.
func runFindingsTUI(rep *report.Report) error {
	if rep.Compatible {
		printSuccess("No conflicts detected")
		return nil
	}
	_, err := tea.NewProgram(newFindingsModel(rep)).Run()
	return err
}
