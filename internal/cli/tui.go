package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ReportListModel - Interactive report selection
// =============================================================================

// ReportListModel is the bubbletea model for picking a stored report.
type ReportListModel struct {
	Records  []store.Record
	Cursor   int
	Selected *store.Record
	Height   int
	Offset   int
}

// NewReportListModel creates a picker over recs, newest first as listed.
func NewReportListModel(recs []store.Record) ReportListModel {
	return ReportListModel{Records: recs, Height: 15}
}

func (m ReportListModel) Init() tea.Cmd {
	return nil
}

func (m ReportListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Records) == 0 {
				return m, tea.Quit
			}
			rec := m.Records[m.Cursor]
			m.Selected = &rec
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ReportListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Report"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Records))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			recordName(r),
			fmt.Sprint(r.Report.Crossings),
			fmt.Sprint(r.Report.Segments),
			fmt.Sprint(r.Report.LongestPathLength),
			formatRelativeTime(r.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Diagram", "Crossings", "Segments", "Path", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorDim)
			}
			if idx != m.Cursor {
				return base
			}
			if m.Records[idx].Report.Crossings > 0 && col == 2 {
				return base.Foreground(colorYellow).Bold(true)
			}
			return base.Foreground(colorCyan).Bold(true)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// pickReport runs the picker and prints the chosen report. Quitting without
// a choice prints nothing.
func pickReport(recs []store.Record) error {
	final, err := tea.NewProgram(NewReportListModel(recs)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ReportListModel); ok && m.Selected != nil {
		fmt.Println(formatRecord(m.Selected))
	}
	return nil
}

// formatRecord renders a stored report the way the metrics command does.
func formatRecord(r *store.Record) string {
	return formatReport(r.DiagramName, &pipeline.Result{Report: r.Report, RecordID: r.ID, DiagramHash: r.DiagramHash})
}

// recordName falls back to a short hash for unnamed diagrams.
func recordName(r store.Record) string {
	if r.DiagramName != "" {
		return r.DiagramName
	}
	return r.DiagramHash[:min(12, len(r.DiagramHash))]
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
