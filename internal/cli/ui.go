package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(14)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCross   = "×"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Report
// =============================================================================

// formatReport renders a metrics result for the terminal.
func formatReport(name string, res *pipeline.Result) string {
	var b strings.Builder
	r := res.Report

	title := "Layout metrics"
	if name != "" {
		title += " " + StyleValue.Render(name)
	}
	b.WriteString(StyleTitle.Render(title) + "\n")

	crossings := StyleNumber.Render(fmt.Sprint(r.Crossings))
	if r.Crossings > 0 {
		crossings = StyleWarning.Render(fmt.Sprint(r.Crossings)) + " " + styleIconWarning.Render(iconWarning)
	}
	writeKeyValue(&b, "crossings", crossings)
	writeKeyValue(&b, "segments", StyleNumber.Render(fmt.Sprint(r.Segments)))
	writeKeyValue(&b, "longest path", StyleNumber.Render(fmt.Sprint(r.LongestPathLength))+StyleDim.Render(" nodes"))
	if len(r.LongestPath) > 0 {
		writeKeyValue(&b, "", StyleValue.Render(strings.Join(r.LongestPath, " "+iconArrow+" ")))
	}

	for _, c := range res.Crossings {
		writeKeyValue(&b, "", StyleDim.Render(fmt.Sprintf("%s %s %s (segments %d, %d)", c.FlowA, iconCross, c.FlowB, c.A, c.B)))
	}

	b.WriteString(formatStats(r.NodeCount, r.FlowCount, res.CacheHit))
	if res.RecordID != "" {
		b.WriteString("\n" + StyleDim.Render("  saved as "+res.RecordID))
	}
	return b.String()
}

func writeKeyValue(b *strings.Builder, key, value string) {
	b.WriteString(styleKey.Render(key) + " " + value + "\n")
}

// formatStats renders counts and cache status on one dim line.
func formatStats(nodeCount, flowCount int, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d flows", flowCount),
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + statusStyle.Render(status)
}
