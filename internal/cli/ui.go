package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/materialkit/matdump/pkg/export"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
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

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleSkipped = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconSkipped = "="
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + msg)
}

// printInfo prints an informational message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints muted secondary text, indented under the previous line.
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printSummary prints the per-material outcomes and totals of a batch run.
func printSummary(s *export.Summary) {
	fmt.Println(StyleTitle.Render("Export: " + s.Library))
	for _, o := range s.Outcomes {
		switch {
		case o.Err != nil:
			printError("%s %s", o.Material, StyleDim.Render("("+o.Err.Error()+")"))
		case o.Skipped:
			fmt.Println(styleSkipped.Render(iconSkipped) + " " + o.Material + " " + StyleDim.Render("(unchanged)"))
		default:
			printSuccess("%s %s", o.Material, StyleDim.Render(o.Filename))
		}
	}

	totals := fmt.Sprintf("%d exported, %d unchanged, %d failed (%s)",
		s.Succeeded(), s.Skipped(), s.Failed(), s.Elapsed.Round(1e6))
	if s.Failed() > 0 {
		printWarning("%s", totals)
	} else {
		printInfo("%s", totals)
	}
	printDetail("run %s", s.RunID)
}
