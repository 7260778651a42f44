package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// Palette shared by all command output.
var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorBlue   = lipgloss.Color("75")  // links and commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleHighlight for layer and field names.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleSuccessIcon = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarningIcon = lipgloss.NewStyle().Foreground(colorYellow)
	styleInfoIcon    = lipgloss.NewStyle().Foreground(colorGray)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh       = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleSuccessIcon.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleWarningIcon.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleInfoIcon.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output file with its size.
func printFile(path string, size int) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path) + " " + StyleDim.Render(formatBytes(size)))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints a pass summary: "3 rows · 3 points · 4 drawables · fresh".
func printStats(rows, retained, drawables int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d rows", rows)),
		StyleDim.Render(fmt.Sprintf("%d points", retained)),
	}
	if drawables > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d drawables", drawables)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(separator)))
}

// printChannels lists the position columns and every bound channel of cfg.
func printChannels(cfg layer.Config) {
	printKeyValue("Position", cfg.Columns.Lat.Value+", "+cfg.Columns.Lng.Value)
	channels := []struct {
		name  string
		field *table.Field
		scale string
	}{
		{"Color", cfg.ColorField, string(cfg.ColorScale)},
		{"Stroke", cfg.StrokeColorField, string(cfg.StrokeColorScale)},
		{"Size", cfg.SizeField, string(cfg.SizeScale)},
	}
	for _, ch := range channels {
		if ch.field == nil {
			continue
		}
		printKeyValue(ch.name, ch.field.Name+" "+StyleDim.Render("("+ch.scale+")"))
	}
	if cfg.TextLabel.Field != nil {
		printKeyValue("Label", cfg.TextLabel.Field.Name)
	}
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
