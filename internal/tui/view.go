package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pointlayer/pkg/color"
	"github.com/matzehuels/pointlayer/pkg/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#12939A"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D50255"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	brushStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC300"))
)

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("error: "+m.err.Error()) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	for y, line := range m.frame.Lines {
		b.WriteString(m.renderLine(y, []rune(line)))
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	cfg := m.layer.Config()
	title := titleStyle.Render(" pointlayer ")
	info := swatch(cfg.Color) + " " + dimStyle.Render(fmt.Sprintf("%s · %d/%d points", cfg.Label, len(m.desc.Data), m.ds.Len()))
	if m.brushing {
		info += " " + brushStyle.Render(fmt.Sprintf("brush %.2fkm", m.brushRadius))
	}
	return title + " " + info
}

// renderLine colors runs of cells that share a color.
func (m Model) renderLine(y int, cells []rune) string {
	var b strings.Builder
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		c := m.frame.Colors[y][start]
		run := string(cells[start:end])
		if c.IsZero() {
			b.WriteString(run)
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(run))
		}
	}
	for x := range cells {
		if y == m.cursorY && x == m.cursorX {
			flush(x)
			b.WriteString(cursorStyle.Render(string(cells[x])))
			start = x + 1
			continue
		}
		if x > start && m.frame.Colors[y][x] != m.frame.Colors[y][start] {
			flush(x)
			start = x
		}
	}
	flush(len(cells))
	return b.String()
}

func (m Model) footer() string {
	lng, lat := m.frame.LngLatAt(m.cursorX, m.cursorY)
	status := fmt.Sprintf("%.5f, %.5f", lat, lng)
	if m.hovered != nil {
		status += "  " + titleStyle.Render(fmt.Sprintf("#%d", m.hovered.Index)) + " " + describeRow(m.ds, m.hovered.Row)
	}
	pass := "warm"
	if m.stats.RowsCold {
		pass = "cold"
	}
	help := dimStyle.Render(fmt.Sprintf("%s pass, %d dropped · arrows/mouse: hover  b: brushing  [ ]: brush size  r: reformat  q: quit",
		pass, m.stats.Dropped))
	return status + "\n" + help
}

func describeRow(ds *table.Dataset, row table.Row) string {
	parts := make([]string, 0, len(ds.Fields))
	for _, f := range ds.Fields {
		parts = append(parts, f.Name+"="+table.String(row.At(f.Index)))
	}
	return strings.Join(parts, " ")
}

// swatch renders a color sample.
func swatch(c color.RGBA) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
}
