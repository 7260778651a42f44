// Package tui is an interactive terminal preview of a point layer.
//
// The map is drawn with braille dots, two by four per cell. Moving the
// cursor (keys or mouse) hovers the nearest point, which re-renders the
// layer without a new formatting pass; "r" runs a warm pass.
package tui

import (
	"context"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/observability"
	"github.com/matzehuels/pointlayer/pkg/render"
	"github.com/matzehuels/pointlayer/pkg/table"
)

const (
	headerHeight = 1
	footerHeight = 2

	// hoverCells is how far, in cells, the cursor reaches for a point.
	hoverCells = 1.5

	defaultBrushRadius = 0.5
	brushStep          = 0.25
)

// Model is the bubbletea model of the preview.
type Model struct {
	ctx   context.Context
	layer *layer.PointLayer
	ds    *table.Dataset

	desc      *layer.Descriptor
	drawables []layer.Drawable
	frame     render.BrailleFrame
	stats     observability.FormatStats
	err       error

	width, height    int
	cursorX, cursorY int
	hovered          *layer.DataPoint
	brushing         bool
	brushRadius      float64
}

// New runs a first formatting pass of l over ds and returns the model.
func New(ctx context.Context, l *layer.PointLayer, ds *table.Dataset) Model {
	m := Model{
		ctx:         ctx,
		layer:       l,
		ds:          ds,
		width:       80,
		height:      24,
		brushRadius: defaultBrushRadius,
	}
	m.format(false)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) mapSize() (cols, rows int) {
	return max(m.width, 10), max(m.height-headerHeight-footerHeight, 4)
}

// format runs a formatting pass over every row.
func (m *Model) format(sameData bool) {
	d, err := m.layer.FormatLayerData(m.ctx, m.ds, m.ds.AllIndices(), sameData)
	if err != nil {
		m.err = err
		return
	}
	m.desc = d
	m.stats = m.layer.LastStats()
	m.hovered = nil
	m.redraw()
}

// redraw re-renders the latest pass with the current interaction state.
func (m *Model) redraw() {
	if m.desc == nil {
		return
	}
	cols, rows := m.mapSize()
	meta := m.layer.Meta()
	ic := layer.InteractionContext{
		BrushingEnabled: m.brushing,
		BrushRadius:     m.brushRadius,
		Hovered:         m.hovered,
		MapState:        layer.MapState{Zoom: render.FitZoom(meta.Bounds, float64(cols*2), float64(rows*4))},
	}
	m.drawables = m.layer.RenderLayer(m.ctx, m.desc, ic)
	m.frame = render.RenderBraille(m.drawables, meta.Bounds, cols, rows)
}

// updateHover hovers the point nearest the cursor, if one is close enough.
func (m *Model) updateHover() {
	var next *layer.DataPoint
	if len(m.drawables) > 0 {
		if p, ok := m.frame.Nearest(m.drawables[0], m.cursorX, m.cursorY); ok {
			pos := m.desc.GetPosition.At(p)
			if cx, cy, inside := m.frame.CellAt(pos[0], pos[1]); inside &&
				math.Hypot(float64(cx-m.cursorX), float64(cy-m.cursorY)) <= hoverCells {
				next = &p
			}
		}
	}
	if samePoint(m.hovered, next) {
		return
	}
	m.hovered = next
	m.redraw()
}

func samePoint(a, b *layer.DataPoint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Index == b.Index
}

func (m *Model) moveCursor(dx, dy int) {
	cols, rows := m.mapSize()
	m.cursorX = min(max(m.cursorX+dx, 0), cols-1)
	m.cursorY = min(max(m.cursorY+dy, 0), rows-1)
	m.updateHover()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.moveCursor(0, 0)
		m.redraw()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(0, -1)
		case "down", "j":
			m.moveCursor(0, 1)
		case "left", "h":
			m.moveCursor(-1, 0)
		case "right", "l":
			m.moveCursor(1, 0)
		case "b":
			m.brushing = !m.brushing
			m.redraw()
		case "]":
			m.brushRadius += brushStep
			m.redraw()
		case "[":
			m.brushRadius = math.Max(brushStep, m.brushRadius-brushStep)
			m.redraw()
		case "r":
			m.format(true)
			m.updateHover()
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			m.cursorX = msg.X
			m.cursorY = msg.Y - headerHeight
			m.moveCursor(0, 0)
		}
	}
	return m, nil
}

// Run starts the preview on the alternate screen.
func Run(ctx context.Context, l *layer.PointLayer, ds *table.Dataset) error {
	p := tea.NewProgram(New(ctx, l, ds), tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
