package color

// DataVizColors is the cycle new layers draw their base color from.
var DataVizColors = []string{
	"#12939A", "#DDB27C", "#88572C", "#FF991F", "#F15C17",
	"#223F9A", "#DA70BF", "#125C77", "#4DC19C", "#8F2E14",
}

// Maker hands out base colors for new layers, cycling through
// DataVizColors. The zero value starts at the first color.
type Maker struct {
	next int
}

// Next returns the next color in the cycle.
func (m *Maker) Next() RGBA {
	c := MustHex(DataVizColors[m.next%len(DataVizColors)])
	m.next = (m.next + 1) % len(DataVizColors)
	return c
}

// Reset restarts the cycle.
func (m *Maker) Reset() {
	m.next = 0
}
