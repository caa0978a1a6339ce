package boundary

// Point is a pointer position in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Union returns the smallest rect covering r and o. An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Layout reports where a rune range of a text node is rendered.
type Layout interface {
	// RangeRect returns the bounding rect of runes [start, end).
	RangeRect(start, end int) Rect
}

// GlyphLayout holds one box per rune as measured by the page.
type GlyphLayout []Rect

func (g GlyphLayout) RangeRect(start, end int) Rect {
	start = max(start, 0)
	end = min(end, len(g))

	var out Rect
	for i := start; i < end; i++ {
		out = out.Union(g[i])
	}
	return out
}

// MonospaceLayout lays a single line of text out on a fixed grid.
type MonospaceLayout struct {
	Origin     Point
	CharWidth  float64
	LineHeight float64
}

func (m MonospaceLayout) RangeRect(start, end int) Rect {
	if end <= start {
		return Rect{}
	}
	return Rect{
		Left:   m.Origin.X + float64(start)*m.CharWidth,
		Top:    m.Origin.Y,
		Right:  m.Origin.X + float64(end)*m.CharWidth,
		Bottom: m.Origin.Y + m.LineHeight,
	}
}
