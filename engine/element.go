package engine

import "strings"

// Point represents a 2D point in page space.
type Point struct {
	X, Y float64
}

// Rect is a rectangle in page space, top-left origin.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewRect creates a rectangle from its four edges.
func NewRect(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Coords returns the four edges in left, top, right, bottom order.
func (r Rect) Coords() [4]float64 {
	return [4]float64{r.Left, r.Top, r.Right, r.Bottom}
}

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// ElementType represents the type of a page element.
type ElementType int

const (
	ElementUnknown ElementType = iota
	ElementText
	ElementImage
)

func (et ElementType) String() string {
	switch et {
	case ElementText:
		return "Text"
	case ElementImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// Element is a single content block on a page, as extracted by the engine.
type Element interface {
	Type() ElementType
	BoundingBox() Rect
}

// Span is a run of text sharing one font, size, and color.
type Span struct {
	Text  string
	Font  string
	Size  float64
	Color RGB
	BBox  Rect
}

// Line is an ordered sequence of spans on one baseline.
type Line struct {
	Spans []Span
	BBox  Rect
}

// TextBlock is a block of text lines.
type TextBlock struct {
	Lines []Line
	BBox  Rect
}

func (b *TextBlock) Type() ElementType { return ElementText }
func (b *TextBlock) BoundingBox() Rect { return b.BBox }

// Text returns every span's text, in line then span order, joined with
// single spaces.
func (b *TextBlock) Text() string {
	var parts []string
	for _, line := range b.Lines {
		for _, span := range line.Spans {
			parts = append(parts, span.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ImageBlock is an embedded image placement. XRef identifies the underlying
// image stream within the owning document.
type ImageBlock struct {
	BBox Rect
	XRef int
}

func (b *ImageBlock) Type() ElementType { return ElementImage }
func (b *ImageBlock) BoundingBox() Rect { return b.BBox }
