// Package pattern implements the watermark pattern data model and matcher.
// A Pattern describes one recurring watermark element, either by the text it
// contains or by the page position of an image, and is evaluated against
// engine elements as a pure predicate.
package pattern

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Kind represents the kind of element a pattern targets.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// KindFromString parses the wire-format kind names.
func KindFromString(s string) Kind {
	switch s {
	case "text":
		return KindText
	case "image":
		return KindImage
	default:
		return KindUnknown
	}
}

// bboxTolerance is the absolute per-coordinate tolerance, in page units,
// for image position matching. It is DPI-independent.
const bboxTolerance = 1.0

// Pattern describes one watermark element. Text is meaningful only for
// KindText patterns; Description is a free-form label with no effect on
// matching. Patterns are immutable after creation.
type Pattern struct {
	Kind        Kind
	BBox        engine.Rect
	Text        string
	Description string
}

// FromElement derives a pattern from an inspected page element. For text
// blocks the given text becomes the substring to match; for image blocks
// the element's bounding box is recorded and text is ignored.
func FromElement(el engine.Element, text, description string) Pattern {
	p := Pattern{
		BBox:        el.BoundingBox(),
		Description: description,
	}
	switch el.Type() {
	case engine.ElementImage:
		p.Kind = KindImage
	default:
		p.Kind = KindText
		p.Text = text
	}
	return p
}

// Matches reports whether the element is an instance of this pattern.
//
// A text pattern matches iff its text is a substring of the element's
// space-joined span text (both sides NFC-normalized). An image pattern
// matches iff the element is an image block whose bounding box differs from
// the stored box by less than one page unit on every edge. Patterns never
// match across kinds.
func (p Pattern) Matches(el engine.Element) bool {
	switch p.Kind {
	case KindText:
		tb, ok := el.(*engine.TextBlock)
		if !ok {
			return false
		}
		return strings.Contains(norm.NFC.String(tb.Text()), norm.NFC.String(p.Text))
	case KindImage:
		if el.Type() != engine.ElementImage {
			return false
		}
		want := p.BBox.Coords()
		got := el.BoundingBox().Coords()
		for i := range want {
			if math.Abs(want[i]-got[i]) >= bboxTolerance {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MatchesAny reports whether any pattern in the set matches the element.
// Evaluation short-circuits on the first match.
func MatchesAny(patterns []Pattern, el engine.Element) bool {
	for _, p := range patterns {
		if p.Matches(el) {
			return true
		}
	}
	return false
}
