package watermark

import (
	"errors"

	"github.com/soft98-top/pdf-watermark-remover/rebuild"
)

var (
	// ErrInvalidRange is returned when a page range is malformed or falls
	// outside the document. It is raised before any page is touched.
	ErrInvalidRange = errors.New("invalid page range")

	// ErrNoPatterns is returned when the pattern pipeline is invoked with
	// an empty pattern set. It is raised before any page is touched.
	ErrNoPatterns = rebuild.ErrNoPatterns

	// ErrNoColors is returned when the color pipeline is invoked without
	// any target colors.
	ErrNoColors = errors.New("no target colors specified")

	// ErrClosed is returned by operations invoked after Close or Save.
	ErrClosed = errors.New("remover is closed")
)
