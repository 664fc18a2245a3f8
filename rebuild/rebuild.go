// Package rebuild implements page reconstruction: the pattern pipeline,
// which rebuilds a page from its unmatched elements, and the color pipeline,
// which flattens a page to a raster with the target color substituted.
package rebuild

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/soft98-top/pdf-watermark-remover/engine"
	"github.com/soft98-top/pdf-watermark-remover/pattern"
)

// Fallbacks for text spans with missing metadata.
const (
	defaultFont     = "helv"
	defaultFontSize = 11
)

// ErrNoPatterns is returned by ByPattern when the pattern set is empty.
var ErrNoPatterns = errors.New("no watermark patterns defined")

// Reconstructor rebuilds single pages of a working document. It owns no
// documents itself; transient reconstruction documents are created per call
// and released on every exit path.
type Reconstructor struct {
	eng engine.Engine
	doc engine.Document
	log zerolog.Logger
}

// New creates a reconstructor over the given working document.
func New(eng engine.Engine, doc engine.Document, log zerolog.Logger) *Reconstructor {
	return &Reconstructor{eng: eng, doc: doc, log: log}
}

// ByPattern rebuilds the page at pageIndex, dropping every element matched
// by any pattern. Kept text is redrawn span by span at its original
// position, font, size, and color; kept images are re-inserted from their
// original streams. A failure on a single element is logged and the element
// skipped; only page-level failures are returned.
func (r *Reconstructor) ByPattern(pageIndex int, patterns []pattern.Pattern) error {
	if len(patterns) == 0 {
		return ErrNoPatterns
	}

	page, err := r.doc.Page(pageIndex)
	if err != nil {
		return fmt.Errorf("page %d: %w", pageIndex+1, err)
	}
	elements, err := page.Elements()
	if err != nil {
		return fmt.Errorf("page %d: extracting elements: %w", pageIndex+1, err)
	}
	width, height := page.Size()

	temp, err := r.eng.NewDocument()
	if err != nil {
		return fmt.Errorf("page %d: creating reconstruction document: %w", pageIndex+1, err)
	}
	defer temp.Close()

	replacement, err := temp.NewPage(width, height)
	if err != nil {
		return fmt.Errorf("page %d: creating replacement page: %w", pageIndex+1, err)
	}
	// Opaque white background first, so dropped elements leave no artifacts.
	if err := replacement.FillRect(engine.NewRect(0, 0, width, height), engine.White); err != nil {
		return fmt.Errorf("page %d: painting background: %w", pageIndex+1, err)
	}

	for _, el := range elements {
		if pattern.MatchesAny(patterns, el) {
			continue
		}
		switch b := el.(type) {
		case *engine.TextBlock:
			r.redrawText(replacement, b, pageIndex)
		case *engine.ImageBlock:
			r.reinsertImage(replacement, b, pageIndex)
		}
	}

	return r.replacePage(pageIndex, temp)
}

// redrawText re-inserts every span of a kept text block. Element-level
// failures are logged and skipped.
func (r *Reconstructor) redrawText(dst engine.Page, b *engine.TextBlock, pageIndex int) {
	for _, line := range b.Lines {
		for _, span := range line.Spans {
			font := span.Font
			if font == "" {
				font = defaultFont
			}
			size := span.Size
			if size <= 0 {
				size = defaultFontSize
			}
			err := dst.InsertText(span.BBox.Origin(), span.Text, font, size, span.Color)
			if err != nil {
				r.log.Warn().
					Int("page", pageIndex+1).
					Str("text", span.Text).
					Err(err).
					Msg("skipping text span")
			}
		}
	}
}

// reinsertImage re-inserts a kept image block from its original stream.
// Element-level failures are logged and skipped.
func (r *Reconstructor) reinsertImage(dst engine.Page, b *engine.ImageBlock, pageIndex int) {
	if b.XRef <= 0 {
		return
	}
	img, err := r.doc.ExtractImage(b.XRef)
	if err != nil {
		r.log.Warn().
			Int("page", pageIndex+1).
			Int("xref", b.XRef).
			Err(err).
			Msg("skipping image: extract failed")
		return
	}
	if err := dst.InsertImage(b.BBox, img); err != nil {
		r.log.Warn().
			Int("page", pageIndex+1).
			Int("xref", b.XRef).
			Err(err).
			Msg("skipping image: insert failed")
	}
}

// ByColor re-renders the page at pageIndex with every pixel within
// tolerance of target set to opaque white, then replaces the page content
// with the flattened raster. This is lossy: vector fidelity is discarded.
// Any failure is logged and reported as false so the caller can try the
// next candidate color.
func (r *Reconstructor) ByColor(pageIndex int, target engine.RGB, tolerance float64, dpi int) bool {
	page, err := r.doc.Page(pageIndex)
	if err != nil {
		r.logColorFailure(pageIndex, target, "loading page", err)
		return false
	}
	width, height := page.Size()

	pm, err := page.Rasterize(dpi)
	if err != nil {
		r.logColorFailure(pageIndex, target, "rasterizing", err)
		return false
	}

	MaskToWhite(pm, target, tolerance)

	data, err := pm.EncodePNG()
	if err != nil {
		r.logColorFailure(pageIndex, target, "encoding raster", err)
		return false
	}

	temp, err := r.eng.NewDocument()
	if err != nil {
		r.logColorFailure(pageIndex, target, "creating reconstruction document", err)
		return false
	}
	defer temp.Close()

	replacement, err := temp.NewPage(width, height)
	if err != nil {
		r.logColorFailure(pageIndex, target, "creating replacement page", err)
		return false
	}
	fullPage := engine.NewRect(0, 0, width, height)
	if err := replacement.InsertImage(fullPage, &engine.ImageData{Data: data}); err != nil {
		r.logColorFailure(pageIndex, target, "inserting raster", err)
		return false
	}

	if err := r.replacePage(pageIndex, temp); err != nil {
		r.logColorFailure(pageIndex, target, "replacing page", err)
		return false
	}
	return true
}

// replacePage swaps the original page for page 0 of the reconstruction
// document. The engine is expected to perform the delete+insert pair
// transactionally.
func (r *Reconstructor) replacePage(pageIndex int, temp engine.Document) error {
	if err := r.doc.DeletePage(pageIndex); err != nil {
		return fmt.Errorf("page %d: deleting original: %w", pageIndex+1, err)
	}
	if err := r.doc.InsertFrom(temp, 0, 0, pageIndex); err != nil {
		return fmt.Errorf("page %d: inserting replacement: %w", pageIndex+1, err)
	}
	return nil
}

func (r *Reconstructor) logColorFailure(pageIndex int, target engine.RGB, stage string, err error) {
	r.log.Warn().
		Int("page", pageIndex+1).
		Str("color", fmt.Sprintf("%d,%d,%d", target.R, target.G, target.B)).
		Str("stage", stage).
		Err(err).
		Msg("color application failed")
}
