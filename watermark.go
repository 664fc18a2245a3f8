// Package watermark removes recurring watermark elements from multi-page
// PDF documents using two independent strategies: structural pattern
// matching against extracted page elements, and color-tolerance
// substitution on rasterized page images.
//
// The PDF engine itself is a collaborator supplied by the caller through
// the engine package interfaces; this package drives it but never parses
// or renders PDF content on its own.
//
// Basic usage:
//
//	r := watermark.Open(eng, "input.pdf")
//	r.AddPattern(pattern.Pattern{Kind: pattern.KindText, Text: "CONFIDENTIAL"})
//	if err := r.RemoveByPattern(nil); err != nil {
//	    // handle error
//	}
//	if err := r.Save("output.pdf"); err != nil {
//	    // handle error
//	}
//
// Color-based removal flattens each page to a raster:
//
//	r := watermark.Open(eng, "input.pdf").Tolerance(0.1).DPI(200)
//	err := r.RemoveByColor([]engine.RGB{{R: 255, G: 0, B: 0}}, nil)
package watermark

import (
	"github.com/rs/zerolog"

	"github.com/soft98-top/pdf-watermark-remover/colors"
	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Open creates a Remover for the PDF at path, backed by the given engine.
// The document is opened lazily on the first operation that needs it.
// The Remover must be released with Close; Save closes it implicitly.
func Open(eng engine.Engine, path string) *Remover {
	return &Remover{
		eng:      eng,
		path:     path,
		analyzer: colors.NewAnalyzer(),
		opts:     defaultOptions(),
		log:      zerolog.Nop(),
	}
}

// FromDocument creates a Remover over an already-open document. The
// Remover takes ownership and will close the document.
func FromDocument(eng engine.Engine, doc engine.Document) *Remover {
	return &Remover{
		eng:      eng,
		doc:      doc,
		analyzer: colors.NewAnalyzer(),
		opts:     defaultOptions(),
		log:      zerolog.Nop(),
	}
}
