// Package engine defines the PDF engine collaborator boundary: the document,
// page, and pixel-buffer surface the watermark remover drives but does not
// implement. A production backend wraps a real PDF library behind these
// interfaces; the enginetest subpackage provides a complete in-memory
// implementation for tests.
package engine

// SaveOptions controls document persistence.
type SaveOptions struct {
	GarbageLevel int  // object garbage collection aggressiveness (0-4)
	Deflate      bool // recompress streams
	Clean        bool // sanitize content streams
	Linearize    bool // optimize for incremental web view
}

// MaxCompression returns the save options used for final output:
// full garbage collection, stream recompression, content cleanup,
// and linearization.
func MaxCompression() SaveOptions {
	return SaveOptions{
		GarbageLevel: 4,
		Deflate:      true,
		Clean:        true,
		Linearize:    true,
	}
}

// Engine opens and creates documents.
type Engine interface {
	// Open opens an existing PDF file.
	Open(path string) (Document, error)

	// NewDocument creates an empty document, used for page reconstruction
	// and batched output assembly.
	NewDocument() (Document, error)
}

// Document is a single open PDF document. A Document is exclusively owned
// by one caller at a time; none of its methods are safe for concurrent use.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Page returns the page at the given zero-based index. The returned
	// Page is a live view: replacing the page in the document invalidates it.
	Page(index int) (Page, error)

	// NewPage appends a blank page with the given dimensions in points
	// and returns it.
	NewPage(width, height float64) (Page, error)

	// DeletePage removes the page at the given zero-based index.
	DeletePage(index int) error

	// InsertFrom copies pages [fromPage, toPage] of src into this document,
	// inserting them at index at.
	InsertFrom(src Document, fromPage, toPage, at int) error

	// ExtractImage returns the raw image stream referenced by an
	// ImageBlock's XRef.
	ExtractImage(xref int) (*ImageData, error)

	// Save persists the document to path.
	Save(path string, opts SaveOptions) error

	// Reclaim releases cached page and raster resources. It is a
	// resource-pressure mitigation, not a correctness requirement, and is
	// safe to call at any time.
	Reclaim()

	// Close releases the document. Close is idempotent.
	Close() error
}

// Page is a single page of an open Document.
type Page interface {
	// Size returns the page dimensions in points.
	Size() (width, height float64)

	// Elements returns the page's content as a fresh read-only snapshot of
	// text and image blocks. Callers must re-fetch after mutating the page.
	Elements() ([]Element, error)

	// Rasterize renders the page at the given DPI into an RGB pixel buffer.
	Rasterize(dpi int) (*Pixmap, error)

	// FillRect draws an opaque filled rectangle.
	FillRect(r Rect, fill RGB) error

	// InsertText draws a text run at the given position.
	InsertText(at Point, text, font string, size float64, color RGB) error

	// InsertImage places an image stream into the given rectangle.
	InsertImage(r Rect, img *ImageData) error
}

// ImageData is a raw image stream extracted from a document, with optional
// soft mask and color-space hint, as produced by Document.ExtractImage.
type ImageData struct {
	Data       []byte
	Mask       []byte
	ColorSpace string
}
