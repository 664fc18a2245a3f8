// Package enginetest provides a complete in-memory implementation of the
// engine interfaces for use in tests. Documents hold pages as element lists;
// rasterization paints fills, placed images, and text-span boxes onto a
// white canvas at the requested DPI.
package enginetest

import (
	"errors"
	"fmt"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Engine is an in-memory engine.Engine. Documents are registered under
// paths with Register and retrieved after Save with SavedDoc.
type Engine struct {
	registered map[string]*Document
	saved      map[string]*Document
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{
		registered: make(map[string]*Document),
		saved:      make(map[string]*Document),
	}
}

// Register makes doc available to Open under the given path.
func (e *Engine) Register(path string, doc *Document) {
	e.registered[path] = doc
}

// SavedDoc returns the document most recently saved under path, or nil.
func (e *Engine) SavedDoc(path string) *Document {
	return e.saved[path]
}

// Open returns the document registered under path.
func (e *Engine) Open(path string) (engine.Document, error) {
	doc, ok := e.registered[path]
	if !ok {
		return nil, fmt.Errorf("no document registered at %q", path)
	}
	doc.eng = e
	return doc, nil
}

// NewDocument creates an empty in-memory document.
func (e *Engine) NewDocument() (engine.Document, error) {
	return NewDoc(e), nil
}

// Document is an in-memory engine.Document.
type Document struct {
	eng      *Engine
	pages    []*Page
	images   map[int]*engine.ImageData
	nextXRef int
	closed   bool

	// Reclaims counts Reclaim calls, for cadence assertions.
	Reclaims int

	// FailExtractImage makes every ExtractImage call fail.
	FailExtractImage bool

	// FailSave makes Save fail.
	FailSave bool
}

// NewDoc creates an empty document. eng may be nil for documents that are
// never saved.
func NewDoc(eng *Engine) *Document {
	return &Document{
		eng:      eng,
		images:   make(map[int]*engine.ImageData),
		nextXRef: 1000,
	}
}

// AddPage appends a page with the given dimensions and returns it,
// for test setup.
func (d *Document) AddPage(width, height float64) *Page {
	p := &Page{doc: d, width: width, height: height}
	d.pages = append(d.pages, p)
	return p
}

// SetImage stores an image stream under a fixed xref, for test setup.
func (d *Document) SetImage(xref int, img *engine.ImageData) {
	d.images[xref] = img
}

// Pages returns the current page list, for assertions.
func (d *Document) Pages() []*Page {
	return d.pages
}

func (d *Document) PageCount() int {
	return len(d.pages)
}

func (d *Document) Page(index int) (engine.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

func (d *Document) NewPage(width, height float64) (engine.Page, error) {
	if d.closed {
		return nil, errors.New("document is closed")
	}
	return d.AddPage(width, height), nil
}

func (d *Document) DeletePage(index int) error {
	if index < 0 || index >= len(d.pages) {
		return fmt.Errorf("delete: page index %d out of range", index)
	}
	d.pages = append(d.pages[:index], d.pages[index+1:]...)
	return nil
}

func (d *Document) InsertFrom(src engine.Document, fromPage, toPage, at int) error {
	sd, ok := src.(*Document)
	if !ok {
		return errors.New("source document is not an enginetest document")
	}
	if fromPage < 0 || toPage >= len(sd.pages) || fromPage > toPage {
		return fmt.Errorf("insert: source range [%d, %d] out of bounds", fromPage, toPage)
	}
	if at < 0 || at > len(d.pages) {
		return fmt.Errorf("insert: target index %d out of bounds", at)
	}
	var copied []*Page
	for _, p := range sd.pages[fromPage : toPage+1] {
		copied = append(copied, p.clone(d))
	}
	for xref, img := range sd.images {
		if _, exists := d.images[xref]; !exists {
			d.images[xref] = img
		}
	}
	d.pages = append(d.pages[:at], append(copied, d.pages[at:]...)...)
	return nil
}

func (d *Document) ExtractImage(xref int) (*engine.ImageData, error) {
	if d.FailExtractImage {
		return nil, errors.New("extract image: injected failure")
	}
	img, ok := d.images[xref]
	if !ok {
		return nil, fmt.Errorf("no image stream for xref %d", xref)
	}
	return img, nil
}

func (d *Document) Save(path string, opts engine.SaveOptions) error {
	if d.FailSave {
		return errors.New("save: injected failure")
	}
	if d.eng == nil {
		return errors.New("save: document has no engine")
	}
	snapshot := NewDoc(d.eng)
	for _, p := range d.pages {
		snapshot.pages = append(snapshot.pages, p.clone(snapshot))
	}
	for xref, img := range d.images {
		snapshot.images[xref] = img
	}
	d.eng.saved[path] = snapshot
	return nil
}

func (d *Document) Reclaim() {
	d.Reclaims++
}

func (d *Document) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	return d.closed
}
