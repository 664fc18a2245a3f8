package enginetest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Page is an in-memory engine.Page. Content is held as an ordered list of
// elements plus recorded fill operations; Rasterize replays them onto a
// white canvas.
type Page struct {
	doc    *Document
	width  float64
	height float64

	elements []engine.Element
	fills    []fillOp

	// preset overrides painted rasterization when set via SetRaster.
	preset *engine.Pixmap

	// FailElements makes Elements fail, for page-level error tests.
	FailElements bool

	// FailRasterize makes Rasterize fail, for color-pipeline error tests.
	FailRasterize bool

	// FailInsertText makes every InsertText call fail, for element-level
	// error tests.
	FailInsertText bool

	// FailInsertImage makes every InsertImage call fail.
	FailInsertImage bool
}

type fillOp struct {
	rect engine.Rect
	fill engine.RGB
}

// AddElement appends an element to the page content, for test setup.
func (p *Page) AddElement(el engine.Element) {
	p.elements = append(p.elements, el)
}

// SetRaster fixes the page's rasterization output regardless of DPI,
// for tests that need exact pixel content. The pixmap is scaled to the
// requested raster dimensions.
func (p *Page) SetRaster(pm *engine.Pixmap) {
	p.preset = pm
}

// Fills returns the recorded fill operations, for assertions.
func (p *Page) Fills() []engine.Rect {
	rects := make([]engine.Rect, len(p.fills))
	for i, f := range p.fills {
		rects[i] = f.rect
	}
	return rects
}

func (p *Page) Size() (float64, float64) {
	return p.width, p.height
}

func (p *Page) Elements() ([]engine.Element, error) {
	if p.FailElements {
		return nil, errors.New("elements: injected failure")
	}
	snapshot := make([]engine.Element, len(p.elements))
	copy(snapshot, p.elements)
	return snapshot, nil
}

func (p *Page) FillRect(r engine.Rect, fill engine.RGB) error {
	p.fills = append(p.fills, fillOp{rect: r, fill: fill})
	return nil
}

func (p *Page) InsertText(at engine.Point, text, font string, size float64, c engine.RGB) error {
	if p.FailInsertText {
		return errors.New("insert text: injected failure")
	}
	// Crude glyph metrics, adequate for box-painting rasterization.
	bbox := engine.NewRect(at.X, at.Y, at.X+float64(len(text))*size*0.5, at.Y+size)
	p.elements = append(p.elements, &engine.TextBlock{
		BBox: bbox,
		Lines: []engine.Line{{
			BBox:  bbox,
			Spans: []engine.Span{{Text: text, Font: font, Size: size, Color: c, BBox: bbox}},
		}},
	})
	return nil
}

func (p *Page) InsertImage(r engine.Rect, img *engine.ImageData) error {
	if p.FailInsertImage {
		return errors.New("insert image: injected failure")
	}
	if img == nil || len(img.Data) == 0 {
		return errors.New("insert image: empty stream")
	}
	xref := p.doc.nextXRef
	p.doc.nextXRef++
	p.doc.images[xref] = img
	p.elements = append(p.elements, &engine.ImageBlock{BBox: r, XRef: xref})
	return nil
}

func (p *Page) Rasterize(dpi int) (*engine.Pixmap, error) {
	if p.FailRasterize {
		return nil, errors.New("rasterize: injected failure")
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("rasterize: invalid dpi %d", dpi)
	}
	scale := float64(dpi) / 72.0
	w := int(p.width*scale + 0.5)
	h := int(p.height*scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize: degenerate page %gx%g", p.width, p.height)
	}
	if p.preset != nil {
		return p.preset.Scale(w, h), nil
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for _, f := range p.fills {
		paintRect(canvas, f.rect, scale, f.fill)
	}
	for _, el := range p.elements {
		switch b := el.(type) {
		case *engine.TextBlock:
			for _, line := range b.Lines {
				for _, span := range line.Spans {
					paintRect(canvas, span.BBox, scale, span.Color)
				}
			}
		case *engine.ImageBlock:
			p.paintImage(canvas, b, scale)
		}
	}
	return engine.FromImage(canvas), nil
}

func (p *Page) paintImage(canvas *image.RGBA, b *engine.ImageBlock, scale float64) {
	stream, ok := p.doc.images[b.XRef]
	if !ok {
		return
	}
	decoded, _, err := image.Decode(bytes.NewReader(stream.Data))
	if err != nil {
		// Unknown encodings paint as a mid-gray box.
		paintRect(canvas, b.BBox, scale, engine.RGB{R: 128, G: 128, B: 128})
		return
	}
	dst := image.Rect(
		int(b.BBox.Left*scale+0.5), int(b.BBox.Top*scale+0.5),
		int(b.BBox.Right*scale+0.5), int(b.BBox.Bottom*scale+0.5),
	).Intersect(canvas.Bounds())
	if dst.Empty() {
		return
	}
	draw.ApproxBiLinear.Scale(canvas, dst, decoded, decoded.Bounds(), draw.Over, nil)
}

// clone deep-copies the page content for InsertFrom and Save snapshots.
func (p *Page) clone(owner *Document) *Page {
	cp := &Page{
		doc:    owner,
		width:  p.width,
		height: p.height,
		preset: p.preset,
	}
	cp.elements = append(cp.elements, p.elements...)
	cp.fills = append(cp.fills, p.fills...)
	return cp
}

func paintRect(canvas *image.RGBA, r engine.Rect, scale float64, c engine.RGB) {
	col := color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	x0, y0 := int(r.Left*scale+0.5), int(r.Top*scale+0.5)
	x1, y1 := int(r.Right*scale+0.5), int(r.Bottom*scale+0.5)
	rect := image.Rect(x0, y0, x1, y1).Intersect(canvas.Bounds())
	draw.Draw(canvas, rect, image.NewUniform(col), image.Point{}, draw.Src)
}
