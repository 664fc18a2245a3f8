package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Pixmap is a rasterized page: a packed 8-bit RGB pixel buffer, three bytes
// per pixel, rows top to bottom. All rasterization output is normalized to
// this layout so callers never deal with engine color spaces directly.
type Pixmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixmap creates a pixmap of the given dimensions with every pixel white.
func NewPixmap(width, height int) *Pixmap {
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = 255
	}
	return &Pixmap{Width: width, Height: height, Pix: pix}
}

// FromImage converts any image into an RGB pixmap, flattening alpha
// against white.
func FromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Over)

	p := &Pixmap{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]uint8, b.Dx()*b.Dy()*3),
	}
	for i, j := 0, 0; i < len(rgba.Pix); i, j = i+4, j+3 {
		p.Pix[j] = rgba.Pix[i]
		p.Pix[j+1] = rgba.Pix[i+1]
		p.Pix[j+2] = rgba.Pix[i+2]
	}
	return p
}

// At returns the color of the pixel at (x, y).
func (p *Pixmap) At(x, y int) RGB {
	i := (y*p.Width + x) * 3
	return RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}

// Set writes the color of the pixel at (x, y).
func (p *Pixmap) Set(x, y int, c RGB) {
	i := (y*p.Width + x) * 3
	p.Pix[i] = c.R
	p.Pix[i+1] = c.G
	p.Pix[i+2] = c.B
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	pix := make([]uint8, len(p.Pix))
	copy(pix, p.Pix)
	return &Pixmap{Width: p.Width, Height: p.Height, Pix: pix}
}

// Image converts the pixmap to a stdlib RGBA image.
func (p *Pixmap) Image() *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i, j := 0, 0; j < len(p.Pix); i, j = i+4, j+3 {
		rgba.Pix[i] = p.Pix[j]
		rgba.Pix[i+1] = p.Pix[j+1]
		rgba.Pix[i+2] = p.Pix[j+2]
		rgba.Pix[i+3] = 255
	}
	return rgba
}

// Crop returns a copy of the pixel rectangle [x0, x1) x [y0, y1), clamped
// to the pixmap bounds.
func (p *Pixmap) Crop(x0, y0, x1, y1 int) *Pixmap {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > p.Width {
		x1 = p.Width
	}
	if y1 > p.Height {
		y1 = p.Height
	}
	if x0 >= x1 || y0 >= y1 {
		return &Pixmap{}
	}
	out := &Pixmap{Width: x1 - x0, Height: y1 - y0}
	out.Pix = make([]uint8, out.Width*out.Height*3)
	for y := y0; y < y1; y++ {
		src := (y*p.Width + x0) * 3
		dst := (y - y0) * out.Width * 3
		copy(out.Pix[dst:dst+out.Width*3], p.Pix[src:src+out.Width*3])
	}
	return out
}

// Scale resamples the pixmap to the given dimensions. It is used to bound
// the pixel count before color analysis on high-DPI rasters.
func (p *Pixmap) Scale(width, height int) *Pixmap {
	if width == p.Width && height == p.Height {
		return p.Clone()
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), p.Image(), p.Image().Bounds(), draw.Src, nil)
	return FromImage(dst)
}

// EncodePNG encodes the pixmap as a PNG stream, suitable for full-page
// image insertion.
func (p *Pixmap) EncodePNG() ([]byte, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("cannot encode empty pixmap (%dx%d)", p.Width, p.Height)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image()); err != nil {
		return nil, fmt.Errorf("encoding pixmap: %w", err)
	}
	return buf.Bytes(), nil
}
