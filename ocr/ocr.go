//go:build ocr

// Package ocr provides optional text recovery for scanned pages, so that
// text patterns can be defined for documents whose watermarks exist only in
// raster form.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// RecognizePixmap performs OCR on a rasterized page.
func (c *Client) RecognizePixmap(pm *engine.Pixmap) (string, error) {
	data, err := pm.EncodePNG()
	if err != nil {
		return "", err
	}
	return c.RecognizeImage(data)
}

// RecognizeRegion performs OCR on a pixel region of a rasterized page.
// The region is given in raster coordinates and clamped to the pixmap.
// This is the usual way to read a suspected watermark off a scanned page
// before defining a text pattern for it.
func (c *Client) RecognizeRegion(pm *engine.Pixmap, x0, y0, x1, y1 int) (string, error) {
	region := pm.Crop(x0, y0, x1, y1)
	if region.Width == 0 || region.Height == 0 {
		return "", fmt.Errorf("empty OCR region (%d,%d)-(%d,%d)", x0, y0, x1, y1)
	}
	return c.RecognizePixmap(region)
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
// See gosseract.PageSegMode constants for available modes.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}
