package watermark

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soft98-top/pdf-watermark-remover/engine"
	"github.com/soft98-top/pdf-watermark-remover/engine/enginetest"
	"github.com/soft98-top/pdf-watermark-remover/pattern"
)

func watermarkedText(text string, bbox engine.Rect) *engine.TextBlock {
	return &engine.TextBlock{
		BBox: bbox,
		Lines: []engine.Line{{
			BBox:  bbox,
			Spans: []engine.Span{{Text: text, Font: "helv", Size: 11, BBox: bbox}},
		}},
	}
}

// newTestDoc builds a document with n pages, each carrying a watermark
// stamp and a per-page body text.
func newTestDoc(eng *enginetest.Engine, n int) *enginetest.Document {
	doc := enginetest.NewDoc(eng)
	for i := 0; i < n; i++ {
		page := doc.AddPage(612, 792)
		page.AddElement(watermarkedText("WATERMARK", engine.NewRect(100, 300, 500, 340)))
		page.AddElement(watermarkedText(fmt.Sprintf("body %d", i), engine.NewRect(72, 72, 540, 90)))
	}
	return doc
}

func pageTexts(t *testing.T, page *enginetest.Page) []string {
	t.Helper()
	els, err := page.Elements()
	if err != nil {
		t.Fatalf("Elements() error: %v", err)
	}
	var texts []string
	for _, el := range els {
		if tb, ok := el.(*engine.TextBlock); ok {
			texts = append(texts, tb.Text())
		}
	}
	return texts
}

var watermarkPattern = pattern.Pattern{Kind: pattern.KindText, Text: "WATERMARK"}

// ====================
// Pattern pipeline
// ====================

func TestRemoveByPatternWholeDocument(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 3)
	r := FromDocument(eng, doc)
	defer r.Close()

	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(nil); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}

	if doc.PageCount() != 3 {
		t.Fatalf("page count = %d, want 3", doc.PageCount())
	}
	for i, page := range doc.Pages() {
		texts := pageTexts(t, page)
		want := fmt.Sprintf("body %d", i)
		if len(texts) != 1 || texts[0] != want {
			t.Errorf("page %d texts = %v, want [%q]", i, texts, want)
		}
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings())
	}
}

func TestRemoveByPatternSubrange(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 4)
	r := FromDocument(eng, doc)
	defer r.Close()

	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(&PageRange{Start: 1, End: 2}); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}

	for i, page := range doc.Pages() {
		texts := pageTexts(t, page)
		inRange := i == 1 || i == 2
		hasWatermark := false
		for _, txt := range texts {
			if txt == "WATERMARK" {
				hasWatermark = true
			}
		}
		if inRange && hasWatermark {
			t.Errorf("page %d inside range still has the watermark", i)
		}
		if !inRange && !hasWatermark {
			t.Errorf("page %d outside range was modified", i)
		}
	}
}

func TestRemoveByPatternNoPatterns(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 2)
	// Would fail if any page were touched.
	doc.Pages()[0].FailElements = true
	r := FromDocument(eng, doc)
	defer r.Close()

	if err := r.RemoveByPattern(nil); !errors.Is(err, ErrNoPatterns) {
		t.Errorf("RemoveByPattern() = %v, want ErrNoPatterns", err)
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("pages were touched before validation: %v", r.Warnings())
	}
}

func TestRemoveByPatternInvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		rng  PageRange
	}{
		{"negative start", PageRange{Start: -1, End: 1}},
		{"start after end", PageRange{Start: 2, End: 1}},
		{"end past document", PageRange{Start: 0, End: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := enginetest.New()
			r := FromDocument(eng, newTestDoc(eng, 3))
			defer r.Close()
			r.AddPattern(watermarkPattern)

			if err := r.RemoveByPattern(&tt.rng); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("RemoveByPattern(%+v) = %v, want ErrInvalidRange", tt.rng, err)
			}
			if len(r.Warnings()) != 0 {
				t.Errorf("pages were touched before validation: %v", r.Warnings())
			}
		})
	}
}

func TestRemoveByPatternEmptyDocument(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, enginetest.NewDoc(eng))
	defer r.Close()
	r.AddPattern(watermarkPattern)

	if err := r.RemoveByPattern(nil); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("RemoveByPattern(empty doc) = %v, want ErrInvalidRange", err)
	}
}

func TestRemoveByPatternPageFailureContinues(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 3)
	doc.Pages()[1].FailElements = true
	r := FromDocument(eng, doc)
	defer r.Close()

	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(nil); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}

	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one for the failing page", warnings)
	}
	if warnings[0].Page != 2 || warnings[0].Stage != "pattern rebuild" {
		t.Errorf("warning = %+v, want page 2 pattern rebuild", warnings[0])
	}

	// Pages around the failure were still rebuilt.
	for _, i := range []int{0, 2} {
		texts := pageTexts(t, doc.Pages()[i])
		if len(texts) != 1 || !strings.HasPrefix(texts[0], "body") {
			t.Errorf("page %d texts = %v, want the watermark removed", i, texts)
		}
	}
}

func TestRemoveByPatternReclaimCadence(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 25)
	r := FromDocument(eng, doc)
	defer r.Close()

	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(nil); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}
	// Every tenth page: after pages 10 and 20, not after the final 25th.
	if doc.Reclaims != 2 {
		t.Errorf("Reclaims = %d over 25 pages, want 2", doc.Reclaims)
	}
}

// ====================
// Color pipeline
// ====================

func TestRemoveByColorFlattensPages(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 2)
	r := FromDocument(eng, doc).DPI(72)
	defer r.Close()

	err := r.RemoveByColor([]engine.RGB{{R: 255}}, nil)
	if err != nil {
		t.Fatalf("RemoveByColor() error: %v", err)
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings())
	}
	// Pages are replaced wholesale with a single flattened image.
	for i, page := range doc.Pages() {
		els, err := page.Elements()
		if err != nil {
			t.Fatal(err)
		}
		if len(els) != 1 || els[0].Type() != engine.ElementImage {
			t.Errorf("page %d = %d elements, want a single full-page image", i, len(els))
		}
	}
}

func TestRemoveByColorNoColors(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 1))
	defer r.Close()

	if err := r.RemoveByColor(nil, nil); !errors.Is(err, ErrNoColors) {
		t.Errorf("RemoveByColor(no colors) = %v, want ErrNoColors", err)
	}
}

func TestRemoveByColorAllColorsFailWarns(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 3)
	doc.Pages()[1].FailRasterize = true
	r := FromDocument(eng, doc).DPI(72)
	defer r.Close()

	err := r.RemoveByColor([]engine.RGB{{R: 255}, {B: 255}}, nil)
	if err != nil {
		t.Fatalf("RemoveByColor() error: %v", err)
	}
	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Page != 2 || warnings[0].Stage != "color rebuild" {
		t.Errorf("warning = %+v, want page 2 color rebuild", warnings[0])
	}
}

func TestRemoveByColorReclaimPerBatch(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 25)
	r := FromDocument(eng, doc).DPI(72)
	defer r.Close()

	if err := r.RemoveByColor([]engine.RGB{{R: 255}}, nil); err != nil {
		t.Fatalf("RemoveByColor() error: %v", err)
	}
	// 25 pages at the default batch size of 10 is three batches.
	if doc.Reclaims != 3 {
		t.Errorf("Reclaims = %d over 25 pages, want 3", doc.Reclaims)
	}
}

func TestRemoveByColorBatchSize(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 9)
	r := FromDocument(eng, doc).BatchSize(4).DPI(72)
	defer r.Close()

	if err := r.RemoveByColor([]engine.RGB{{R: 255}}, nil); err != nil {
		t.Fatalf("RemoveByColor() error: %v", err)
	}
	// Batches 4+4+1.
	if doc.Reclaims != 3 {
		t.Errorf("Reclaims = %d with batch size 4 over 9 pages, want 3", doc.Reclaims)
	}
}

// ====================
// Analysis
// ====================

func TestAnalyzePageColors(t *testing.T) {
	eng := enginetest.New()
	doc := enginetest.NewDoc(eng)
	page := doc.AddPage(100, 100)

	red := engine.RGB{R: 220, G: 20, B: 20}
	raster := engine.NewPixmap(100, 100)
	for y := 0; y < 30; y++ {
		for x := 0; x < 100; x++ {
			raster.Set(x, y, red)
		}
	}
	page.SetRaster(raster)

	r := FromDocument(eng, doc)
	defer r.Close()

	// dpi 72 keeps the 100-point page at its native 100x100 raster.
	got, err := r.AnalyzePageColors(0, 72)
	if err != nil {
		t.Fatalf("AnalyzePageColors() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("dominant colors = %+v, want white and red", got)
	}
	if got[0].RGB != engine.White || got[0].Percentage != 70.0 {
		t.Errorf("first = %+v, want white at 70%%", got[0])
	}
	if got[1].RGB != red || got[1].Percentage != 30.0 {
		t.Errorf("second = %+v, want red at 30%%", got[1])
	}
}

func TestAnalyzePageColorsBadIndex(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 2))
	defer r.Close()

	if _, err := r.AnalyzePageColors(2, 72); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("AnalyzePageColors(2) = %v, want ErrInvalidRange", err)
	}
	if _, err := r.AnalyzePageColors(-1, 72); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("AnalyzePageColors(-1) = %v, want ErrInvalidRange", err)
	}
}

func TestAnalyzePageElements(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 1))
	defer r.Close()

	els, err := r.AnalyzePageElements(0)
	if err != nil {
		t.Fatalf("AnalyzePageElements() error: %v", err)
	}
	if len(els) != 2 {
		t.Errorf("elements = %d, want 2", len(els))
	}
	if _, err := r.AnalyzePageElements(1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("AnalyzePageElements(1) = %v, want ErrInvalidRange", err)
	}
}

// ====================
// Pattern set management
// ====================

func TestPatternSetManagement(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 1))
	defer r.Close()

	r.AddPattern(watermarkPattern)
	r.AddPatternFromElement(
		&engine.ImageBlock{BBox: engine.NewRect(10, 10, 50, 50), XRef: 3},
		"", "logo")

	got := r.Patterns()
	if len(got) != 2 {
		t.Fatalf("Patterns() = %d entries, want 2", len(got))
	}
	if got[1].Kind != pattern.KindImage || got[1].Description != "logo" {
		t.Errorf("derived pattern = %+v", got[1])
	}

	// The returned slice is a copy.
	got[0] = pattern.Pattern{}
	if r.Patterns()[0] != watermarkPattern {
		t.Error("mutating the returned slice changed the remover's set")
	}

	r.ClearPatterns()
	if len(r.Patterns()) != 0 {
		t.Error("ClearPatterns() left patterns behind")
	}
}

func TestSaveLoadPatternsReplacesWholesale(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 1))
	defer r.Close()

	r.AddPattern(watermarkPattern)
	path := filepath.Join(t.TempDir(), "patterns.json")
	if err := r.SavePatterns(path); err != nil {
		t.Fatalf("SavePatterns() error: %v", err)
	}

	r.ClearPatterns()
	r.AddPattern(pattern.Pattern{Kind: pattern.KindText, Text: "OTHER"})
	if err := r.LoadPatterns(path); err != nil {
		t.Fatalf("LoadPatterns() error: %v", err)
	}
	got := r.Patterns()
	if len(got) != 1 || got[0].Text != "WATERMARK" {
		t.Errorf("Patterns() after load = %+v, want only the saved set", got)
	}
}

func TestLoadPatternsErrorKeepsCurrentSet(t *testing.T) {
	eng := enginetest.New()
	r := FromDocument(eng, newTestDoc(eng, 1))
	defer r.Close()

	r.AddPattern(watermarkPattern)
	err := r.LoadPatterns(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("LoadPatterns() succeeded on a missing file")
	}
	if len(r.Patterns()) != 1 {
		t.Error("failed load modified the pattern set")
	}
}

// ====================
// Persistence and lifecycle
// ====================

func TestSaveWritesOutputAndCloses(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 25)
	eng.Register("in.pdf", doc)

	r := Open(eng, "in.pdf")
	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(nil); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}
	if err := r.Save("out.pdf"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	saved := eng.SavedDoc("out.pdf")
	if saved == nil {
		t.Fatal("no document saved under out.pdf")
	}
	if saved.PageCount() != 25 {
		t.Errorf("saved page count = %d, want 25", saved.PageCount())
	}
	for i, page := range saved.Pages() {
		for _, txt := range pageTexts(t, page) {
			if txt == "WATERMARK" {
				t.Errorf("saved page %d still carries the watermark", i)
			}
		}
	}

	// Save closes the remover and releases the working document.
	if !doc.Closed() {
		t.Error("working document not closed after Save")
	}
	if _, err := r.PageCount(); !errors.Is(err, ErrClosed) {
		t.Errorf("PageCount() after Save = %v, want ErrClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 1)
	r := FromDocument(eng, doc)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !doc.Closed() {
		t.Error("working document not closed")
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if err := r.RemoveByPattern(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("RemoveByPattern() after Close = %v, want ErrClosed", err)
	}
}

func TestOpenUnknownPath(t *testing.T) {
	eng := enginetest.New()
	r := Open(eng, "nope.pdf")
	defer r.Close()

	if _, err := r.PageCount(); err == nil {
		t.Error("PageCount() succeeded with no document registered")
	}
}

func TestWarningsAreACopy(t *testing.T) {
	eng := enginetest.New()
	doc := newTestDoc(eng, 1)
	doc.Pages()[0].FailElements = true
	r := FromDocument(eng, doc)
	defer r.Close()

	r.AddPattern(watermarkPattern)
	if err := r.RemoveByPattern(nil); err != nil {
		t.Fatalf("RemoveByPattern() error: %v", err)
	}
	got := r.Warnings()
	if len(got) != 1 {
		t.Fatalf("warnings = %v, want one", got)
	}
	got[0].Message = "mutated"
	if r.Warnings()[0].Message == "mutated" {
		t.Error("mutating the returned slice changed the recorded warnings")
	}
}

func TestWarningFormatting(t *testing.T) {
	w := Warning{Page: 3, Stage: "color rebuild", Message: "every candidate color failed"}
	if got := w.String(); got != "page 3: color rebuild: every candidate color failed" {
		t.Errorf("String() = %q", got)
	}
	global := Warning{Stage: "save", Message: "slow disk"}
	if got := global.String(); got != "save: slow disk" {
		t.Errorf("String() = %q", got)
	}
	joined := FormatWarnings([]Warning{w, global})
	if joined != w.String()+"\n"+global.String() {
		t.Errorf("FormatWarnings() = %q", joined)
	}
}
