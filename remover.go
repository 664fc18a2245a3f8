package watermark

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/soft98-top/pdf-watermark-remover/colors"
	"github.com/soft98-top/pdf-watermark-remover/engine"
	"github.com/soft98-top/pdf-watermark-remover/pattern"
	"github.com/soft98-top/pdf-watermark-remover/rebuild"
)

// state tracks the remover lifecycle:
// open -> processing -> saved|failed -> closed.
type state int

const (
	stateOpen state = iota
	stateProcessing
	stateSaved
	stateFailed
	stateClosed
)

// maxAnalysisPixels bounds the pixel count fed to the color analyzer;
// larger rasters are downsampled first.
const maxAnalysisPixels = 4 << 20

// Remover orchestrates watermark removal over one working document. It is
// single-threaded: all operations block on the calling goroutine, pages are
// processed in ascending index order, and candidate colors are tried in the
// caller-supplied order. A Remover must not be shared between goroutines.
type Remover struct {
	eng  engine.Engine
	doc  engine.Document
	path string

	patterns []pattern.Pattern
	analyzer colors.Analyzer
	opts     Options
	log      zerolog.Logger

	state    state
	warnings []Warning
}

// ============================================================================
// Configuration
// ============================================================================

// Logger sets the logger used for progress and warning output.
// The default logger discards everything.
func (r *Remover) Logger(log zerolog.Logger) *Remover {
	r.log = log
	return r
}

// Tolerance sets the per-channel color match tolerance (0-1) for the color
// pipeline.
func (r *Remover) Tolerance(t float64) *Remover {
	r.opts.tolerance = t
	return r
}

// DPI sets the rasterization resolution for the color pipeline.
func (r *Remover) DPI(dpi int) *Remover {
	r.opts.dpi = dpi
	return r
}

// BatchSize sets how many pages are processed between resource
// reclamation checkpoints, and the save copy chunk size.
func (r *Remover) BatchSize(n int) *Remover {
	if n > 0 {
		r.opts.batchSize = n
	}
	return r
}

// ============================================================================
// Pattern set management
// ============================================================================

// AddPattern appends a pattern to the ordered pattern set.
func (r *Remover) AddPattern(p pattern.Pattern) {
	if p.Kind == pattern.KindText && p.Text == "" {
		// Legal but degenerate: an empty text pattern matches every text
		// element on every page.
		r.log.Warn().Str("description", p.Description).
			Msg("text pattern with empty text matches all text elements")
	}
	r.patterns = append(r.patterns, p)
}

// AddPatternFromElement derives a pattern from an inspected page element
// and appends it to the set.
func (r *Remover) AddPatternFromElement(el engine.Element, text, description string) {
	r.AddPattern(pattern.FromElement(el, text, description))
}

// Patterns returns a copy of the current pattern set, in order.
func (r *Remover) Patterns() []pattern.Pattern {
	return append([]pattern.Pattern(nil), r.patterns...)
}

// ClearPatterns empties the pattern set.
func (r *Remover) ClearPatterns() {
	r.patterns = nil
}

// SavePatterns writes the current pattern set to a JSON pattern file.
func (r *Remover) SavePatterns(path string) error {
	return pattern.Save(path, r.patterns)
}

// LoadPatterns replaces the current pattern set wholesale with the
// contents of a pattern file. On error the current set is left untouched.
func (r *Remover) LoadPatterns(path string) error {
	loaded, err := pattern.Load(path)
	if err != nil {
		return err
	}
	for _, p := range loaded {
		if p.Kind == pattern.KindText && p.Text == "" {
			r.log.Warn().Str("description", p.Description).
				Msg("loaded text pattern with empty text matches all text elements")
		}
	}
	r.patterns = loaded
	return nil
}

// ============================================================================
// Analysis
// ============================================================================

// PageCount returns the number of pages of the working document, opening
// it if necessary.
func (r *Remover) PageCount() (int, error) {
	doc, err := r.document()
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

// AnalyzePageColors rasterizes one page and returns its dominant colors in
// descending order of coverage. The result is advisory: it feeds manual
// selection of target colors for the color pipeline.
func (r *Remover) AnalyzePageColors(pageIndex, dpi int) ([]colors.Dominant, error) {
	doc, err := r.document()
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= doc.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidRange, pageIndex, doc.PageCount())
	}
	if dpi <= 0 {
		dpi = r.opts.dpi
	}
	page, err := doc.Page(pageIndex)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageIndex+1, err)
	}
	pm, err := page.Rasterize(dpi)
	if err != nil {
		return nil, fmt.Errorf("page %d: rasterizing: %w", pageIndex+1, err)
	}
	if pm.Width*pm.Height > maxAnalysisPixels {
		scale := float64(maxAnalysisPixels) / float64(pm.Width*pm.Height)
		w := int(float64(pm.Width) * scale)
		h := int(float64(pm.Height) * scale)
		if w > 0 && h > 0 {
			pm = pm.Scale(w, h)
		}
	}
	return r.analyzer.Analyze(pm), nil
}

// AnalyzePageElements returns a fresh snapshot of one page's text and
// image blocks, for manual pattern construction.
func (r *Remover) AnalyzePageElements(pageIndex int) ([]engine.Element, error) {
	doc, err := r.document()
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= doc.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidRange, pageIndex, doc.PageCount())
	}
	page, err := doc.Page(pageIndex)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageIndex+1, err)
	}
	return page.Elements()
}

// ============================================================================
// Removal pipelines
// ============================================================================

// RemoveByPattern rebuilds every page in the range (nil means the whole
// document), dropping elements matched by the registered patterns. A page
// that fails to rebuild is logged, recorded as a warning, and skipped; the
// loop continues with the next page. Collaborator resources are reclaimed
// every ten pages.
//
// Returns ErrNoPatterns if the pattern set is empty and ErrInvalidRange if
// the range is malformed; both are raised before any page is touched.
func (r *Remover) RemoveByPattern(rng *PageRange) error {
	doc, err := r.document()
	if err != nil {
		return err
	}
	if len(r.patterns) == 0 {
		return ErrNoPatterns
	}
	start, end, err := r.resolveRange(rng, doc.PageCount())
	if err != nil {
		return err
	}
	r.state = stateProcessing

	recon := rebuild.New(r.eng, doc, r.log)
	total := end - start + 1
	for i, pageNum := 0, start; pageNum <= end; i, pageNum = i+1, pageNum+1 {
		r.log.Info().Int("page", pageNum+1).Int("done", i).Int("total", total).
			Msg("rebuilding page")
		if err := recon.ByPattern(pageNum, r.patterns); err != nil {
			r.warn(pageNum+1, "pattern rebuild", err.Error())
			continue
		}
		if (i+1)%reclaimInterval == 0 {
			doc.Reclaim()
		}
	}
	r.log.Info().Int("pages", total).Msg("pattern removal finished")
	return nil
}

// RemoveByColor processes the range (nil means the whole document) in
// batches, applying every candidate color in order to each page. A page
// succeeds if at least one color application succeeds; a page that fails
// every color is recorded as a warning and the run continues.
// Collaborator resources are reclaimed once per batch.
func (r *Remover) RemoveByColor(targets []engine.RGB, rng *PageRange) error {
	doc, err := r.document()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return ErrNoColors
	}
	start, end, err := r.resolveRange(rng, doc.PageCount())
	if err != nil {
		return err
	}
	r.state = stateProcessing

	recon := rebuild.New(r.eng, doc, r.log)
	total := end - start + 1
	for batchStart := start; batchStart <= end; batchStart += r.opts.batchSize {
		batchEnd := batchStart + r.opts.batchSize - 1
		if batchEnd > end {
			batchEnd = end
		}
		r.log.Info().Int("from", batchStart+1).Int("to", batchEnd+1).Int("total", total).
			Msg("processing batch")

		for pageNum := batchStart; pageNum <= batchEnd; pageNum++ {
			// Each color sees the page state left by earlier applications.
			success := false
			for _, target := range targets {
				if recon.ByColor(pageNum, target, r.opts.tolerance, r.opts.dpi) {
					success = true
				}
			}
			if !success {
				r.warn(pageNum+1, "color rebuild", "every candidate color failed")
			}
		}
		doc.Reclaim()
	}
	r.log.Info().Int("pages", total).Msg("color removal finished")
	return nil
}

// ============================================================================
// Persistence and lifecycle
// ============================================================================

// Save rebuilds the final document by copying pages in batches from the
// working document into a fresh output document, then persists it with
// maximal compression and cleanup. All working resources are released
// afterward regardless of success or failure; the Remover is closed.
func (r *Remover) Save(outputPath string) error {
	doc, err := r.document()
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := r.eng.NewDocument()
	if err != nil {
		r.state = stateFailed
		return fmt.Errorf("creating output document: %w", err)
	}
	defer out.Close()

	total := doc.PageCount()
	for start := 0; start < total; start += r.opts.batchSize {
		end := start + r.opts.batchSize - 1
		if end >= total {
			end = total - 1
		}
		if err := out.InsertFrom(doc, start, end, start); err != nil {
			r.state = stateFailed
			return fmt.Errorf("copying pages %d-%d: %w", start+1, end+1, err)
		}
		r.log.Info().Int("copied", end+1).Int("total", total).Msg("saving")
		doc.Reclaim()
	}

	if err := out.Save(outputPath, engine.MaxCompression()); err != nil {
		r.state = stateFailed
		return fmt.Errorf("saving %s: %w", outputPath, err)
	}
	r.state = stateSaved
	r.log.Info().Str("path", outputPath).Int("pages", total).Msg("saved")
	return nil
}

// Close releases the working document. It is safe to call multiple times;
// calls after the first are no-ops.
func (r *Remover) Close() error {
	if r.state == stateClosed {
		return nil
	}
	r.state = stateClosed
	if r.doc != nil {
		err := r.doc.Close()
		r.doc = nil
		return err
	}
	return nil
}

// Warnings returns the non-fatal problems recorded so far, in order.
func (r *Remover) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}

// ============================================================================
// Internal helpers
// ============================================================================

// document returns the working document, opening it on first use.
func (r *Remover) document() (engine.Document, error) {
	if r.state == stateClosed {
		return nil, ErrClosed
	}
	if r.doc != nil {
		return r.doc, nil
	}
	if r.path == "" {
		return nil, fmt.Errorf("no input document specified")
	}
	doc, err := r.eng.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.path, err)
	}
	r.doc = doc
	return doc, nil
}

// resolveRange expands an optional range against the page count and
// validates it: 0 <= start <= end < pageCount.
func (r *Remover) resolveRange(rng *PageRange, pageCount int) (start, end int, err error) {
	if pageCount == 0 {
		return 0, 0, fmt.Errorf("%w: document has no pages", ErrInvalidRange)
	}
	if rng == nil {
		return 0, pageCount - 1, nil
	}
	if rng.Start < 0 || rng.Start > rng.End || rng.End >= pageCount {
		return 0, 0, fmt.Errorf("%w: [%d, %d] with %d pages", ErrInvalidRange, rng.Start, rng.End, pageCount)
	}
	return rng.Start, rng.End, nil
}

func (r *Remover) warn(page int, stage, message string) {
	r.warnings = append(r.warnings, Warning{Page: page, Stage: stage, Message: message})
	r.log.Warn().Int("page", page).Str("stage", stage).Msg(message)
}
