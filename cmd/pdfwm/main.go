// Command pdfwm removes recurring watermarks from PDF documents, either by
// structural pattern matching or by color substitution on rasterized pages.
//
// A PDF engine backend must be linked into the binary and selected with
// -backend (or left implicit when exactly one is registered). Invalid user
// input prints a diagnostic and exits cleanly; unexpected failures log the
// error chain and exit non-zero.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	watermark "github.com/soft98-top/pdf-watermark-remover"
	"github.com/soft98-top/pdf-watermark-remover/colors"
	"github.com/soft98-top/pdf-watermark-remover/engine"
	"github.com/soft98-top/pdf-watermark-remover/pattern"
)

// fileConfig is the optional YAML config, preloading the flag surface.
type fileConfig struct {
	Mode         string   `yaml:"mode"`
	Colors       []string `yaml:"colors"`
	Tolerance    float64  `yaml:"tolerance"`
	DPI          int      `yaml:"dpi"`
	BatchSize    int      `yaml:"batch_size"`
	LoadPatterns string   `yaml:"load_patterns"`
}

// listFlag accumulates repeated flag values, additionally splitting each
// value on whitespace so "--colors '255,0,0 200,200,200'" works.
type listFlag []string

func (f *listFlag) String() string { return strings.Join(*f, " ") }

func (f *listFlag) Set(value string) error {
	*f = append(*f, strings.Fields(value)...)
	return nil
}

// intListFlag accumulates repeated integer flag values.
type intListFlag []int

func (f *intListFlag) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

func (f *intListFlag) Set(value string) error {
	for _, field := range strings.Fields(value) {
		var v int
		if _, err := fmt.Sscanf(field, "%d", &v); err != nil {
			return fmt.Errorf("invalid integer %q", field)
		}
		*f = append(*f, v)
	}
	return nil
}

func main() {
	var (
		output       = flag.String("output", "output.pdf", "output PDF file path")
		analyzePage  = flag.Int("page", -1, "analyze the colors or elements of this page (0-indexed)")
		colorMode    = flag.Bool("color-mode", false, "use the color substitution pipeline")
		mode         = flag.String("mode", "", "processing mode: color or pattern")
		tolerance    = flag.Float64("tolerance", watermark.DefaultTolerance, "color match tolerance (0-1)")
		dpi          = flag.Int("dpi", watermark.DefaultDPI, "rasterization DPI")
		batchSize    = flag.Int("batch-size", watermark.DefaultBatchSize, "pages per processing batch")
		savePatterns = flag.String("save-patterns", "", "save the pattern set to this JSON file")
		loadPatterns = flag.String("load-patterns", "", "load the pattern set from this JSON file")
		startPage    = flag.Int("start-page", -1, "first page to process (0-indexed)")
		endPage      = flag.Int("end-page", -1, "last page to process (0-indexed, inclusive)")
		configPath   = flag.String("config", "", "YAML config file preloading these options")
		backendName  = flag.String("backend", "", "PDF engine backend to use")
		verbose      = flag.Bool("verbose", false, "debug logging")
	)
	var colorSpecs, textPatterns, descriptions listFlag
	var addPatterns intListFlag
	flag.Var(&colorSpecs, "colors", "target colors to replace, as R,G,B or #rrggbb (repeatable)")
	flag.Var(&textPatterns, "text-patterns", "text substrings for new patterns (repeatable)")
	flag.Var(&descriptions, "descriptions", "descriptions for new patterns (repeatable)")
	flag.Var(&addPatterns, "add-patterns", "1-based element indexes to turn into patterns (repeatable)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pdfwm [options] input.pdf")
		flag.PrintDefaults()
		return
	}
	input := flag.Arg(0)

	// Config file values fill in anything not set on the command line.
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: cannot read config file: %v\n", err)
			return
		}
		var cfg fileConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid config file: %v\n", err)
			return
		}
		applyConfig(&cfg, mode, &colorSpecs, tolerance, dpi, batchSize, loadPatterns)
	}

	eng, err := engine.Backend(*backendName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	remover := watermark.Open(eng, input).
		Logger(log).
		Tolerance(*tolerance).
		DPI(*dpi).
		BatchSize(*batchSize)
	defer remover.Close()

	useColor := *colorMode || *mode == "color"

	// Analysis only: report one page's colors or elements and exit.
	if *analyzePage >= 0 && len(addPatterns) == 0 {
		if err := analyze(remover, *analyzePage, *dpi, useColor); err != nil {
			fail(log, err)
		}
		return
	}

	var rng *watermark.PageRange
	if *startPage >= 0 || *endPage >= 0 {
		rng = &watermark.PageRange{Start: max(*startPage, 0), End: *endPage}
		if *endPage < 0 {
			n, err := remover.PageCount()
			if err != nil {
				fail(log, err)
			}
			rng.End = n - 1
		}
	}

	switch {
	case useColor:
		if len(colorSpecs) == 0 {
			fmt.Fprintln(os.Stderr, "error: color mode requires --colors")
			return
		}
		targets, err := colors.ParseList(colorSpecs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		log.Info().Int("colors", len(targets)).Msg("starting color removal")
		if err := remover.RemoveByColor(targets, rng); err != nil {
			failIfUnexpected(log, err)
			return
		}

	case *mode == "pattern" || *loadPatterns != "" || len(addPatterns) > 0:
		if len(addPatterns) > 0 {
			if err := buildPatterns(remover, *analyzePage, addPatterns, textPatterns, descriptions); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return
			}
			if *savePatterns != "" {
				if err := remover.SavePatterns(*savePatterns); err != nil {
					fail(log, err)
				}
				log.Info().Str("path", *savePatterns).Msg("patterns saved")
			}
			return
		}
		if *loadPatterns != "" {
			if err := remover.LoadPatterns(*loadPatterns); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return
			}
			log.Info().Str("path", *loadPatterns).Msg("patterns loaded")
		}
		log.Info().Msg("starting pattern removal")
		if err := remover.RemoveByPattern(rng); err != nil {
			failIfUnexpected(log, err)
			return
		}

	default:
		fmt.Fprintln(os.Stderr, "error: specify a processing mode (--color-mode or --mode)")
		return
	}

	if warnings := remover.Warnings(); len(warnings) > 0 {
		log.Warn().Int("count", len(warnings)).Msg("pages with problems:\n" + watermark.FormatWarnings(warnings))
	}
	if err := remover.Save(*output); err != nil {
		fail(log, err)
	}
}

// applyConfig overlays config-file values where flags kept their defaults.
func applyConfig(cfg *fileConfig, mode *string, colorSpecs *listFlag, tolerance *float64, dpi, batchSize *int, loadPatterns *string) {
	if *mode == "" {
		*mode = cfg.Mode
	}
	if len(*colorSpecs) == 0 {
		*colorSpecs = append(*colorSpecs, cfg.Colors...)
	}
	if *tolerance == watermark.DefaultTolerance && cfg.Tolerance > 0 {
		*tolerance = cfg.Tolerance
	}
	if *dpi == watermark.DefaultDPI && cfg.DPI > 0 {
		*dpi = cfg.DPI
	}
	if *batchSize == watermark.DefaultBatchSize && cfg.BatchSize > 0 {
		*batchSize = cfg.BatchSize
	}
	if *loadPatterns == "" {
		*loadPatterns = cfg.LoadPatterns
	}
}

// analyze prints a page's dominant colors or its element inventory.
func analyze(remover *watermark.Remover, page, dpi int, colorMode bool) error {
	if colorMode {
		dominant, err := remover.AnalyzePageColors(page, dpi)
		if err != nil {
			return err
		}
		fmt.Printf("Dominant colors of page %d:\n", page+1)
		for i, d := range dominant {
			fmt.Printf("%d. %s\n", i+1, d)
		}
		return nil
	}

	elements, err := remover.AnalyzePageElements(page)
	if err != nil {
		return err
	}
	fmt.Printf("Elements of page %d:\n", page+1)
	for i, el := range elements {
		c := el.BoundingBox().Coords()
		fmt.Printf("%d. [%s] (%.1f, %.1f, %.1f, %.1f)", i+1, el.Type(), c[0], c[1], c[2], c[3])
		if tb, ok := el.(*engine.TextBlock); ok {
			fmt.Printf(" %q", tb.Text())
		}
		fmt.Println()
	}
	return nil
}

// buildPatterns derives patterns from inspected elements of one page.
func buildPatterns(remover *watermark.Remover, page int, indexes []int, texts, descriptions []string) error {
	if page < 0 {
		return fmt.Errorf("--add-patterns requires --page")
	}
	if len(texts) != len(indexes) || len(descriptions) != len(indexes) {
		return fmt.Errorf("--add-patterns, --text-patterns and --descriptions must have the same count")
	}
	elements, err := remover.AnalyzePageElements(page)
	if err != nil {
		return err
	}
	for i, idx := range indexes {
		if idx < 1 || idx > len(elements) {
			return fmt.Errorf("invalid element index %d (page has %d elements)", idx, len(elements))
		}
		remover.AddPatternFromElement(elements[idx-1], texts[i], descriptions[i])
	}
	count := len(remover.Patterns())
	fmt.Printf("Pattern set now holds %d pattern(s):\n%s", count, pattern.Describe(remover.Patterns()))
	return nil
}

// fail logs an unexpected error and exits non-zero.
func fail(log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("fatal")
	os.Exit(1)
}

// failIfUnexpected treats the remover's input-validation errors as user
// errors (diagnostic, clean exit) and everything else as fatal.
func failIfUnexpected(log zerolog.Logger, err error) {
	switch {
	case errorsIsAny(err, watermark.ErrInvalidRange, watermark.ErrNoPatterns, watermark.ErrNoColors):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	default:
		fail(log, err)
	}
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
