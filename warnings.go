package watermark

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal problem encountered while processing a
// page. Warnings indicate that the run continued but the named page may
// still carry its watermark.
type Warning struct {
	Page    int // 1-indexed page number, 0 if not page-specific
	Stage   string
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Stage, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}

// FormatWarnings renders a warning list as one line per warning.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
