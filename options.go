package watermark

// Defaults for the color pipeline and batching.
const (
	DefaultTolerance = 0.1
	DefaultDPI       = 200
	DefaultBatchSize = 10

	// reclaimInterval is how many pages the pattern pipeline processes
	// between collaborator resource reclamations.
	reclaimInterval = 10
)

// Options holds the tunables of a removal run.
type Options struct {
	tolerance float64 // per-channel color match tolerance (0-1)
	dpi       int     // rasterization DPI for the color pipeline
	batchSize int     // pages per batch / save chunk
}

func defaultOptions() Options {
	return Options{
		tolerance: DefaultTolerance,
		dpi:       DefaultDPI,
		batchSize: DefaultBatchSize,
	}
}

// PageRange is an inclusive zero-based page interval. A nil *PageRange
// means the whole document.
type PageRange struct {
	Start int
	End   int
}
