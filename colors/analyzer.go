// Package colors implements dominant-color analysis of rasterized pages
// and parsing/formatting of target colors for the color removal pipeline.
package colors

import (
	"math"
	"sort"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

const (
	// DefaultTolerance is the per-channel merge tolerance as a fraction
	// of the 8-bit channel range.
	DefaultTolerance = 0.05

	// DefaultMinPixels is the noise floor: colors occupying fewer raw
	// pixels are discarded before clustering, regardless of image size.
	DefaultMinPixels = 100

	// minPercentage is the smallest cluster share reported.
	minPercentage = 0.1
)

// Dominant is one clustered color and its share of the sampled pixels.
type Dominant struct {
	RGB        engine.RGB
	Percentage float64 // rounded to two decimals
}

// Analyzer clusters the exact colors of a pixel buffer into a ranked list
// of dominant colors. The zero value is not useful; use NewAnalyzer.
type Analyzer struct {
	Tolerance float64
	MinPixels int
}

// NewAnalyzer returns an analyzer with the default tolerance and noise floor.
func NewAnalyzer() Analyzer {
	return Analyzer{Tolerance: DefaultTolerance, MinPixels: DefaultMinPixels}
}

// Analyze returns the dominant colors of the pixmap in descending order of
// coverage. Only clusters covering at least 0.1% of the pixels are reported.
//
// Candidate colors are ordered by descending pixel count (ties by packed
// RGB value) before the greedy merge, so the result is fully determined by
// the pixel multiset.
func (a Analyzer) Analyze(pm *engine.Pixmap) []Dominant {
	total := pm.Width * pm.Height
	if total == 0 {
		return nil
	}

	counts := make(map[uint32]int)
	for i := 0; i+2 < len(pm.Pix); i += 3 {
		key := uint32(pm.Pix[i])<<16 | uint32(pm.Pix[i+1])<<8 | uint32(pm.Pix[i+2])
		counts[key]++
	}

	type candidate struct {
		key   uint32
		count int
	}
	candidates := make([]candidate, 0, len(counts))
	for key, count := range counts {
		if count < a.MinPixels {
			continue
		}
		candidates = append(candidates, candidate{key: key, count: count})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].key < candidates[j].key
	})

	// Greedy merge: each candidate joins the first established cluster
	// within tolerance, otherwise it becomes a new representative. With
	// the ordering above, representatives are always the most frequent
	// member of their cluster.
	type cluster struct {
		rep   engine.RGB
		count int
	}
	var clusters []cluster
	for _, c := range candidates {
		rgb := unpack(c.key)
		merged := false
		for i := range clusters {
			if a.similar(rgb, clusters[i].rep) {
				clusters[i].count += c.count
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{rep: rgb, count: c.count})
		}
	}

	var result []Dominant
	for _, cl := range clusters {
		pct := math.Round(float64(cl.count)/float64(total)*100*100) / 100
		if pct < minPercentage {
			continue
		}
		result = append(result, Dominant{RGB: cl.rep, Percentage: pct})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Percentage > result[j].Percentage
	})
	return result
}

// similar reports whether every channel of the two colors differs by at
// most Tolerance of the channel range.
func (a Analyzer) similar(c1, c2 engine.RGB) bool {
	limit := a.Tolerance * 255
	return math.Abs(float64(c1.R)-float64(c2.R)) <= limit &&
		math.Abs(float64(c1.G)-float64(c2.G)) <= limit &&
		math.Abs(float64(c1.B)-float64(c2.B)) <= limit
}

func unpack(key uint32) engine.RGB {
	return engine.RGB{
		R: uint8(key >> 16),
		G: uint8(key >> 8),
		B: uint8(key),
	}
}
