package rebuild

import (
	"math"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// MaskToWhite sets every pixel whose channels all lie within
// tolerance*255 of target to opaque white, leaving other pixels untouched.
// It returns the number of pixels changed.
func MaskToWhite(pm *engine.Pixmap, target engine.RGB, tolerance float64) int {
	limit := tolerance * 255
	want := [3]float64{float64(target.R), float64(target.G), float64(target.B)}
	changed := 0
	for i := 0; i+2 < len(pm.Pix); i += 3 {
		if math.Abs(float64(pm.Pix[i])-want[0]) > limit ||
			math.Abs(float64(pm.Pix[i+1])-want[1]) > limit ||
			math.Abs(float64(pm.Pix[i+2])-want[2]) > limit {
			continue
		}
		pm.Pix[i] = 255
		pm.Pix[i+1] = 255
		pm.Pix[i+2] = 255
		changed++
	}
	return changed
}
