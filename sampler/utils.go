package sampler

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// noteToRatio converts a MIDI note into the playback-rate ratio relative to
// the root note (one octave doubles the rate).
func noteToRatio(note, rootNote int) float64 {
	if note == rootNote {
		return 1
	}
	exponent := float32(note-rootNote) / 12.0
	return float64(pow2Approx(exponent))
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
