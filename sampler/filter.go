package sampler

import (
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// designToneFilter builds the resonant lowpass coefficients shared by all
// voices. Cutoff is clamped to [minCutoffHz, maxCutoffFraction*sampleRate]
// and resonance floored at minResonance so the design stays stable near
// the band edges.
func designToneFilter(cutoff, resonance, sampleRate float64) biquad.Coefficients {
	cutoff = core.Clamp(cutoff, minCutoffHz, maxCutoffFraction*sampleRate)
	if resonance < minResonance {
		resonance = minResonance
	}
	return design.Lowpass(cutoff, resonance, sampleRate)
}
