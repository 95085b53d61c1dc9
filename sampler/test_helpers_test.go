package sampler

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// identityCoeffs passes samples through a biquad section unchanged.
var identityCoeffs = biquad.Coefficients{B0: 1}

func rampBuffer(n, sampleRate int) *SampleBuffer {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i) / float64(n)
	}
	return &SampleBuffer{Data: data, SampleRate: sampleRate}
}

func constantBuffer(n int, value float64, sampleRate int) *SampleBuffer {
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	return &SampleBuffer{Data: data, SampleRate: sampleRate}
}

func sineBuffer(n int, freq float64, sampleRate int) *SampleBuffer {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return &SampleBuffer{Data: data, SampleRate: sampleRate}
}

func signalRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// newTriggeredVoice builds a standalone voice with a pass-through filter,
// instant attack and full sustain, triggered over the whole buffer.
func newTriggeredVoice(sampleRate float64, buf *SampleBuffer, looping bool, pitchRatio float64) *Voice {
	v := &Voice{env: NewEnvelope(sampleRate)}
	v.env.SetParams(0, 0, 1, 0.01)
	v.filter.Coefficients = identityCoeffs
	v.Trigger(69, 1.0, buf, 0, 1, looping, pitchRatio)
	return v
}

// renderBlock drains pending events and renders one mono block.
func renderBlock(e *Engine, size int) []float64 {
	out := make([]float64, size)
	e.Render(out)
	return out
}
