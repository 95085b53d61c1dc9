package sampler

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

func TestDesignToneFilterClampsCutoffToBandEdges(t *testing.T) {
	const sampleRate = 48000.0

	high := designToneFilter(1e6, 0.707, sampleRate)
	wantHigh := design.Lowpass(maxCutoffFraction*sampleRate, 0.707, sampleRate)
	if high != wantHigh {
		t.Fatalf("cutoff above Nyquist not clamped: got=%+v want=%+v", high, wantHigh)
	}

	low := designToneFilter(-50, 0.707, sampleRate)
	wantLow := design.Lowpass(minCutoffHz, 0.707, sampleRate)
	if low != wantLow {
		t.Fatalf("negative cutoff not clamped: got=%+v want=%+v", low, wantLow)
	}
}

func TestDesignToneFilterFloorsResonance(t *testing.T) {
	const sampleRate = 48000.0
	got := designToneFilter(1000, 0, sampleRate)
	want := design.Lowpass(1000, minResonance, sampleRate)
	if got != want {
		t.Fatalf("zero resonance not floored: got=%+v want=%+v", got, want)
	}
}

func TestToneFilterPassesBandBelowCutoff(t *testing.T) {
	const sampleRate = 48000.0
	s := biquad.NewSection(designToneFilter(20000, 0.707, sampleRate))

	const n = 4800
	in := make([]float64, n)
	out := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / sampleRate)
		out[i] = s.ProcessSample(in[i])
	}

	// Skip the transient before comparing levels.
	ratio := signalRMS(out[500:]) / signalRMS(in[500:])
	if ratio < 0.9 || ratio > 1.1 {
		t.Fatalf("passband gain off: got ratio %f", ratio)
	}
}

func TestToneFilterAttenuatesBandAboveCutoff(t *testing.T) {
	const sampleRate = 48000.0
	s := biquad.NewSection(designToneFilter(100, 0.707, sampleRate))

	const n = 4800
	in := make([]float64, n)
	out := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 10000 * float64(i) / sampleRate)
		out[i] = s.ProcessSample(in[i])
	}

	ratio := signalRMS(out[500:]) / signalRMS(in[500:])
	if ratio > 0.05 {
		t.Fatalf("stopband leak: got ratio %f", ratio)
	}
}

func TestToneFilterSectionStateIndependentPerVoice(t *testing.T) {
	coeffs := designToneFilter(2000, 0.707, 48000)
	a := biquad.NewSection(coeffs)
	b := biquad.NewSection(coeffs)

	for i := 0; i < 64; i++ {
		a.ProcessSample(1)
	}
	if a.State() == b.State() {
		t.Fatalf("expected diverged states after one-sided processing")
	}
	a.Reset()
	if a.State() != b.State() {
		t.Fatalf("reset did not clear delay line: got=%v", a.State())
	}
}
