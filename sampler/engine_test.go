package sampler

import (
	"math"
	"testing"
)

func oneShotTestParams() *Params {
	p := NewDefaultParams()
	p.Attack = 0
	p.Decay = 0
	p.Sustain = 1
	p.Release = 0.05
	p.FilterCutoff = 1e9 // clamped to the band edge
	p.FilterResonance = 0.707
	p.OutputGain = 1
	p.MaxPolyphony = 4
	return p
}

func TestEngineReadySignalsAfterConstruction(t *testing.T) {
	e := NewEngine(48000, nil)
	select {
	case <-e.Ready():
	default:
		t.Fatalf("readiness channel not closed after NewEngine")
	}
}

func TestEngineRendersSilenceWithoutSample(t *testing.T) {
	e := NewEngine(48000, nil)
	e.NoteOn(69, 1, 0, 1, false)

	out := renderBlock(e, 128)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("non-zero sample %d without loaded sample: %f", i, s)
		}
	}
	if got := e.ActiveVoices(); got != 0 {
		t.Fatalf("voices triggered without a sample: got=%d", got)
	}
}

func TestEngineEndToEndOneShotPlayback(t *testing.T) {
	const sampleRate = 8000
	e := NewEngine(sampleRate, oneShotTestParams())
	e.LoadSample([]float64{0.0, 1.0, 0.0, -1.0}, sampleRate)
	e.NoteOn(69, 1, 0, 1, false)

	out := renderBlock(e, 16)
	if out[0] != 0 {
		t.Fatalf("first sample not silent: got=%f", out[0])
	}
	if out[1] < 0.5 {
		t.Fatalf("second sample lost too much level through the filter: got=%f", out[1])
	}
	for i := 4; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("output after buffer end not silent at %d: got=%f", i, out[i])
		}
	}
	if got := e.ActiveVoices(); got != 0 {
		t.Fatalf("one-shot voice still active: got=%d", got)
	}
}

func TestEngineMixesVoicesWithUnityDCGain(t *testing.T) {
	p := oneShotTestParams()
	e := NewEngine(48000, p)
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))
	e.NoteOn(69, 1, 0, 1, true)
	e.NoteOn(69, 1, 0, 1, true)

	out := renderBlock(e, 256)
	for i, s := range out {
		if s > 1 || s < -1 {
			t.Fatalf("sample %d outside [-1,1]: %f", i, s)
		}
	}
	if last := out[len(out)-1]; last < 0.9 {
		t.Fatalf("two half-level voices should mix near 1.0 at DC: got=%f", last)
	}
}

func TestEngineOutputStageHardClips(t *testing.T) {
	p := oneShotTestParams()
	p.OutputGain = 4
	e := NewEngine(48000, p)
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))
	e.NoteOn(69, 1, 0, 1, true)
	e.NoteOn(69, 1, 0, 1, true)

	out := renderBlock(e, 256)
	for i, s := range out {
		if s > 1 || s < -1 {
			t.Fatalf("clipped output escaped range at %d: %f", i, s)
		}
	}
	if last := out[len(out)-1]; last != 1 {
		t.Fatalf("hot mix should pin at the clip ceiling: got=%f", last)
	}
}

func TestEngineStealsOldestVoiceBeyondPolyphony(t *testing.T) {
	p := oneShotTestParams()
	e := NewEngine(48000, p)
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))

	for note := 60; note < 65; note++ {
		e.NoteOn(note, 1, 0, 1, true)
	}
	renderBlock(e, DefaultBlockSize)

	if got := e.ActiveVoices(); got != p.MaxPolyphony {
		t.Fatalf("active voices: got=%d want=%d", got, p.MaxPolyphony)
	}
	for _, v := range e.pool.voices {
		if v.active && v.note == 60 {
			t.Fatalf("earliest note not stolen, still sounding on voice %d", v.index)
		}
	}
}

func TestEngineRetriggerAllocatesSecondVoice(t *testing.T) {
	p := oneShotTestParams()
	e := NewEngine(48000, p)
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))

	e.NoteOn(60, 1, 0, 1, true)
	renderBlock(e, DefaultBlockSize)
	e.NoteOff(60)
	e.NoteOn(60, 1, 0, 1, true)
	renderBlock(e, DefaultBlockSize)

	count := 0
	for _, v := range e.pool.voices {
		if v.active && v.note == 60 {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("retrigger should overlap release with a fresh voice: got=%d voices", count)
	}
}

func TestEngineSampleSwapKeepsInFlightVoicesOnOldBuffer(t *testing.T) {
	p := oneShotTestParams()
	e := NewEngine(48000, p)

	bufA := constantBuffer(48000, 0.5, 48000)
	bufB := constantBuffer(48000, 0.25, 48000)

	e.LoadSampleBuffer(bufA)
	e.NoteOn(60, 1, 0, 1, true)
	renderBlock(e, DefaultBlockSize)

	e.LoadSampleBuffer(bufB)
	e.NoteOn(62, 1, 0, 1, true)
	renderBlock(e, DefaultBlockSize)

	var onA, onB bool
	for _, v := range e.pool.voices {
		if !v.active {
			continue
		}
		switch v.note {
		case 60:
			onA = v.buffer == bufA
		case 62:
			onB = v.buffer == bufB
		}
	}
	if !onA {
		t.Fatalf("in-flight voice lost its original buffer on sample swap")
	}
	if !onB {
		t.Fatalf("new voice not bound to the freshly loaded buffer")
	}
}

func TestEngineSetParamRebuildsSharedFilter(t *testing.T) {
	e := NewEngine(48000, nil)
	e.SetParam(ParamFilterCutoff, 500)
	renderBlock(e, DefaultBlockSize)

	want := designToneFilter(500, e.params.FilterResonance, 48000)
	if e.coeffs != want {
		t.Fatalf("shared coefficients not rebuilt: got=%+v want=%+v", e.coeffs, want)
	}
	for _, v := range e.pool.voices {
		if v.filter.Coefficients != want {
			t.Fatalf("voice %d missing updated coefficients", v.index)
		}
	}
}

func TestEngineSetParamRoutesEnvelopeFields(t *testing.T) {
	e := NewEngine(48000, nil)
	e.SetParam(ParamSustain, 0.25)
	e.SetParam(ParamRelease, 1.5)
	renderBlock(e, DefaultBlockSize)

	if e.params.Sustain != 0.25 || e.params.Release != 1.5 {
		t.Fatalf("params not updated: sustain=%f release=%f", e.params.Sustain, e.params.Release)
	}
	for _, v := range e.pool.voices {
		if v.env.sustain != 0.25 {
			t.Fatalf("voice %d envelope sustain not propagated: got=%f", v.index, v.env.sustain)
		}
	}
}

func TestEngineDisposeSilencesAndIgnoresEvents(t *testing.T) {
	e := NewEngine(48000, oneShotTestParams())
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))
	e.NoteOn(69, 1, 0, 1, true)
	out := renderBlock(e, DefaultBlockSize)
	if signalRMS(out) == 0 {
		t.Fatalf("expected signal before dispose")
	}

	e.Dispose()
	out = renderBlock(e, DefaultBlockSize)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("non-silent sample %d after dispose: %f", i, s)
		}
	}

	e.NoteOn(69, 1, 0, 1, true)
	out = renderBlock(e, DefaultBlockSize)
	if got := e.ActiveVoices(); got != 0 {
		t.Fatalf("dispose did not stop event intake: %d active voices", got)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("non-silent sample %d after post-dispose NoteOn: %f", i, s)
		}
	}
}

func TestEngineNoteOffWithoutNoteOnIsHarmless(t *testing.T) {
	e := NewEngine(48000, nil)
	e.LoadSampleBuffer(constantBuffer(1024, 0.5, 48000))
	e.NoteOff(60)
	out := renderBlock(e, DefaultBlockSize)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("stray output after lone NoteOff at %d: %f", i, s)
		}
	}
}

func TestEngineRenderStereoDuplicatesMono(t *testing.T) {
	e := NewEngine(48000, oneShotTestParams())
	e.LoadSampleBuffer(sineBuffer(4800, 440, 48000))
	e.NoteOn(69, 1, 0, 1, true)

	dst := make([]float32, DefaultBlockSize*2)
	e.RenderStereo(dst)

	nonZero := false
	for i := 0; i < len(dst); i += 2 {
		if dst[i] != dst[i+1] {
			t.Fatalf("stereo frame %d not duplicated: left=%f right=%f", i/2, dst[i], dst[i+1])
		}
		if dst[i] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("stereo render produced silence")
	}
}

func TestEngineVelocityZeroNoteIsInaudible(t *testing.T) {
	e := NewEngine(48000, oneShotTestParams())
	e.LoadSampleBuffer(constantBuffer(48000, 0.5, 48000))
	e.NoteOn(69, 0, 0, 1, true)

	out := renderBlock(e, DefaultBlockSize)
	for i, s := range out {
		if math.Abs(s) > 1e-12 {
			t.Fatalf("zero-velocity note audible at %d: %f", i, s)
		}
	}
}
