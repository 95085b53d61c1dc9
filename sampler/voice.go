package sampler

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/interp"
)

var linearInterp = interp.NewLagrangeInterpolator(1)

// Voice is one unit of polyphony: a fractional cursor into the sample
// buffer, shaped by an ADSR envelope and a resonant lowpass section.
// Voices live in a fixed pool and are reused; Trigger reinitializes all
// per-note state.
type Voice struct {
	index  int
	active bool
	note   int
	gain   float64

	buffer     *SampleBuffer
	cursor     float64
	pitchRatio float64
	loopStart  float64
	loopEnd    float64
	looping    bool

	env    Envelope
	filter biquad.Section

	// age counts samples rendered since the last trigger; the pool
	// steals the voice with the greatest age.
	age uint64
}

// Trigger reinitializes the voice for a new note. loopStart and loopEnd
// are normalized positions in [0, 1] mapped onto frame indices; the loop
// end is kept at least one frame past the start.
func (v *Voice) Trigger(note int, velocity float64, buf *SampleBuffer, loopStart, loopEnd float64, looping bool, pitchRatio float64) {
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 1 {
		velocity = 1
	}

	v.note = note
	v.gain = velocity
	v.buffer = buf
	v.loopStart, v.loopEnd = loopBounds(buf, loopStart, loopEnd)
	v.looping = looping
	v.pitchRatio = pitchRatio
	v.cursor = v.loopStart
	v.age = 0

	v.filter.Reset()
	v.env.NoteOn()
	v.active = true
}

// Release starts the envelope release; the voice deactivates on its own
// once the level decays to zero.
func (v *Voice) Release() {
	v.env.NoteOff()
}

// renderSample produces one output sample and advances the voice. Inactive
// voices yield silence.
func (v *Voice) renderSample() float64 {
	if !v.active || v.buffer.Len() == 0 {
		return 0
	}

	sample := v.readCursor()
	sample *= v.env.Process() * v.gain
	sample = v.filter.ProcessSample(sample)

	v.cursor += v.pitchRatio
	v.age++

	if v.looping {
		span := v.loopEnd - v.loopStart
		for v.cursor >= v.loopEnd {
			v.cursor -= span
		}
	} else if v.cursor > v.loopEnd {
		v.active = false
	}
	if v.env.Stage() == StageIdle {
		v.active = false
	}
	return sample
}

// readCursor linearly interpolates the buffer at the fractional cursor.
// Reads past either end of the buffer are silence, so the last frame of a
// one-shot fades toward zero instead of clamping.
func (v *Voice) readCursor() float64 {
	data := v.buffer.Data
	if v.cursor < 0 {
		return 0
	}
	i := int(v.cursor)
	if i >= len(data) {
		return 0
	}
	frac := v.cursor - float64(i)
	if i+1 < len(data) {
		return linearInterp.Interpolate(data[i:i+2], frac)
	}
	return data[i] * (1 - frac)
}

// loopBounds maps normalized loop positions onto frame indices, clamping
// to the buffer and forcing the end at least one frame past the start.
func loopBounds(buf *SampleBuffer, start, end float64) (float64, float64) {
	n := buf.Len()
	if n == 0 {
		return 0, 1
	}
	maxIdx := float64(n - 1)

	if start < 0 {
		start = 0
	}
	if start > 1 {
		start = 1
	}
	if end < 0 {
		end = 0
	}
	if end > 1 {
		end = 1
	}

	s := start * maxIdx
	e := end * maxIdx
	if e < s+1 {
		e = s + 1
	}
	return s, e
}
