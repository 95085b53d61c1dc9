// Package sampler implements a real-time polyphonic sample-playback engine:
// a fixed voice pool reading a shared sample buffer through fractional
// cursors, shaped per voice by an ADSR envelope and a resonant lowpass,
// mixed into blocks. Control and rendering are decoupled by a bounded
// event queue drained at block boundaries, so the render path never
// allocates or blocks.
package sampler

import (
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

const controlQueueCapacity = 256

// Engine owns the voice pool, the active sample buffer and the shared
// filter coefficients. Control methods may be called from any goroutine;
// their effects apply at the next block boundary. Render and RenderStereo
// must be called from a single goroutine (the audio callback).
type Engine struct {
	sampleRate float64
	params     Params

	pool   *VoicePool
	buffer *SampleBuffer
	coeffs biquad.Coefficients

	queue  *controlQueue
	ready  chan struct{}
	closed atomic.Bool

	// disposed is owned by the render goroutine.
	disposed bool

	mono []float64
}

// NewEngine creates an engine with all voices allocated up front. A nil
// params uses defaults. The readiness channel is closed once internal
// state is fully initialized, before the engine is returned.
func NewEngine(sampleRate int, params *Params) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	p := *NewDefaultParams()
	if params != nil {
		p = *params
	}
	if p.MaxPolyphony < 1 {
		p.MaxPolyphony = DefaultMaxPolyphony
	}
	if p.OutputGain <= 0 {
		p.OutputGain = NewDefaultParams().OutputGain
	}

	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     p,
		pool:       NewVoicePool(p.MaxPolyphony, float64(sampleRate)),
		queue:      newControlQueue(controlQueueCapacity),
		ready:      make(chan struct{}),
		mono:       make([]float64, DefaultBlockSize),
	}
	e.coeffs = designToneFilter(p.FilterCutoff, p.FilterResonance, e.sampleRate)
	e.applyEnvelopeParams()
	e.applyFilterCoeffs()
	close(e.ready)
	return e
}

// Ready returns a channel closed exactly once when the engine is ready to
// accept control events. Events arriving earlier are queued, never lost.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// SampleRate returns the engine rate in Hz.
func (e *Engine) SampleRate() int {
	return int(e.sampleRate)
}

// Params returns a copy of the current parameter set.
func (e *Engine) Params() Params {
	return e.params
}

// ActiveVoices reports how many voices are sounding. Render-path owned;
// call it from the rendering goroutine between blocks.
func (e *Engine) ActiveVoices() int {
	return e.pool.ActiveCount()
}

// NoteOn queues a note trigger. Velocity is in [0, 1]; loopStart and
// loopEnd are normalized positions in [0, 1]. A no-op while no sample is
// loaded.
func (e *Engine) NoteOn(note int, velocity, loopStart, loopEnd float64, looping bool) {
	if e.closed.Load() {
		return
	}
	e.queue.push(Event{
		kind:      eventNoteOn,
		note:      note,
		velocity:  velocity,
		loopStart: loopStart,
		loopEnd:   loopEnd,
		looping:   looping,
	})
}

// NoteOff queues a release for every voice bound to note.
func (e *Engine) NoteOff(note int) {
	if e.closed.Load() {
		return
	}
	e.queue.push(Event{kind: eventNoteOff, note: note})
}

// SetParam queues a parameter change. Values are clamped when applied,
// never rejected.
func (e *Engine) SetParam(param ParamName, value float64) {
	if e.closed.Load() {
		return
	}
	e.queue.push(Event{kind: eventSetParam, param: param, value: value})
}

// LoadSample copies frames into a fresh buffer and queues it as the new
// active sample. The swap happens at the next block boundary; voices
// already playing keep their previous buffer until they fall silent.
func (e *Engine) LoadSample(frames []float64, sampleRate int) {
	if e.closed.Load() || sampleRate <= 0 {
		return
	}
	e.LoadSampleBuffer(NewSampleBuffer(frames, sampleRate))
}

// LoadSampleBuffer queues an already-built buffer as the new active
// sample. The buffer must not be mutated after this call.
func (e *Engine) LoadSampleBuffer(buf *SampleBuffer) {
	if e.closed.Load() || buf == nil {
		return
	}
	e.queue.push(Event{kind: eventLoadSample, buffer: buf})
}

// Dispose stops the engine: further control calls are ignored and the
// render path outputs silence from the next block on.
func (e *Engine) Dispose() {
	if e.closed.Swap(true) {
		return
	}
	e.queue.push(Event{kind: eventDispose})
}

// Render fills dst with one mono block in [-1, 1]: drains pending control
// events, sums the active voices, applies the output gain and hard-clips.
func (e *Engine) Render(dst []float64) {
	e.drainEvents()

	if e.disposed || e.pool.ActiveCount() == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	gain := e.params.OutputGain
	for i := range dst {
		sum := 0.0
		for _, v := range e.pool.voices {
			if !v.active {
				continue
			}
			sum += v.renderSample()
		}
		dst[i] = core.Clamp(core.FlushDenormals(sum*gain), -1, 1)
	}
}

// RenderStereo fills an interleaved stereo float32 block by duplicating
// the mono render into both channels.
func (e *Engine) RenderStereo(dst []float32) {
	frames := len(dst) / 2
	if len(e.mono) < frames {
		e.mono = make([]float64, frames)
	}
	mono := e.mono[:frames]
	e.Render(mono)
	for i, s := range mono {
		f := float32(s)
		dst[2*i] = f
		dst[2*i+1] = f
	}
}

func (e *Engine) drainEvents() {
	for {
		select {
		case ev := <-e.queue.ch:
			e.applyEvent(ev)
		default:
			return
		}
	}
}

func (e *Engine) applyEvent(ev Event) {
	if e.disposed {
		return
	}
	switch ev.kind {
	case eventNoteOn:
		if e.buffer.Len() == 0 {
			return
		}
		ratio := noteToRatio(ev.note, e.params.RootNote) *
			float64(e.buffer.SampleRate) / e.sampleRate
		v := e.pool.Allocate()
		v.Trigger(ev.note, ev.velocity, e.buffer, ev.loopStart, ev.loopEnd, ev.looping, ratio)
	case eventNoteOff:
		e.pool.ReleaseNote(ev.note)
	case eventSetParam:
		e.applyParam(ev.param, ev.value)
	case eventLoadSample:
		e.buffer = ev.buffer
	case eventDispose:
		e.disposed = true
		e.pool.Silence()
	}
}

func (e *Engine) applyParam(p ParamName, value float64) {
	switch p {
	case ParamAttack:
		e.params.Attack = value
		e.applyEnvelopeParams()
	case ParamDecay:
		e.params.Decay = value
		e.applyEnvelopeParams()
	case ParamSustain:
		e.params.Sustain = value
		e.applyEnvelopeParams()
	case ParamRelease:
		e.params.Release = value
		e.applyEnvelopeParams()
	case ParamFilterCutoff:
		e.params.FilterCutoff = value
		e.refreshFilter()
	case ParamFilterResonance:
		e.params.FilterResonance = value
		e.refreshFilter()
	}
}

func (e *Engine) applyEnvelopeParams() {
	for _, v := range e.pool.voices {
		v.env.SetParams(e.params.Attack, e.params.Decay, e.params.Sustain, e.params.Release)
	}
}

// refreshFilter rebuilds the shared coefficients and pushes them into
// every voice section, preserving each section's delay-line state.
func (e *Engine) refreshFilter() {
	e.coeffs = designToneFilter(e.params.FilterCutoff, e.params.FilterResonance, e.sampleRate)
	e.applyFilterCoeffs()
}

func (e *Engine) applyFilterCoeffs() {
	for _, v := range e.pool.voices {
		v.filter.Coefficients = e.coeffs
	}
}
