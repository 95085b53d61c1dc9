package sampler

// EnvelopeStage identifies the current segment of the ADSR state machine.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// releaseEpsilon is the level below which a releasing envelope snaps to idle.
const releaseEpsilon = 1e-4

// Envelope is a linear ADSR generator advanced one level per sample.
// Phase durations are converted to per-sample rates up front so Process
// stays a handful of adds and compares.
type Envelope struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	stage EnvelopeStage
	level float64

	attackRate  float64
	decayRate   float64
	releaseRate float64
}

// NewEnvelope creates an idle envelope at the given sample rate.
func NewEnvelope(sampleRate float64) Envelope {
	e := Envelope{sampleRate: sampleRate}
	e.SetParams(0.01, 0.1, 0.7, 0.3)
	return e
}

// SetParams updates phase durations (seconds) and the sustain level.
// Non-positive durations are coerced to a small minimum so rates stay
// finite; sustain is clamped to [0, 1]. Safe to call mid-note: the
// current stage and level are preserved.
func (e *Envelope) SetParams(attack, decay, sustain, release float64) {
	if attack < minEnvelopeSeconds {
		attack = minEnvelopeSeconds
	}
	if decay < minEnvelopeSeconds {
		decay = minEnvelopeSeconds
	}
	if release < minEnvelopeSeconds {
		release = minEnvelopeSeconds
	}
	if sustain < 0 {
		sustain = 0
	}
	if sustain > 1 {
		sustain = 1
	}

	e.attack = attack
	e.decay = decay
	e.sustain = sustain
	e.release = release

	e.attackRate = 1.0 / (attack * e.sampleRate)
	e.decayRate = (1.0 - sustain) / (decay * e.sampleRate)
}

// NoteOn restarts the envelope from zero into the attack stage.
func (e *Envelope) NoteOn() {
	e.stage = StageAttack
	e.level = 0
}

// NoteOff moves the envelope into release from its current level, so the
// release ramp spans the configured duration regardless of where the
// note was interrupted. A no-op on an idle envelope.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	e.stage = StageRelease
	e.releaseRate = e.level / (e.release * e.sampleRate)
}

// Process advances the envelope by one sample and returns the new level.
func (e *Envelope) Process() float64 {
	switch e.stage {
	case StageAttack:
		e.level += e.attackRate
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.decayRate
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseRate
		if e.level <= releaseEpsilon {
			e.level = 0
			e.stage = StageIdle
		}
	}
	return e.level
}

// Stage returns the current stage.
func (e *Envelope) Stage() EnvelopeStage {
	return e.stage
}

// Level returns the current level without advancing.
func (e *Envelope) Level() float64 {
	return e.level
}

// Reset forces the envelope to idle at level zero.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
}
