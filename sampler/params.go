package sampler

const (
	// DefaultSampleRate is used when the host does not specify a rate.
	DefaultSampleRate = 48000

	// DefaultBlockSize matches the block length typical audio hosts request.
	DefaultBlockSize = 128

	// DefaultMaxPolyphony is the fixed voice-pool size.
	DefaultMaxPolyphony = 32

	// minEnvelopeSeconds is the floor applied to envelope phase durations so
	// per-sample rates stay finite.
	minEnvelopeSeconds = 1e-4

	// Cutoff is kept inside [minCutoffHz, maxCutoffFraction*sampleRate] and
	// resonance above minResonance so the RBJ alpha term never blows up.
	minCutoffHz       = 20.0
	maxCutoffFraction = 0.45
	minResonance      = 0.1
)

// Params holds the engine-wide parameter set. Envelope fields apply to the
// generators of all voices; filter fields drive the shared lowpass
// coefficients. Values are clamped where they are consumed, never rejected.
type Params struct {
	Attack  float64 // seconds
	Decay   float64 // seconds
	Sustain float64 // 0-1
	Release float64 // seconds

	FilterCutoff    float64 // Hz
	FilterResonance float64 // Q

	// OutputGain is the headroom applied to the voice mix before the
	// output clip.
	OutputGain float64

	// RootNote is the MIDI note that plays the sample at its native pitch.
	RootNote int

	MaxPolyphony int
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Attack:          0.01,
		Decay:           0.1,
		Sustain:         0.7,
		Release:         0.3,
		FilterCutoff:    8000,
		FilterResonance: 0.707,
		OutputGain:      0.25,
		RootNote:        69,
		MaxPolyphony:    DefaultMaxPolyphony,
	}
}
