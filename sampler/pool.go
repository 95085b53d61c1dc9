package sampler

// VoicePool is a fixed arena of voices allocated once at engine start.
// No voices are created or freed afterwards; triggering reuses slots.
type VoicePool struct {
	voices []*Voice
}

// NewVoicePool allocates size voices up front.
func NewVoicePool(size int, sampleRate float64) *VoicePool {
	if size < 1 {
		size = 1
	}
	voices := make([]*Voice, size)
	for i := range voices {
		voices[i] = &Voice{
			index: i,
			env:   NewEnvelope(sampleRate),
		}
	}
	return &VoicePool{voices: voices}
}

// Allocate returns the voice to use for a new note: the lowest-index
// inactive voice when one exists, otherwise the active voice with the
// greatest age. The scan order makes the tie-break deterministic: among
// equally old voices the lowest index wins.
func (p *VoicePool) Allocate() *Voice {
	for _, v := range p.voices {
		if !v.active {
			return v
		}
	}
	victim := p.voices[0]
	for _, v := range p.voices[1:] {
		if v.age > victim.age {
			victim = v
		}
	}
	return victim
}

// ReleaseNote releases every active voice bound to note. Releasing a note
// with no active voice is a no-op.
func (p *VoicePool) ReleaseNote(note int) {
	for _, v := range p.voices {
		if v.active && v.note == note {
			v.Release()
		}
	}
}

// ActiveCount returns the number of currently sounding voices.
func (p *VoicePool) ActiveCount() int {
	n := 0
	for _, v := range p.voices {
		if v.active {
			n++
		}
	}
	return n
}

// Silence forces every voice inactive immediately, bypassing release.
func (p *VoicePool) Silence() {
	for _, v := range p.voices {
		v.active = false
		v.env.Reset()
		v.filter.Reset()
	}
}
