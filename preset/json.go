package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-sampler/sampler"
)

// File is the JSON schema for sampler presets. Pointer fields are optional
// and fall back to the engine defaults when omitted.
type File struct {
	Attack          *float64 `json:"attack"`
	Decay           *float64 `json:"decay"`
	Sustain         *float64 `json:"sustain"`
	Release         *float64 `json:"release"`
	FilterCutoff    *float64 `json:"filter_cutoff"`
	FilterResonance *float64 `json:"filter_resonance"`
	OutputGain      *float64 `json:"output_gain"`
	RootNote        *int     `json:"root_note"`
	MaxPolyphony    *int     `json:"max_polyphony"`

	SampleWavPath string       `json:"sample_wav_path"`
	Loop          *LoopSetting `json:"loop"`
}

// LoopSetting selects a loop region in normalized positions.
type LoopSetting struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Enabled bool    `json:"enabled"`
}

// Preset is a resolved preset: engine params plus the sample and loop
// settings the hosting layer feeds into the engine.
type Preset struct {
	Params        *sampler.Params
	SampleWavPath string
	LoopStart     float64
	LoopEnd       float64
	Looping       bool
}

// LoadJSON loads a preset JSON file and applies it on top of default
// params. A relative sample path is resolved against the preset's
// directory.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := &Preset{
		Params:  sampler.NewDefaultParams(),
		LoopEnd: 1,
	}
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if p.SampleWavPath != "" && !filepath.IsAbs(p.SampleWavPath) {
		base := filepath.Dir(path)
		p.SampleWavPath = filepath.Clean(filepath.Join(base, p.SampleWavPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil || dst.Params == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}
	p := dst.Params

	if f.Attack != nil {
		if *f.Attack < 0 {
			return fmt.Errorf("attack must be >= 0")
		}
		p.Attack = *f.Attack
	}
	if f.Decay != nil {
		if *f.Decay < 0 {
			return fmt.Errorf("decay must be >= 0")
		}
		p.Decay = *f.Decay
	}
	if f.Sustain != nil {
		if *f.Sustain < 0 || *f.Sustain > 1 {
			return fmt.Errorf("sustain must be in [0,1]")
		}
		p.Sustain = *f.Sustain
	}
	if f.Release != nil {
		if *f.Release < 0 {
			return fmt.Errorf("release must be >= 0")
		}
		p.Release = *f.Release
	}
	if f.FilterCutoff != nil {
		if *f.FilterCutoff <= 0 {
			return fmt.Errorf("filter_cutoff must be > 0")
		}
		p.FilterCutoff = *f.FilterCutoff
	}
	if f.FilterResonance != nil {
		if *f.FilterResonance <= 0 {
			return fmt.Errorf("filter_resonance must be > 0")
		}
		p.FilterResonance = *f.FilterResonance
	}
	if f.OutputGain != nil {
		if *f.OutputGain <= 0 {
			return fmt.Errorf("output_gain must be > 0")
		}
		p.OutputGain = *f.OutputGain
	}
	if f.RootNote != nil {
		if *f.RootNote < 0 || *f.RootNote > 127 {
			return fmt.Errorf("root_note must be in [0,127]")
		}
		p.RootNote = *f.RootNote
	}
	if f.MaxPolyphony != nil {
		if *f.MaxPolyphony < 1 || *f.MaxPolyphony > 256 {
			return fmt.Errorf("max_polyphony must be in [1,256]")
		}
		p.MaxPolyphony = *f.MaxPolyphony
	}

	if f.SampleWavPath != "" {
		dst.SampleWavPath = strings.TrimSpace(f.SampleWavPath)
	}
	if f.Loop != nil {
		if f.Loop.Start < 0 || f.Loop.Start > 1 || f.Loop.End < 0 || f.Loop.End > 1 {
			return fmt.Errorf("loop positions must be in [0,1]")
		}
		if f.Loop.End <= f.Loop.Start {
			return fmt.Errorf("loop end must be greater than loop start")
		}
		dst.LoopStart = f.Loop.Start
		dst.LoopEnd = f.Loop.End
		dst.Looping = f.Loop.Enabled
	}
	return nil
}
