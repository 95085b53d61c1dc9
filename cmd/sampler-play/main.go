package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/ebitengine/oto/v3"
)

// engineReader adapts the engine's block renderer to the io.Reader oto
// pulls from. The float32 scratch is pre-allocated; Read only grows it if
// the device asks for unusually large chunks.
type engineReader struct {
	engine *sampler.Engine
	frames []float32
}

func (r *engineReader) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	numSamples -= numSamples % 2 // whole stereo frames only
	if len(r.frames) < numSamples {
		r.frames = make([]float32, numSamples)
	}
	frames := r.frames[:numSamples]

	r.engine.RenderStereo(frames)
	for i, s := range frames {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return numSamples * 4, nil
}

func main() {
	notesFlag := flag.String("notes", "57,60,64,69", "Comma-separated MIDI notes to arpeggiate")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	hold := flag.Float64("hold", 0.4, "Seconds to hold each note")
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	samplePath := flag.String("sample", "", "Sample WAV path override (optional)")
	loop := flag.Bool("loop", false, "Loop the sample until NoteOff")
	flag.Parse()

	notes, err := parseNotes(*notesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -notes: %v\n", err)
		os.Exit(1)
	}

	ps := &preset.Preset{Params: sampler.NewDefaultParams(), LoopEnd: 1}
	if *presetPath != "" {
		ps, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *samplePath != "" {
		ps.SampleWavPath = *samplePath
	}
	if ps.SampleWavPath == "" {
		fmt.Fprintln(os.Stderr, "No sample given: pass -sample or a preset with sample_wav_path")
		os.Exit(1)
	}
	looping := ps.Looping || *loop

	buf, err := sampler.LoadWAV(ps.SampleWavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sample %q: %v\n", ps.SampleWavPath, err)
		os.Exit(1)
	}

	e := sampler.NewEngine(*sampleRate, ps.Params)
	<-e.Ready()
	e.LoadSampleBuffer(buf)

	op := &oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready

	player := ctx.NewPlayer(&engineReader{
		engine: e,
		frames: make([]float32, 4096),
	})
	player.Play()
	defer player.Close()

	fmt.Printf("Playing %v at %d Hz (sample: %s)\n", notes, *sampleRate, ps.SampleWavPath)

	holdDur := time.Duration(*hold * float64(time.Second))
	vel := float64(*velocity) / 127.0
	for _, note := range notes {
		e.NoteOn(note, vel, ps.LoopStart, ps.LoopEnd, looping)
		time.Sleep(holdDur)
		e.NoteOff(note)
	}

	// Let the release tails ring out before tearing the engine down.
	time.Sleep(time.Duration((ps.Params.Release + 0.2) * float64(time.Second)))
	e.Dispose()
}

func parseNotes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	notes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		note, err := strconv.Atoi(part)
		if err != nil || note < 0 || note > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q (expected 0..127)", part)
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}
