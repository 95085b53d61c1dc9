package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func main() {
	notesFlag := flag.String("notes", "69", "Comma-separated MIDI notes to trigger together (69 = A4)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 2.0, "Render duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	samplePath := flag.String("sample", "", "Sample WAV path override (optional)")
	loop := flag.Bool("loop", false, "Loop the sample until NoteOff")
	loopStart := flag.Float64("loop-start", 0, "Normalized loop start in [0,1]")
	loopEnd := flag.Float64("loop-end", 1, "Normalized loop end in [0,1]")
	resample := flag.Bool("resample", false, "Convert the sample to the render rate at load time instead of during playback")
	output := flag.String("output", "output.wav", "Output WAV file path")
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
	start, end := ps.LoopStart, ps.LoopEnd
	if *loop {
		start, end = *loopStart, *loopEnd
	}

	buf, err := sampler.LoadWAV(ps.SampleWavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sample %q: %v\n", ps.SampleWavPath, err)
		os.Exit(1)
	}
	if *resample {
		buf, err = buf.Resampled(*sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Rendering notes %v for %.2f seconds at %d Hz (sample: %s, %d frames @ %d Hz)...\n",
		notes, *duration, *sampleRate, ps.SampleWavPath, buf.Len(), buf.SampleRate)

	e := sampler.NewEngine(*sampleRate, ps.Params)
	<-e.Ready()
	e.LoadSampleBuffer(buf)

	vel := float64(*velocity) / 127.0
	for _, note := range notes {
		e.NoteOn(note, vel, start, end, looping)
	}

	const blockSize = 128
	numChannels := 2
	totalFrames := int(float64(*sampleRate) * (*duration))
	if totalFrames < blockSize {
		totalFrames = blockSize
	}
	releaseAtFrame := int(float64(*sampleRate) * (*releaseAfter))

	samples := make([]float32, 0, totalFrames*numChannels)
	block := make([]float32, blockSize*numChannels)

	released := false
	framesRendered := 0
	for framesRendered < totalFrames {
		framesToRender := blockSize
		if framesRendered+framesToRender > totalFrames {
			framesToRender = totalFrames - framesRendered
		}

		if !released && framesRendered >= releaseAtFrame {
			for _, note := range notes {
				e.NoteOff(note)
			}
			released = true
		}

		e.RenderStereo(block[:framesToRender*numChannels])
		samples = append(samples, block[:framesToRender*numChannels]...)
		framesRendered += framesToRender

		if released && e.ActiveVoices() == 0 {
			break
		}
	}

	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, *sampleRate, 16, numChannels, 1)
	defer encoder.Close()

	outBuf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: numChannels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(outBuf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, framesRendered)
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
