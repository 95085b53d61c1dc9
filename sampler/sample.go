package sampler

import (
	"fmt"
	"os"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// SampleBuffer holds one mono clip at its native sample rate. Buffers are
// immutable once handed to the engine: a sample load replaces the engine's
// pointer wholesale, and voices already playing keep the buffer they were
// triggered against until they fall silent.
type SampleBuffer struct {
	Data       []float64
	SampleRate int
}

// NewSampleBuffer copies frames into a buffer, replacing non-finite values
// with silence so they can never reach the render path.
func NewSampleBuffer(frames []float64, sampleRate int) *SampleBuffer {
	data := make([]float64, len(frames))
	for i, v := range frames {
		if isFinite(v) {
			data[i] = v
		}
	}
	return &SampleBuffer{Data: data, SampleRate: sampleRate}
}

// Len returns the number of frames; safe on a nil buffer.
func (b *SampleBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// LoadWAV decodes a WAV file into a mono buffer at the file's native rate.
// Multi-channel files are mixed down by averaging channels.
func LoadWAV(path string) (*SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, fmt.Errorf("empty wav data: %s", path)
	}

	mono := make([]float64, frames)
	if numCh == 1 {
		for i := range frames {
			mono[i] = float64(buf.Data[i])
		}
	} else {
		scale := 1.0 / float64(numCh)
		for i := range frames {
			sum := 0.0
			for ch := 0; ch < numCh; ch++ {
				sum += float64(buf.Data[i*numCh+ch])
			}
			mono[i] = sum * scale
		}
	}
	return NewSampleBuffer(mono, srcRate), nil
}

// Resampled converts the buffer to targetRate. Returns the receiver when
// the rates already match.
func (b *SampleBuffer) Resampled(targetRate int) (*SampleBuffer, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("invalid target sample-rate: %d", targetRate)
	}
	if b.SampleRate == targetRate {
		return b, nil
	}
	r, err := dspresample.NewForRates(
		float64(b.SampleRate),
		float64(targetRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	out := r.Process(b.Data)
	return &SampleBuffer{Data: out, SampleRate: targetRate}, nil
}
