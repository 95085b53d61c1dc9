package sampler

import "fmt"

// ParamName is the closed set of parameters settable at runtime. Keeping
// the set an enum means the render path routes events with a switch and
// unknown names are rejected at the transport boundary instead.
type ParamName int

const (
	ParamAttack ParamName = iota
	ParamDecay
	ParamSustain
	ParamRelease
	ParamFilterCutoff
	ParamFilterResonance
)

// ParseParamName maps a transport-level parameter name onto the enum.
func ParseParamName(name string) (ParamName, error) {
	switch name {
	case "attack":
		return ParamAttack, nil
	case "decay":
		return ParamDecay, nil
	case "sustain":
		return ParamSustain, nil
	case "release":
		return ParamRelease, nil
	case "filter_cutoff":
		return ParamFilterCutoff, nil
	case "filter_resonance":
		return ParamFilterResonance, nil
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}

type eventKind int

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventSetParam
	eventLoadSample
	eventDispose
)

// Event is one immutable control message crossing from the control side
// into the render path. Fields not used by a kind stay zero.
type Event struct {
	kind eventKind

	note     int
	velocity float64

	loopStart float64
	loopEnd   float64
	looping   bool

	param ParamName
	value float64

	buffer *SampleBuffer
}

// controlQueue is a bounded, non-blocking inbox between the control side
// and the render path. The render side drains it at block boundaries;
// pushes never block, so a stalled render goroutine cannot stall callers.
type controlQueue struct {
	ch chan Event
}

func newControlQueue(capacity int) *controlQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &controlQueue{ch: make(chan Event, capacity)}
}

// push enqueues without blocking. On overflow the oldest pending event is
// dropped so the newest state always wins.
func (q *controlQueue) push(e Event) {
	for {
		select {
		case q.ch <- e:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}
