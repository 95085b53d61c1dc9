//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-sampler/sampler"
)

var (
	globalEngine *sampler.Engine
	monoBuffer   []float64
	outputBuffer []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	// Export functions to JavaScript
	js.Global().Set("samplerInit", js.FuncOf(samplerInit))
	js.Global().Set("samplerNoteOn", js.FuncOf(samplerNoteOn))
	js.Global().Set("samplerNoteOff", js.FuncOf(samplerNoteOff))
	js.Global().Set("samplerSetParam", js.FuncOf(samplerSetParam))
	js.Global().Set("samplerLoadSample", js.FuncOf(samplerLoadSample))
	js.Global().Set("samplerProcessBlock", js.FuncOf(samplerProcessBlock))
	js.Global().Set("samplerGetMemoryBuffer", js.FuncOf(samplerGetMemoryBuffer))
	js.Global().Set("samplerDispose", js.FuncOf(samplerDispose))

	println("WASM sampler module loaded")
	<-c
}

func samplerInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()

	globalEngine = sampler.NewEngine(sampleRate, sampler.NewDefaultParams())
	<-globalEngine.Ready()

	// Pre-allocate output buffers for 128 mono frames
	monoBuffer = make([]float64, 128)
	outputBuffer = make([]float32, 128)

	// Notify the host exactly once; events sent before this fire are
	// queued by the engine, not lost.
	if cb := js.Global().Get("onSamplerReady"); cb.Type() == js.TypeFunction {
		cb.Invoke()
	}

	println("Sampler initialized at", sampleRate, "Hz")
	return nil
}

func samplerNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalEngine == nil {
		return nil
	}
	note := args[0].Int()
	velocity := args[1].Float()
	loopStart, loopEnd := 0.0, 1.0
	looping := false
	if len(args) >= 5 {
		loopStart = args[2].Float()
		loopEnd = args[3].Float()
		looping = args[4].Bool()
	}
	globalEngine.NoteOn(note, velocity, loopStart, loopEnd, looping)
	return nil
}

func samplerNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEngine == nil {
		return nil
	}
	globalEngine.NoteOff(args[0].Int())
	return nil
}

func samplerSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalEngine == nil {
		return false
	}
	param, err := sampler.ParseParamName(args[0].String())
	if err != nil {
		println("Rejected parameter:", err.Error())
		return false
	}
	globalEngine.SetParam(param, args[1].Float())
	return true
}

func samplerLoadSample(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalEngine == nil {
		return nil
	}

	// Copy a Float32Array of frames from JS into Go memory
	array := args[0]
	length := array.Get("length").Int()
	if length == 0 {
		println("Sample data is empty")
		return nil
	}
	sampleRate := args[1].Int()

	frames := make([]float64, length)
	for i := 0; i < length; i++ {
		frames[i] = array.Index(i).Float()
	}
	globalEngine.LoadSample(frames, sampleRate)

	println("Sample loaded:", length, "frames at", sampleRate, "Hz")
	return nil
}

func samplerProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalEngine == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > len(monoBuffer) {
		numFrames = len(monoBuffer)
	}

	globalEngine.Render(monoBuffer[:numFrames])
	for i := 0; i < numFrames; i++ {
		outputBuffer[i] = float32(monoBuffer[i])
	}

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func samplerGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	// Return WASM memory buffer for access from JS
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}

func samplerDispose(this js.Value, args []js.Value) interface{} {
	if globalEngine == nil {
		return nil
	}
	globalEngine.Dispose()
	return nil
}
