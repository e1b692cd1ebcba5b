package render

import "github.com/coreman2200/funtimes-demosync/internal/timeline"

// Frame is everything the renderer needs for one frame: what to draw, in
// order, and the variable values to feed its uniforms.
type Frame struct {
	Seq    uint64
	Row    uint32
	TimeMS float64
	Ops    []timeline.DrawOp
	Vars   []float64
}

// Source produces frames. Advance moves its clock; Build fills f in place,
// reusing f's slices.
type Source interface {
	Advance(dtMS float64)
	Build(f *Frame) error
}

// Sink consumes frames (the GPU layer, a preview, a logger).
type Sink interface {
	Submit(f *Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f *Frame) error

func (fn SinkFunc) Submit(f *Frame) error { return fn(f) }

// Sinks fans a frame out to several sinks, stopping at the first error.
type Sinks []Sink

func (ss Sinks) Submit(f *Frame) error {
	for _, s := range ss {
		if err := s.Submit(f); err != nil {
			return err
		}
	}
	return nil
}
