package render

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaxFPS caps the frame rate; the tick interval never drops below 1ms.
const MaxFPS = 1000

// Conductor drives a Source at a fixed rate and hands each frame to a Sink.
type Conductor struct {
	Src  Source
	Sink Sink
	FPS  int
	Log  zerolog.Logger

	frame Frame

	// metrics (last durations in ms)
	Last struct {
		BuildMS  float64
		SubmitMS float64
	}
}

func NewConductor(src Source, sink Sink, fps int, log zerolog.Logger) *Conductor {
	if fps <= 0 {
		fps = 60
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	return &Conductor{Src: src, Sink: sink, FPS: fps, Log: log}
}

// Step advances the source by dtMS and renders one frame.
func (c *Conductor) Step(dtMS float64) error {
	c.Src.Advance(dtMS)

	start := time.Now()
	c.frame.Seq++
	if err := c.Src.Build(&c.frame); err != nil {
		return err
	}
	c.Last.BuildMS = float64(time.Since(start).Microseconds()) / 1000.0

	submitStart := time.Now()
	if c.Sink != nil {
		if err := c.Sink.Submit(&c.frame); err != nil {
			return err
		}
	}
	c.Last.SubmitMS = float64(time.Since(submitStart).Microseconds()) / 1000.0
	return nil
}

// Run ticks until ctx is done. Frame errors are logged, not fatal.
func (c *Conductor) Run(ctx context.Context) error {
	fps := c.FPS
	if fps <= 0 {
		fps = 60
	}
	dt := time.Second / time.Duration(fps)
	if dt < time.Millisecond {
		dt = time.Millisecond
	}
	tick := time.NewTicker(dt)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			elapsed := now.Sub(last)
			last = now
			if err := c.Step(float64(elapsed.Microseconds()) / 1000.0); err != nil {
				c.Log.Warn().Err(err).Uint64("frame", c.frame.Seq).Msg("frame failed")
			}
		}
	}
}
