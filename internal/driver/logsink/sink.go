package logsink

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-demosync/internal/render"
)

// Sink logs a compact summary of each frame, useful for headless runs.
// Every frame is logged at debug; every Every-th frame at info.
type Sink struct {
	Log   zerolog.Logger
	Every uint64
	Count uint64
}

func New(log zerolog.Logger, every uint64) *Sink {
	return &Sink{Log: log, Every: every}
}

func (s *Sink) Submit(f *render.Frame) error {
	s.Count++
	lvl := zerolog.DebugLevel
	if s.Every > 0 && s.Count%s.Every == 0 {
		lvl = zerolog.InfoLevel
	}
	ev := s.Log.WithLevel(lvl)
	if !ev.Enabled() {
		return nil
	}
	ev.Uint64("frame", f.Seq).
		Uint32("row", f.Row).
		Float64("time_ms", f.TimeMS).
		Int("ops", len(f.Ops)).
		Int("vars", len(f.Vars)).
		Str("first", firstOps(f, 3)).
		Msg("frame")
	return nil
}

func firstOps(f *render.Frame, n int) string {
	if len(f.Ops) < n {
		n = len(f.Ops)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = f.Ops[i].String()
	}
	return strings.Join(parts, " ")
}
