package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-demosync/internal/automation"
	"github.com/coreman2200/funtimes-demosync/internal/config"
	"github.com/coreman2200/funtimes-demosync/internal/render"
	"github.com/coreman2200/funtimes-demosync/internal/timeline"
	"github.com/coreman2200/funtimes-demosync/internal/variables"
)

var ErrUnknownVariable = errors.New("unknown variable")

// Core owns the automation device, the variable table and the timeline.
// A single mutex guards all three: editor edits and frame builds never interleave.
type Core struct {
	mu       sync.Mutex
	dev      *automation.Device
	vars     *variables.Table
	timeline *timeline.Resolver

	// bindings[i] is the slot track i writes to
	bindings []variables.Index
}

// Viewport carries the window and screen sizes written into the builtin slots.
type Viewport struct {
	Window config.Size
	Screen config.Size
}

// NewCore wires track i to the variable at bindings[i]. Every binding is
// checked against the table here, once.
func NewCore(dev *automation.Device, vars *variables.Table, tl *timeline.Resolver, bindings []int) (*Core, error) {
	if len(bindings) != dev.TrackCount() {
		return nil, fmt.Errorf("have %d bindings for %d tracks", len(bindings), dev.TrackCount())
	}
	c := &Core{dev: dev, vars: vars, timeline: tl, bindings: make([]variables.Index, len(bindings))}
	for i, raw := range bindings {
		idx, err := vars.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		c.bindings[i] = idx
	}
	if c.timeline == nil {
		c.timeline = &timeline.Resolver{}
	}
	return c, nil
}

// FromProject builds a Core from a parsed project. Track i binds to its named
// variable if it has one, else to custom slot i.
func FromProject(p *config.Project, vp Viewport) (*Core, error) {
	tracks, err := p.BuildTracks()
	if err != nil {
		return nil, err
	}
	return FromDevice(p, automation.NewDeviceWithTracks(p.BPM, p.RowsPerBeat, tracks), vp)
}

// FromDevice builds a Core around dev, taking the timeline and track bindings
// from p. Tracks past the end of p.Tracks bind to their custom slot.
func FromDevice(p *config.Project, dev *automation.Device, vp Viewport) (*Core, error) {
	tl, err := p.BuildResolver()
	if err != nil {
		return nil, err
	}
	n := dev.TrackCount()

	vars := variables.NewTable()
	vars.AddTracksUpTo(int(variables.BuiltinCount) + n + p.CustomVariables)

	bindings := make([]int, n)
	for i := range bindings {
		bindings[i] = int(variables.Custom(i))
		if i >= len(p.Tracks) || p.Tracks[i].Bind == "" {
			continue
		}
		td := p.Tracks[i]
		idx, ok := vars.Lookup(td.Bind)
		if !ok {
			return nil, fmt.Errorf("track %d (%s): %w %q", i, td.Name, ErrUnknownVariable, td.Bind)
		}
		bindings[i] = int(idx)
	}

	for b, v := range map[variables.Builtin]int{
		variables.WindowWidth:  vp.Window.W,
		variables.WindowHeight: vp.Window.H,
		variables.ScreenWidth:  vp.Screen.W,
		variables.ScreenHeight: vp.Screen.H,
	} {
		if err := vars.SetBuiltin(b, float64(v)); err != nil {
			return nil, err
		}
	}
	return NewCore(dev, vars, tl, bindings)
}

// With runs f with exclusive access to the device and table.
func (c *Core) With(f func(dev *automation.Device, vars *variables.Table)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f(c.dev, c.vars)
}

// SetKey inserts or replaces a key using the editor's law code.
func (c *Core) SetKey(track int, row uint32, value float32, lawCode uint8) error {
	law := automation.LawFromCode(lawCode)
	if !law.Valid() {
		return fmt.Errorf("%w: code %d", automation.ErrInvalidLaw, lawCode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.dev.Track(track)
	if err != nil {
		return err
	}
	return t.AddKey(automation.Keyframe{Row: row, Value: value, Law: law})
}

// DeleteKey removes the key at row on track.
func (c *Core) DeleteKey(track int, row uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.dev.Track(track)
	if err != nil {
		return err
	}
	t.DeleteKey(row)
	return nil
}

// SetRow seeks to row and moves the clock onto it.
func (c *Core) SetRow(row uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dev.SetRow(row)
	c.dev.SetTimeFromRow()
}

func (c *Core) Row() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Row()
}

func (c *Core) SetPaused(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dev.SetPaused(p)
}

func (c *Core) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Paused()
}

// TrackCount is fixed for the life of the Core.
func (c *Core) TrackCount() int { return len(c.bindings) }

// Binding returns the variable slot track writes to.
func (c *Core) Binding(track int) (variables.Index, error) {
	if track < 0 || track >= len(c.bindings) {
		return 0, fmt.Errorf("%w: %d", automation.ErrTrackNotExist, track)
	}
	return c.bindings[track], nil
}

// Var reads one variable.
func (c *Core) Var(idx variables.Index) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vars.Get(idx)
}

// Advance moves the clock by dtMS unless paused, then derives the row.
func (c *Core) Advance(dtMS float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev.Paused() {
		return
	}
	c.dev.AdvanceTime(dtMS)
	c.dev.SetRowFromTime()
}

// Build evaluates every track into its variable, then resolves the draw ops
// for the current time. f's slices are reused.
func (c *Core) Build(f *render.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.dev.Row()
	timeS := c.dev.TimeMS() / 1000
	if err := c.vars.SetBuiltin(variables.Time, timeS); err != nil {
		return err
	}
	for i, idx := range c.bindings {
		v, err := c.dev.TrackValue(i)
		if err != nil {
			return err
		}
		if err := c.vars.Set(idx, float64(v)); err != nil {
			return err
		}
	}

	f.Row = row
	f.TimeMS = c.dev.TimeMS()
	f.Ops = c.timeline.AppendDrawOpsAt(f.Ops[:0], timeS)
	f.Vars = c.vars.Snapshot(f.Vars)
	return nil
}

var _ render.Source = (*Core)(nil)
