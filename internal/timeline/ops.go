package timeline

import "fmt"

type (
	SceneID  int
	BufferID int
	MarkID   int
)

// DrawOp is one step of frame composition. The set of variants is closed;
// only this package implements it.
type DrawOp interface {
	fmt.Stringer
	drawOp()
}

// Noop does nothing.
type Noop struct{}

// Exit asks the player to stop at Time (seconds).
type Exit struct{ Time float64 }

// DrawQuadScene draws a full-screen quad scene.
type DrawQuadScene struct{ ID SceneID }

// DrawPolygonScene draws a mesh scene.
type DrawPolygonScene struct{ ID SceneID }

// Clear clears the current target.
type Clear struct{ R, G, B, A float32 }

// TargetBuffer selects an offscreen buffer as the draw target.
type TargetBuffer struct{ ID BufferID }

// TargetBufferDefault selects the default output.
type TargetBufferDefault struct{}

// ProfileMark records a GPU timing mark.
type ProfileMark struct{ ID MarkID }

func (Noop) drawOp()                {}
func (Exit) drawOp()                {}
func (DrawQuadScene) drawOp()       {}
func (DrawPolygonScene) drawOp()    {}
func (Clear) drawOp()               {}
func (TargetBuffer) drawOp()        {}
func (TargetBufferDefault) drawOp() {}
func (ProfileMark) drawOp()         {}

func (Noop) String() string                { return "noop" }
func (o Exit) String() string              { return fmt.Sprintf("exit(%g)", o.Time) }
func (o DrawQuadScene) String() string     { return fmt.Sprintf("draw_quad(%d)", o.ID) }
func (o DrawPolygonScene) String() string  { return fmt.Sprintf("draw_polygon(%d)", o.ID) }
func (o Clear) String() string             { return fmt.Sprintf("clear(%g,%g,%g,%g)", o.R, o.G, o.B, o.A) }
func (o TargetBuffer) String() string      { return fmt.Sprintf("target(%d)", o.ID) }
func (TargetBufferDefault) String() string { return "target_default" }
func (o ProfileMark) String() string       { return fmt.Sprintf("profile(%d)", o.ID) }
