package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrOverlappingBlocks is reported by Validate when blocks on one track overlap.
	ErrOverlappingBlocks = errors.New("overlapping scene blocks")
	// ErrUnknownTarget is reported by Validate for a scene or buffer id with no backing resource.
	ErrUnknownTarget = errors.New("draw op references unknown id")
)

// FinalCompositeScene is the quad scene that composites the frame to the default output.
const FinalCompositeScene SceneID = 0

// TailClear is the colour the default output is cleared to before compositing.
var TailClear = Clear{R: 0, G: 0, B: 0, A: 1}

// SceneBlock is a span of the timeline contributing Ops while active.
type SceneBlock struct {
	Start, End float64
	Ops        []DrawOp
}

// TimeTrack is a lane of non-overlapping blocks.
type TimeTrack struct {
	Blocks []SceneBlock
}

// Resolver turns the timeline into the frame's draw ops.
// It holds no playback state; DrawOpsAt depends only on its tracks.
type Resolver struct {
	Tracks []TimeTrack
}

// Tail returns the ops appended to every frame.
func Tail() []DrawOp {
	return []DrawOp{TargetBufferDefault{}, TailClear, DrawQuadScene{ID: FinalCompositeScene}}
}

// DrawOpsAt returns the ops for time (seconds). Only block 0 of track 0 is
// consulted; the block's ops come first, followed by Tail.
func (r *Resolver) DrawOpsAt(time float64) []DrawOp {
	return r.AppendDrawOpsAt(nil, time)
}

// AppendDrawOpsAt is DrawOpsAt appending into dst, for callers reusing a buffer.
func (r *Resolver) AppendDrawOpsAt(dst []DrawOp, time float64) []DrawOp {
	if b, ok := r.activeBlock(time); ok {
		dst = append(dst, b.Ops...)
	}
	return append(dst,
		TargetBufferDefault{},
		TailClear,
		DrawQuadScene{ID: FinalCompositeScene},
	)
}

// activeBlock ignores time: block start/end are carried but unused.
func (r *Resolver) activeBlock(_ float64) (*SceneBlock, bool) {
	if r == nil || len(r.Tracks) == 0 || len(r.Tracks[0].Blocks) == 0 {
		return nil, false
	}
	return &r.Tracks[0].Blocks[0], true
}

// Validate checks every op's ids against the number of quad scenes, polygon
// scenes and buffers available, and reports overlapping blocks per track.
// It is meant to run once at load time.
func (r *Resolver) Validate(quadScenes, polygonScenes, buffers int) error {
	var errs []error
	for ti, tr := range r.Tracks {
		for bi, b := range tr.Blocks {
			for oi, op := range b.Ops {
				if err := checkOp(op, quadScenes, polygonScenes, buffers); err != nil {
					errs = append(errs, fmt.Errorf("track %d block %d op %d: %w", ti, bi, oi, err))
				}
			}
			for bj := bi + 1; bj < len(tr.Blocks); bj++ {
				o := tr.Blocks[bj]
				if b.Start < o.End && o.Start < b.End {
					errs = append(errs, fmt.Errorf("track %d blocks %d and %d: %w", ti, bi, bj, ErrOverlappingBlocks))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func checkOp(op DrawOp, quadScenes, polygonScenes, buffers int) error {
	switch o := op.(type) {
	case DrawQuadScene:
		if o.ID < 0 || int(o.ID) >= quadScenes {
			return fmt.Errorf("%w: %v", ErrUnknownTarget, o)
		}
	case DrawPolygonScene:
		if o.ID < 0 || int(o.ID) >= polygonScenes {
			return fmt.Errorf("%w: %v", ErrUnknownTarget, o)
		}
	case TargetBuffer:
		if o.ID < 0 || int(o.ID) >= buffers {
			return fmt.Errorf("%w: %v", ErrUnknownTarget, o)
		}
	}
	return nil
}
