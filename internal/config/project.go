package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-demosync/internal/automation"
	"github.com/coreman2200/funtimes-demosync/internal/timeline"
)

var ErrUnknownOp = errors.New("unknown draw op")

// Project is the parsed project description: tempo, automation tracks and the timeline.
type Project struct {
	BPM         float64 `yaml:"bpm"`
	RowsPerBeat uint8   `yaml:"rows_per_beat"`

	// CustomVariables reserves custom slots beyond those the tracks need.
	CustomVariables int `yaml:"custom_variables,omitempty"`

	Scenes   SceneCounts `yaml:"scenes"`
	Tracks   []TrackDesc `yaml:"tracks"`
	Timeline []LaneDesc  `yaml:"timeline"`
}

// SceneCounts bounds the ids draw ops may reference.
type SceneCounts struct {
	Quad    int `yaml:"quad"`
	Polygon int `yaml:"polygon"`
	Buffers int `yaml:"buffers"`
}

type TrackDesc struct {
	Name string    `yaml:"name"`
	Bind string    `yaml:"bind,omitempty"` // variable name; empty binds to the track's custom slot
	Keys []KeyDesc `yaml:"keys"`
}

type KeyDesc struct {
	Row   uint32  `yaml:"row"`
	Value float32 `yaml:"value"`
	Law   string  `yaml:"law,omitempty"` // step|linear|smooth|ramp, default step
}

type LaneDesc struct {
	Blocks []BlockDesc `yaml:"blocks"`
}

type BlockDesc struct {
	Start float64  `yaml:"start"`
	End   float64  `yaml:"end"`
	Ops   []OpDesc `yaml:"ops"`
}

// OpDesc is one draw op as written in YAML, e.g. {op: clear, color: [0, 0, 0, 1]}.
type OpDesc struct {
	Op    string    `yaml:"op"`
	ID    int       `yaml:"id,omitempty"`
	Time  float64   `yaml:"time,omitempty"`
	Color []float32 `yaml:"color,omitempty"`
}

func LoadProject(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProject(b)
}

func ParseProject(b []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.BPM <= 0 {
		return nil, fmt.Errorf("project: bpm must be > 0, got %v", p.BPM)
	}
	if p.RowsPerBeat == 0 {
		return nil, errors.New("project: rows_per_beat must be > 0")
	}
	return &p, nil
}

// BuildTracks converts the track descriptions, in order.
func (p *Project) BuildTracks() ([]*automation.Track, error) {
	out := make([]*automation.Track, len(p.Tracks))
	for i, td := range p.Tracks {
		t := &automation.Track{}
		for _, kd := range td.Keys {
			law := automation.Step
			if kd.Law != "" {
				l, err := automation.ParseLaw(kd.Law)
				if err != nil {
					return nil, fmt.Errorf("track %d (%s) row %d: %w", i, td.Name, kd.Row, err)
				}
				law = l
			}
			if err := t.AddKey(automation.Keyframe{Row: kd.Row, Value: kd.Value, Law: law}); err != nil {
				return nil, fmt.Errorf("track %d (%s): %w", i, td.Name, err)
			}
		}
		out[i] = t
	}
	return out, nil
}

// BuildResolver converts the timeline and checks op ids against Scenes.
func (p *Project) BuildResolver() (*timeline.Resolver, error) {
	r := &timeline.Resolver{Tracks: make([]timeline.TimeTrack, len(p.Timeline))}
	for li, lane := range p.Timeline {
		blocks := make([]timeline.SceneBlock, len(lane.Blocks))
		for bi, bd := range lane.Blocks {
			ops := make([]timeline.DrawOp, len(bd.Ops))
			for oi, od := range bd.Ops {
				op, err := od.DrawOp()
				if err != nil {
					return nil, fmt.Errorf("timeline %d block %d op %d: %w", li, bi, oi, err)
				}
				ops[oi] = op
			}
			blocks[bi] = timeline.SceneBlock{Start: bd.Start, End: bd.End, Ops: ops}
		}
		r.Tracks[li] = timeline.TimeTrack{Blocks: blocks}
	}
	if err := r.Validate(p.Scenes.Quad, p.Scenes.Polygon, p.Scenes.Buffers); err != nil {
		return nil, err
	}
	return r, nil
}

// DrawOp decodes the description into a timeline op.
func (o OpDesc) DrawOp() (timeline.DrawOp, error) {
	switch o.Op {
	case "noop":
		return timeline.Noop{}, nil
	case "exit":
		return timeline.Exit{Time: o.Time}, nil
	case "draw_quad":
		return timeline.DrawQuadScene{ID: timeline.SceneID(o.ID)}, nil
	case "draw_polygon":
		return timeline.DrawPolygonScene{ID: timeline.SceneID(o.ID)}, nil
	case "clear":
		c := timeline.Clear{A: 1}
		if len(o.Color) != 0 && len(o.Color) != 4 {
			return nil, fmt.Errorf("clear: color needs 4 components, got %d", len(o.Color))
		}
		if len(o.Color) == 4 {
			c = timeline.Clear{R: o.Color[0], G: o.Color[1], B: o.Color[2], A: o.Color[3]}
		}
		return c, nil
	case "target":
		return timeline.TargetBuffer{ID: timeline.BufferID(o.ID)}, nil
	case "target_default":
		return timeline.TargetBufferDefault{}, nil
	case "profile":
		return timeline.ProfileMark{ID: timeline.MarkID(o.ID)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, o.Op)
	}
}
