package automation

import (
	"fmt"
	"sort"
)

// Track is one parameter's keys, kept sorted and unique by row.
// The zero value is an empty track ready for use.
type Track struct {
	keys []Keyframe
}

// NewTrack builds a track from keys in any order. Later duplicates of a row win.
func NewTrack(keys ...Keyframe) (*Track, error) {
	t := &Track{keys: make([]Keyframe, 0, len(keys))}
	for _, k := range keys {
		if err := t.AddKey(k); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of keys.
func (t *Track) Len() int { return len(t.keys) }

// Keys returns a copy of the keys in row order.
func (t *Track) Keys() []Keyframe {
	out := make([]Keyframe, len(t.keys))
	copy(out, t.keys)
	return out
}

// FindActiveKey classifies row against the keys. ok is false for an empty track.
// An exact match wins; otherwise the nearest preceding key is reported.
func (t *Track) FindActiveKey(row uint32) (ak ActiveKey, ok bool) {
	n := len(t.keys)
	if n == 0 {
		return ActiveKey{}, false
	}
	i := sort.Search(n, func(j int) bool { return t.keys[j].Row >= row })
	switch {
	case i < n && t.keys[i].Row == row:
		return ActiveKey{Kind: ExactRow, Index: i}, true
	case i == 0:
		return ActiveKey{Kind: BeforeFirstRow}, true
	case i == n:
		return ActiveKey{Kind: AfterLastRow, Index: n - 1}, true
	default:
		return ActiveKey{Kind: PrevRow, Index: i - 1}, true
	}
}

// AddKey inserts k, replacing any key already at k.Row.
func (t *Track) AddKey(k Keyframe) error {
	if !k.Law.Valid() {
		return fmt.Errorf("%w: row %d", ErrInvalidLaw, k.Row)
	}
	ak, ok := t.FindActiveKey(k.Row)
	if !ok {
		t.keys = append(t.keys, k)
		return nil
	}
	switch ak.Kind {
	case ExactRow:
		t.keys[ak.Index] = k
	case PrevRow:
		t.insert(ak.Index+1, k)
	case BeforeFirstRow:
		t.insert(0, k)
	case AfterLastRow:
		t.keys = append(t.keys, k)
	}
	return nil
}

func (t *Track) insert(at int, k Keyframe) {
	t.keys = append(t.keys, Keyframe{})
	copy(t.keys[at+1:], t.keys[at:])
	t.keys[at] = k
}

// DeleteKey removes the key at row, if there is one.
func (t *Track) DeleteKey(row uint32) {
	ak, ok := t.FindActiveKey(row)
	if !ok || ak.Kind != ExactRow {
		return
	}
	t.keys = append(t.keys[:ak.Index], t.keys[ak.Index+1:]...)
}

// ValueAt evaluates the track at row. Values are stored as float32 but the
// segment is interpolated in float64.
func (t *Track) ValueAt(row uint32) float32 {
	ak, ok := t.FindActiveKey(row)
	if !ok {
		return 0
	}
	switch ak.Kind {
	case ExactRow:
		return t.keys[ak.Index].Value
	case BeforeFirstRow:
		return t.keys[0].Value
	case AfterLastRow:
		return t.keys[len(t.keys)-1].Value
	}

	cur := t.keys[ak.Index]
	next := t.keys[ak.Index+1]
	x := float64(row-cur.Row) / float64(next.Row-cur.Row)
	a := float64(cur.Value)
	b := float64(next.Value) - float64(cur.Value)
	return float32(interpolate(cur.Law, a, b, x))
}

func interpolate(law Law, a, b, x float64) float64 {
	switch law {
	case Step:
		return a
	case Linear:
		return a + b*x
	case Smooth:
		// smoothstep 3x^2 - 2x^3
		return a + b*(x*x*(3-2*x))
	case Ramp:
		return a + b*x*x
	default:
		return 0
	}
}
