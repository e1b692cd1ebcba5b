package variables

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfBounds means an index was wired past the end of the table.
var ErrIndexOutOfBounds = errors.New("variable index out of bounds")

// Table is a flat list of named scalars. The first BuiltinCount slots are the
// builtins; custom slots are appended after them and never move or disappear.
type Table struct {
	values []float64
	names  []string
	byName map[string]Index
}

// NewTable returns a table holding only the builtin slots, all zero.
func NewTable() *Table {
	t := &Table{
		values: make([]float64, BuiltinCount),
		names:  make([]string, BuiltinCount),
		byName: make(map[string]Index, BuiltinCount),
	}
	for b := Builtin(0); b < BuiltinCount; b++ {
		t.names[b] = b.String()
		t.byName[b.String()] = b.Index()
	}
	return t
}

// Len returns the number of slots.
func (t *Table) Len() int { return len(t.values) }

// Get returns the value at idx.
func (t *Table) Get(idx Index) (float64, error) {
	if idx < 0 || int(idx) >= len(t.values) {
		return 0, fmt.Errorf("%w: get %d (len %d)", ErrIndexOutOfBounds, idx, len(t.values))
	}
	return t.values[idx], nil
}

// Set stores v at idx.
func (t *Table) Set(idx Index, v float64) error {
	if idx < 0 || int(idx) >= len(t.values) {
		return fmt.Errorf("%w: set %d (len %d)", ErrIndexOutOfBounds, idx, len(t.values))
	}
	t.values[idx] = v
	return nil
}

// SetBuiltin stores v in a builtin slot. Builtins are always present.
func (t *Table) SetBuiltin(b Builtin, v float64) error {
	return t.Set(b.Index(), v)
}

// AddTracksUpTo appends zero-valued custom slots until Len() >= n+1.
// This leaves one slot more than n; callers sizing for n slots get n+1.
func (t *Table) AddTracksUpTo(n int) {
	for len(t.values) < n+1 {
		c := len(t.values) - int(BuiltinCount)
		t.append(CustomName(c))
	}
}

// AddCustom appends one named custom slot and returns its index.
// A name already present returns the existing index.
func (t *Table) AddCustom(name string) Index {
	if idx, ok := t.byName[name]; ok {
		return idx
	}
	return t.append(name)
}

func (t *Table) append(name string) Index {
	idx := Index(len(t.values))
	t.values = append(t.values, 0)
	t.names = append(t.names, name)
	if _, taken := t.byName[name]; !taken {
		t.byName[name] = idx
	}
	return idx
}

// Resolve checks a raw index against the current table and returns it as an Index.
func (t *Table) Resolve(raw int) (Index, error) {
	if raw < 0 || raw >= len(t.values) {
		return 0, fmt.Errorf("%w: resolve %d (len %d)", ErrIndexOutOfBounds, raw, len(t.values))
	}
	return Index(raw), nil
}

// Lookup finds a slot by name. Meant for load time; the frame path uses indices.
func (t *Table) Lookup(name string) (Index, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

// Name returns the name of slot idx.
func (t *Table) Name(idx Index) (string, error) {
	if idx < 0 || int(idx) >= len(t.names) {
		return "", fmt.Errorf("%w: name %d (len %d)", ErrIndexOutOfBounds, idx, len(t.names))
	}
	return t.names[idx], nil
}

// Snapshot copies every value into dst, growing it if needed, and returns it.
func (t *Table) Snapshot(dst []float64) []float64 {
	if cap(dst) < len(t.values) {
		dst = make([]float64, len(t.values))
	}
	dst = dst[:len(t.values)]
	copy(dst, t.values)
	return dst
}
