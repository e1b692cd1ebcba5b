package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableHasBuiltins(t *testing.T) {
	tab := NewTable()
	assert.Equal(t, int(BuiltinCount), tab.Len())
	for b := Builtin(0); b < BuiltinCount; b++ {
		idx, ok := tab.Lookup(b.String())
		require.True(t, ok, b.String())
		assert.Equal(t, b.Index(), idx)
		v, err := tab.Get(idx)
		require.NoError(t, err)
		assert.Zero(t, v)
	}
}

func TestBuiltinNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for b := Builtin(0); b < BuiltinCount; b++ {
		name := b.String()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
	assert.Equal(t, "builtin(-1)", Builtin(-1).String())
}

func TestCustomIndex(t *testing.T) {
	assert.Equal(t, Index(BuiltinCount), Custom(0))
	assert.Equal(t, Index(int(BuiltinCount)+3), Custom(3))
}

func TestGetSetRoundTrip(t *testing.T) {
	tab := NewTable()
	require.NoError(t, tab.Set(CameraFov.Index(), 1.0471975511965976))
	v, err := tab.Get(CameraFov.Index())
	require.NoError(t, err)
	assert.Equal(t, 1.0471975511965976, v)

	require.NoError(t, tab.SetBuiltin(Time, 12.5))
	v, err = tab.Get(Time.Index())
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)
}

func TestOutOfBounds(t *testing.T) {
	tab := NewTable()
	past := Index(tab.Len())

	_, err := tab.Get(past)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	assert.ErrorIs(t, tab.Set(past, 1), ErrIndexOutOfBounds)
	_, err = tab.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = tab.Resolve(tab.Len())
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = tab.Name(past)
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestAddTracksUpToAppendsExtraSlot(t *testing.T) {
	tab := NewTable()
	n := int(BuiltinCount) + 4
	tab.AddTracksUpTo(n)
	assert.Equal(t, n+1, tab.Len())

	for c := 0; c <= 4; c++ {
		idx, ok := tab.Lookup(CustomName(c))
		require.True(t, ok)
		assert.Equal(t, Custom(c), idx)
	}

	// shrinking request is a no-op
	tab.AddTracksUpTo(2)
	assert.Equal(t, n+1, tab.Len())
}

func TestIndicesStableAcrossGrowth(t *testing.T) {
	tab := NewTable()
	fog := tab.AddCustom("fog")
	require.NoError(t, tab.Set(fog, 0.75))
	tab.AddTracksUpTo(int(BuiltinCount) + 10)
	again := tab.AddCustom("fog")
	assert.Equal(t, fog, again)

	v, err := tab.Get(fog)
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)
	name, err := tab.Name(fog)
	require.NoError(t, err)
	assert.Equal(t, "fog", name)
}

func TestSnapshot(t *testing.T) {
	tab := NewTable()
	require.NoError(t, tab.SetBuiltin(WindowWidth, 1920))
	snap := tab.Snapshot(nil)
	require.Len(t, snap, tab.Len())
	assert.Equal(t, 1920.0, snap[WindowWidth.Index()])

	// reuse without reallocating
	snap2 := tab.Snapshot(snap)
	assert.Equal(t, &snap[0], &snap2[0])
}
