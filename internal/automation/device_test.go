package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsPerSecond(t *testing.T) {
	d := NewDevice(125, 8, 0)
	assert.InDelta(t, 16.6666666, d.RPS(), 1e-6)
}

func TestSetRowFromTimeRounds(t *testing.T) {
	d := NewDevice(125, 8, 0)
	d.SetTime(1000)
	d.SetRowFromTime()
	assert.Equal(t, uint32(17), d.Row())

	// 16.6 rows rounds up, 16.4 rounds down
	d.SetTime(996)
	d.SetRowFromTime()
	assert.Equal(t, uint32(17), d.Row())
	d.SetTime(984)
	d.SetRowFromTime()
	assert.Equal(t, uint32(16), d.Row())
}

func TestSetRowFromNegativeTime(t *testing.T) {
	d := NewDevice(120, 4, 0)
	d.SetTime(-500)
	d.SetRowFromTime()
	assert.Equal(t, uint32(0), d.Row())
}

func TestSetTimeFromRow(t *testing.T) {
	d := NewDevice(120, 4, 0) // 8 rows per second
	d.SetRow(12)
	d.SetTimeFromRow()
	assert.InDelta(t, 1500, d.TimeMS(), 1e-9)

	d.SetRowFromTime()
	assert.Equal(t, uint32(12), d.Row())
}

func TestAdvanceTime(t *testing.T) {
	d := NewDevice(120, 4, 0)
	d.AdvanceTime(250)
	d.AdvanceTime(250)
	d.SetRowFromTime()
	assert.Equal(t, uint32(4), d.Row())
}

func TestTrackValue(t *testing.T) {
	d := NewDevice(120, 4, 2)
	tr, err := d.Track(1)
	require.NoError(t, err)
	require.NoError(t, tr.AddKey(Keyframe{Row: 0, Value: 0, Law: Linear}))
	require.NoError(t, tr.AddKey(Keyframe{Row: 8, Value: 4, Law: Linear}))

	d.SetRow(2)
	v, err := d.TrackValue(1)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	v, err = d.TrackValue(0)
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)

	_, err = d.TrackValue(2)
	assert.ErrorIs(t, err, ErrTrackNotExist)
	_, err = d.TrackValue(-1)
	assert.ErrorIs(t, err, ErrTrackNotExist)
}

func TestNewDeviceWithTracksFillsNil(t *testing.T) {
	d := NewDeviceWithTracks(60, 1, []*Track{nil, {}})
	assert.Equal(t, 2, d.TrackCount())
	v, err := d.TrackValue(0)
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)
}

func TestPause(t *testing.T) {
	d := NewDevice(120, 4, 0)
	assert.False(t, d.Paused())
	d.SetPaused(true)
	assert.True(t, d.Paused())
}
