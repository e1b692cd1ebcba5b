package automation

import (
	"fmt"
	"math"
)

// Device owns the automation tracks and the playback position.
// Row and time are only reconciled by SetRowFromTime and SetTimeFromRow.
type Device struct {
	tracks []*Track

	bpm float64
	rpb uint8
	rps float64

	row    uint32
	timeMS float64
	paused bool
}

// NewDevice creates a device with trackCount empty tracks. Track ids are fixed
// at construction: the id of a track is its position.
func NewDevice(bpm float64, rpb uint8, trackCount int) *Device {
	d := &Device{tracks: make([]*Track, trackCount)}
	for i := range d.tracks {
		d.tracks[i] = &Track{}
	}
	d.SetTempo(bpm, rpb)
	return d
}

// NewDeviceWithTracks adopts tracks as-is, in order.
func NewDeviceWithTracks(bpm float64, rpb uint8, tracks []*Track) *Device {
	d := &Device{tracks: tracks}
	for i, t := range d.tracks {
		if t == nil {
			d.tracks[i] = &Track{}
		}
	}
	d.SetTempo(bpm, rpb)
	return d
}

// SetTempo sets beats per minute and rows per beat and recomputes rows per second.
func (d *Device) SetTempo(bpm float64, rpb uint8) {
	d.bpm = bpm
	d.rpb = rpb
	d.rps = RowsPerSecond(bpm, rpb)
}

// RowsPerSecond is (bpm / 60) * rpb.
func RowsPerSecond(bpm float64, rpb uint8) float64 {
	return (bpm / 60) * float64(rpb)
}

func (d *Device) BPM() float64 { return d.bpm }
func (d *Device) RPB() uint8   { return d.rpb }
func (d *Device) RPS() float64 { return d.rps }

func (d *Device) Row() uint32        { return d.row }
func (d *Device) SetRow(row uint32)  { d.row = row }
func (d *Device) TimeMS() float64    { return d.timeMS }
func (d *Device) SetTime(ms float64) { d.timeMS = ms }

// AdvanceTime moves the clock forward by dtMS milliseconds.
func (d *Device) AdvanceTime(dtMS float64) { d.timeMS += dtMS }

func (d *Device) Paused() bool     { return d.paused }
func (d *Device) SetPaused(p bool) { d.paused = p }

// SetRowFromTime rounds time to the nearest row: floor(ms/1000*rps + 0.5).
func (d *Device) SetRowFromTime() {
	r := math.Floor(d.timeMS/1000*d.rps + 0.5)
	if r < 0 {
		r = 0
	}
	if r > math.MaxUint32 {
		r = math.MaxUint32
	}
	d.row = uint32(r)
}

// SetTimeFromRow places the clock exactly on the current row.
func (d *Device) SetTimeFromRow() {
	if d.rps <= 0 {
		d.timeMS = 0
		return
	}
	d.timeMS = float64(d.row) / d.rps * 1000
}

// TrackCount returns the number of tracks.
func (d *Device) TrackCount() int { return len(d.tracks) }

// Track returns the track with the given id.
func (d *Device) Track(id int) (*Track, error) {
	if id < 0 || id >= len(d.tracks) {
		return nil, fmt.Errorf("%w: %d", ErrTrackNotExist, id)
	}
	return d.tracks[id], nil
}

// TrackValue evaluates track id at the current row.
func (d *Device) TrackValue(id int) (float32, error) {
	t, err := d.Track(id)
	if err != nil {
		return 0, err
	}
	return t.ValueAt(d.row), nil
}
