// Package codec reads and writes the binary project sections for automation
// tracks and tempo. All fields are little-endian; counts are u64.
//
//	tracks: track_count u64, then per track key_count u64, then per key
//	        row u32, value f32, law u8
//	tempo:  bpm f64, rows_per_beat u8
//
// A project file is the tracks section followed by the tempo section. Decoders
// read exactly the bytes of their section, so sections can share one stream.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/coreman2200/funtimes-demosync/internal/automation"
)

var (
	// ErrShortData means the stream ended inside a record.
	ErrShortData = errors.New("codec: unexpected end of data")
	// ErrTooLarge guards against absurd counts in corrupt input.
	ErrTooLarge = errors.New("codec: count exceeds limit")
	// ErrBadTempo means a decoded tempo cannot drive a device.
	ErrBadTempo = errors.New("codec: bpm and rows per beat must be positive")
)

// MaxCount bounds track and key counts read from a stream.
const MaxCount = 1 << 20

var le = binary.LittleEndian

// Tempo is the serialized device tempo.
type Tempo struct {
	BPM float64
	RPB uint8
}

// DecodeReport describes what DecodeTracks had to drop.
type DecodeReport struct {
	Keys        int
	SkippedKeys int
}

// EncodeTracks writes tracks in order.
func EncodeTracks(w io.Writer, tracks []*automation.Track) error {
	bw := bufio.NewWriter(w)
	var b [9]byte
	le.PutUint64(b[:8], uint64(len(tracks)))
	bw.Write(b[:8])
	for _, t := range tracks {
		var keys []automation.Keyframe
		if t != nil {
			keys = t.Keys()
		}
		le.PutUint64(b[:8], uint64(len(keys)))
		bw.Write(b[:8])
		for _, k := range keys {
			le.PutUint32(b[0:4], k.Row)
			le.PutUint32(b[4:8], math.Float32bits(k.Value))
			b[8] = k.Law.Code()
			bw.Write(b[:9])
		}
	}
	return bw.Flush()
}

// DecodeTracks reads a tracks section. Keys whose law code is unknown decode to
// the placeholder law and are left out of the returned tracks.
func DecodeTracks(r io.Reader) ([]*automation.Track, DecodeReport, error) {
	var rep DecodeReport
	var b [9]byte

	n, err := readCount(r, b[:8])
	if err != nil {
		return nil, rep, fmt.Errorf("track count: %w", err)
	}
	tracks := make([]*automation.Track, 0, n)
	for ti := uint64(0); ti < n; ti++ {
		kn, err := readCount(r, b[:8])
		if err != nil {
			return nil, rep, fmt.Errorf("track %d key count: %w", ti, err)
		}
		t := &automation.Track{}
		for ki := uint64(0); ki < kn; ki++ {
			if err := readFull(r, b[:9]); err != nil {
				return nil, rep, fmt.Errorf("track %d key %d: %w", ti, ki, err)
			}
			k := automation.Keyframe{
				Row:   le.Uint32(b[0:4]),
				Value: math.Float32frombits(le.Uint32(b[4:8])),
				Law:   automation.LawFromCode(b[8]),
			}
			rep.Keys++
			if !k.Law.Valid() {
				rep.SkippedKeys++
				continue
			}
			if err := t.AddKey(k); err != nil {
				return nil, rep, err
			}
		}
		tracks = append(tracks, t)
	}
	return tracks, rep, nil
}

// EncodeTempo writes a tempo section.
func EncodeTempo(w io.Writer, t Tempo) error {
	var b [9]byte
	le.PutUint64(b[:8], math.Float64bits(t.BPM))
	b[8] = t.RPB
	_, err := w.Write(b[:])
	return err
}

// DecodeTempo reads a tempo section.
func DecodeTempo(r io.Reader) (Tempo, error) {
	var b [9]byte
	if err := readFull(r, b[:]); err != nil {
		return Tempo{}, fmt.Errorf("tempo: %w", err)
	}
	return Tempo{BPM: math.Float64frombits(le.Uint64(b[:8])), RPB: b[8]}, nil
}

// EncodeProject writes the tracks section, then the tempo section.
func EncodeProject(w io.Writer, t Tempo, tracks []*automation.Track) error {
	if err := EncodeTracks(w, tracks); err != nil {
		return err
	}
	return EncodeTempo(w, t)
}

// DecodeProject reads a project written by EncodeProject. The tempo must be
// usable by a device.
func DecodeProject(r io.Reader) (Tempo, []*automation.Track, DecodeReport, error) {
	br := bufio.NewReader(r)
	tracks, rep, err := DecodeTracks(br)
	if err != nil {
		return Tempo{}, nil, rep, err
	}
	t, err := DecodeTempo(br)
	if err != nil {
		return Tempo{}, nil, rep, err
	}
	if !(t.BPM > 0) || t.RPB == 0 {
		return Tempo{}, nil, rep, fmt.Errorf("%w: bpm %g rpb %d", ErrBadTempo, t.BPM, t.RPB)
	}
	return t, tracks, rep, nil
}

func readCount(r io.Reader, b []byte) (uint64, error) {
	if err := readFull(r, b); err != nil {
		return 0, err
	}
	n := le.Uint64(b)
	if n > MaxCount {
		return 0, fmt.Errorf("%w: %d", ErrTooLarge, n)
	}
	return n, nil
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortData
		}
		return err
	}
	return nil
}
