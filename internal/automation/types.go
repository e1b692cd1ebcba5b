package automation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTrackNotExist is returned when a track id is outside the device's track list.
	ErrTrackNotExist = errors.New("track does not exist")
	// ErrInvalidLaw is returned when a key carrying LawNone is offered for storage.
	ErrInvalidLaw = errors.New("invalid interpolation law")
)

// Law selects how a segment is interpolated. The law stored on a key governs
// the segment from that key to the next one.
type Law uint8

const (
	Step Law = iota
	Linear
	Smooth
	Ramp
	// LawNone is the decode-time placeholder for an unknown law code.
	LawNone
)

var lawNames = [...]string{
	Step:    "step",
	Linear:  "linear",
	Smooth:  "smooth",
	Ramp:    "ramp",
	LawNone: "none",
}

// LawFromCode maps the editor's numeric code to a Law. Unknown codes map to LawNone.
func LawFromCode(code uint8) Law {
	switch code {
	case 0:
		return Step
	case 1:
		return Linear
	case 2:
		return Smooth
	case 3:
		return Ramp
	default:
		return LawNone
	}
}

// Code is the inverse of LawFromCode. LawNone encodes as 0xFF.
func (l Law) Code() uint8 {
	if l.Valid() {
		return uint8(l)
	}
	return 0xFF
}

// Valid reports whether l may be stored on a key.
func (l Law) Valid() bool {
	return l < LawNone
}

func (l Law) String() string {
	if int(l) < len(lawNames) {
		return lawNames[l]
	}
	return fmt.Sprintf("law(%d)", uint8(l))
}

// ParseLaw accepts the names produced by String, case-insensitively.
func ParseLaw(s string) (Law, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range lawNames {
		if Law(i) == LawNone {
			continue
		}
		if n == name {
			return Law(i), nil
		}
	}
	return LawNone, fmt.Errorf("%w: %q", ErrInvalidLaw, s)
}

// Keyframe is a value pinned at a row.
type Keyframe struct {
	Row   uint32
	Value float32
	Law   Law
}

// ActiveKind classifies a row against a track's keys.
type ActiveKind uint8

const (
	ExactRow ActiveKind = iota
	PrevRow
	BeforeFirstRow
	AfterLastRow
)

// ActiveKey is the result of FindActiveKey. Index is meaningful for ExactRow,
// PrevRow and AfterLastRow.
type ActiveKey struct {
	Kind  ActiveKind
	Index int
}
