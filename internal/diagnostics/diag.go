package diagnostics

import (
	"errors"

	"github.com/coreman2200/funtimes-demosync/internal/automation"
	"github.com/coreman2200/funtimes-demosync/internal/variables"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Diagnostic is pushed to editor clients when something they sent was
// rejected or when the player wants them to know about its state.
type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromError classifies an engine error into a diagnostic.
func FromError(err error, evidence map[string]any) Diagnostic {
	d := Diagnostic{Severity: Err, Code: "ENGINE.ERROR", Summary: "Request failed", Detail: err.Error(), Evidence: evidence}
	switch {
	case errors.Is(err, automation.ErrTrackNotExist):
		d.Code = "TRACK.NOT_EXIST"
		d.Summary = "Track does not exist"
		d.SuggestedFixes = []string{"check the editor's track list matches the loaded project"}
	case errors.Is(err, automation.ErrInvalidLaw):
		d.Code = "KEY.INVALID_LAW"
		d.Summary = "Unknown interpolation law"
		d.SuggestedFixes = []string{"use 0=step, 1=linear, 2=smooth, 3=ramp"}
	case errors.Is(err, variables.ErrIndexOutOfBounds):
		d.Code = "VAR.OUT_OF_BOUNDS"
		d.Summary = "Variable index out of bounds"
	}
	return d
}
