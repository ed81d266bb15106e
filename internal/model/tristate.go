package model

import (
	"encoding/json"
	"fmt"
)

// Tristate represents a three-valued verdict: true, false, or unknown.
//
// Design decision: We use an explicit enumeration rather than *bool because
// "unknown" and "false" have different downstream meaning. An unknown
// text-layer verdict is excluded from the image-only count, while a false
// verdict is counted as image-only. A nullable boolean makes that
// distinction too easy to lose in refactoring.
type Tristate int

// Tristate values. TristateUnknown is the zero value so that a freshly
// created record reports every verdict as unknown until a stage runs.
const (
	// TristateUnknown means the check did not produce a verdict.
	TristateUnknown Tristate = iota

	// TristateFalse means the check ran and the answer is no.
	TristateFalse

	// TristateTrue means the check ran and the answer is yes.
	TristateTrue
)

// TristateOf converts a plain boolean into a Tristate.
func TristateOf(b bool) Tristate {
	if b {
		return TristateTrue
	}
	return TristateFalse
}

// String returns "true", "false", or "unknown".
func (t Tristate) String() string {
	switch t {
	case TristateTrue:
		return "true"
	case TristateFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Bool returns the boolean value and whether the verdict is known.
func (t Tristate) Bool() (value, known bool) {
	switch t {
	case TristateTrue:
		return true, true
	case TristateFalse:
		return false, true
	default:
		return false, false
	}
}

// MarshalJSON encodes TristateTrue/TristateFalse as JSON booleans and
// TristateUnknown as null, matching the report format where an unknown
// verdict is an absent value rather than a default.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case TristateTrue:
		return []byte("true"), nil
	case TristateFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null as unknown and booleans as their verdict.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TristateUnknown
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tristate must be true, false, or null: %w", err)
	}
	*t = TristateOf(b)
	return nil
}
