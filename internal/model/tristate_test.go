package model

import (
	"encoding/json"
	"testing"
)

// TestTristateString tests string representation of verdicts.
func TestTristateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Tristate
		want  string
	}{
		{TristateTrue, "true"},
		{TristateFalse, "false"},
		{TristateUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("Tristate(%d).String() = %q, want %q", tt.value, got, tt.want)
		}
	}
}

// TestTristateZeroValueIsUnknown checks that an untouched record reports
// verdicts as unknown.
func TestTristateZeroValueIsUnknown(t *testing.T) {
	t.Parallel()

	var v Tristate
	if v != TristateUnknown {
		t.Errorf("zero value = %v, want TristateUnknown", v)
	}
	if _, known := v.Bool(); known {
		t.Error("zero value should not be a known verdict")
	}
}

// TestTristateJSON tests JSON round-tripping of all three values.
func TestTristateJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Tristate
		json  string
	}{
		{TristateTrue, "true"},
		{TristateFalse, "false"},
		{TristateUnknown, "null"},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.value)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.value, err)
		}
		if string(data) != tt.json {
			t.Errorf("marshal %v = %s, want %s", tt.value, data, tt.json)
		}

		var back Tristate
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tt.value {
			t.Errorf("round trip of %v produced %v", tt.value, back)
		}
	}
}

// TestTristateUnmarshalRejectsGarbage verifies non-boolean input fails.
func TestTristateUnmarshalRejectsGarbage(t *testing.T) {
	t.Parallel()

	var v Tristate
	if err := json.Unmarshal([]byte(`"maybe"`), &v); err == nil {
		t.Error("expected error for non-boolean tristate input")
	}
}

// TestTristateOf tests boolean conversion.
func TestTristateOf(t *testing.T) {
	t.Parallel()

	if TristateOf(true) != TristateTrue {
		t.Error("TristateOf(true) != TristateTrue")
	}
	if TristateOf(false) != TristateFalse {
		t.Error("TristateOf(false) != TristateFalse")
	}
}
