package main

import (
	"bytes"
	"testing"
)

// TestNewRootCmd verifies command wiring.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "pdfa11ycrawl" {
		t.Errorf("Use = %q", cmd.Use)
	}

	want := map[string]bool{
		"scan":    false,
		"history": false,
		"init":    false,
		"version": false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("verbose persistent flag not registered")
	}
}

// TestRootCmdHelp verifies the command runs and prints usage.
func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("scan")) {
		t.Errorf("help output missing scan subcommand: %q", out.String())
	}
}
