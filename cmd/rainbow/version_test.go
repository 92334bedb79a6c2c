package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildInfoFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		get  func() string
	}{
		{name: "version", get: getVersion},
		{name: "commit", get: getCommit},
		{name: "date", get: getDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.get() == "" {
				t.Errorf("%s returned empty string", tt.name)
			}
		})
	}
}

func TestGetCommitIsShort(t *testing.T) {
	t.Parallel()

	if c := getCommit(); c != "unknown" && len(c) > 7 {
		t.Errorf("expected at most 7 characters, got %q", c)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd := NewVersionCmd(); cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"rainbow version", "commit:", "built:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})

	t.Run("rejects arguments", func(t *testing.T) {
		t.Parallel()

		cmd := NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for extra argument")
		}
	})
}
