package platform

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"twitter", Twitter},
		{"X", Twitter},
		{" LinkedIn ", LinkedIn},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("mastodon"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestExportName(t *testing.T) {
	if Twitter.ExportName() != "x" {
		t.Errorf("Twitter.ExportName() = %q, want x", Twitter.ExportName())
	}
	if LinkedIn.ExportName() != "linkedin" {
		t.Errorf("LinkedIn.ExportName() = %q, want linkedin", LinkedIn.ExportName())
	}
}
