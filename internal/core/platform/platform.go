package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned when a platform identifier is not recognized.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform identifies a social network whose saved posts can be exported.
type Platform string

const (
	Twitter  Platform = "twitter"
	LinkedIn Platform = "linkedin"
)

// All lists the supported platforms in display order.
var All = []Platform{Twitter, LinkedIn}

// Parse accepts "twitter", "x" or "linkedin" (case-insensitive).
func Parse(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twitter", "x":
		return Twitter, nil
	case "linkedin":
		return LinkedIn, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// ExportName is the value used for the "platform" field sent to the backend.
func (p Platform) ExportName() string {
	if p == Twitter {
		return "x"
	}
	return string(p)
}

// DisplayName is a human label for status lines.
func (p Platform) DisplayName() string {
	switch p {
	case Twitter:
		return "Twitter/X"
	case LinkedIn:
		return "LinkedIn"
	default:
		return string(p)
	}
}

func (p Platform) String() string { return string(p) }
