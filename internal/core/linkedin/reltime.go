package linkedin

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativePattern matches the leading magnitude and unit of strings like
// "3d • Edited •", "2mo", "1yr", "45s".
var relativePattern = regexp.MustCompile(`(?i)^\s*(\d+)\s*(mo|yr|y|w|wk|d|h|hr|min|m|s)\b`)

// ParseRelativeTime converts a relative age into an absolute time by subtracting
// it from now. It returns nil for anything it does not understand.
func ParseRelativeTime(s string, now time.Time) *time.Time {
	m := relativePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}

	var t time.Time
	switch strings.ToLower(m[2]) {
	case "s":
		t = now.Add(-time.Duration(n) * time.Second)
	case "m", "min":
		t = now.Add(-time.Duration(n) * time.Minute)
	case "h", "hr":
		t = now.Add(-time.Duration(n) * time.Hour)
	case "d":
		t = now.AddDate(0, 0, -n)
	case "w", "wk":
		t = now.AddDate(0, 0, -7*n)
	case "mo":
		t = now.AddDate(0, -n, 0)
	case "y", "yr":
		t = now.AddDate(-n, 0, 0)
	default:
		return nil
	}
	return &t
}
