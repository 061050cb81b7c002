// Package session holds the per-process operating mode of the shell.
package session

import (
	"fmt"
	"strings"
)

// Mode selects how much confirmation and explanation the shell offers.
type Mode string

const (
	// Beginner confirms destructive actions and shows AI insight.
	Beginner Mode = "beginner"
	// Expert never prompts for confirmation.
	Expert Mode = "expert"
	// Safe confirms destructive actions with a stronger warning.
	Safe Mode = "safe"
)

// Modes lists every mode in menu order.
var Modes = []Mode{Beginner, Expert, Safe}

// ParseMode converts a name into a Mode, ignoring case and whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want beginner, expert or safe)", s)
}

// ShowInsight reports whether AI explanations are shown alongside results.
func (m Mode) ShowInsight() bool {
	return m != Expert
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Switch is the result of inspecting a line for a mode-switch request.
type Switch struct {
	// Requested is true when the line asks to change mode at all.
	Requested bool
	// Mode is the target mode. Empty when the line did not name one.
	Mode Mode
}

// DetectSwitch reports whether input is a mode-switch request such as
// "mode expert", "change mode to safe" or "switch to beginner".
func DetectSwitch(input string) Switch {
	lower := strings.ToLower(strings.TrimSpace(input))
	if !strings.HasPrefix(lower, "mode") &&
		!strings.Contains(lower, "change mode") &&
		!strings.Contains(lower, "switch") &&
		!strings.Contains(lower, "set mode") {
		return Switch{}
	}

	for _, m := range Modes {
		if strings.Contains(lower, string(m)) {
			return Switch{Requested: true, Mode: m}
		}
	}
	return Switch{Requested: true}
}
