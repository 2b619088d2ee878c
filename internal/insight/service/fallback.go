package service

import (
	"fmt"
	"strings"
)

// fallbackBody builds a deterministic three-line summary from the context
// alone. Used when the text-generation dependency yields nothing; the engine
// never returns an empty body.
func fallbackBody(c *InsightContext) string {
	var lines []string

	if c.Derived.ScrollKilometers >= 0.01 {
		lines = append(lines, fmt.Sprintf(
			"You scrolled %.2f km today — %d pixels of screen travel.",
			c.Derived.ScrollKilometers, c.Totals.ScrollDistance))
	} else {
		lines = append(lines, fmt.Sprintf(
			"You scrolled about %.0f cm today — a quiet day for the mouse wheel.",
			c.Derived.ScrollCentimeters))
	}

	if c.Totals.ActiveMinutes > 0 {
		lines = append(lines, fmt.Sprintf(
			"%d clicks over %.0f active minutes works out to %.1f clicks a minute.",
			c.Totals.ClickCount, c.Totals.ActiveMinutes, c.Derived.ClicksPerActiveMinute))
	} else {
		lines = append(lines, fmt.Sprintf("%d clicks, with no sustained active time recorded.", c.Totals.ClickCount))
	}

	lines = append(lines, pacingLine(c.Totals.ActiveMinutes))
	return strings.Join(lines, "\n")
}

// pacingLine picks the closing line by simple thresholds on active minutes.
func pacingLine(activeMinutes float64) string {
	switch {
	case activeMinutes < 10:
		return "A barely-there session — more of a warm-up lap than a run."
	case activeMinutes < 60:
		return "A short, focused stretch — you kept it brisk."
	case activeMinutes < 180:
		return "A steady cruising pace, sustained without burning out."
	default:
		return "A marathon session — remember to come up for air."
	}
}
