package service

import (
	"fmt"
	"strings"

	"webpulse/backend/internal/llm"
)

const systemPrompt = `You write short, encouraging summaries of a person's daily browsing activity.
Respond with exactly three lines, one analogy per line: the first about distance,
the second about energy or output, the third about pacing. Ground every analogy
in the numbers you are given. No preamble, no headings, no emoji.`

// buildPrompt turns the day's context into the chat prompt for the
// text-generation API.
func buildPrompt(c *InsightContext) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Browsing metrics for %s:\n", c.Date)
	fmt.Fprintf(&b, "- scrolled %d px (%.2f km, %.0f cm)\n",
		c.Totals.ScrollDistance, c.Derived.ScrollKilometers, c.Derived.ScrollCentimeters)
	fmt.Fprintf(&b, "- %.1f active minutes (goal delta %+.1f), %.1f idle minutes, %.1f%% of tracked time active\n",
		c.Totals.ActiveMinutes, c.Derived.ActiveVsGoalMinutes, c.Totals.IdleMinutes, c.Derived.ActivePercent)
	fmt.Fprintf(&b, "- %d clicks (%.1f per active minute)\n",
		c.Totals.ClickCount, c.Derived.ClicksPerActiveMinute)
	fmt.Fprintf(&b, "- %d distinct domains over %d active hours\n", c.DistinctDomains, c.ActiveHours)

	if len(c.TopDomains) > 0 {
		b.WriteString("- top domains: ")
		for i, d := range c.TopDomains {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%d%% of active time)", d.Domain, d.SharePercent)
		}
		b.WriteString("\n")
	}
	if len(c.PeakHours) > 0 {
		b.WriteString("- peak hours (UTC): ")
		for i, h := range c.PeakHours {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%02d:00", h.Hour)
		}
		b.WriteString("\n")
	}

	switch {
	case c.Flags.LowActivity:
		b.WriteString("Note: this was a light day.\n")
	case c.Flags.ExtendedActivity:
		b.WriteString("Note: this was an unusually long day.\n")
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
