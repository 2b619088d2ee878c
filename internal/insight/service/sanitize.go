package service

import "strings"

// sanitize normalizes raw model output: trailing whitespace is trimmed per
// line, repeated lines are dropped case-insensitively (first occurrence wins,
// bullet leaders ignored for comparison), and runs of three or more blank
// lines collapse to two.
func sanitize(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	seen := map[string]bool{}
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0

		key := strings.ToLower(stripBulletLeader(line))
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// stripBulletLeader removes a leading bullet token ("-", "*", "•") so the
// same sentence with and without a bullet counts as a duplicate.
func stripBulletLeader(line string) string {
	s := strings.TrimSpace(line)
	for _, leader := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(s, leader) {
			return strings.TrimSpace(s[len(leader):])
		}
	}
	return s
}

// firstNonEmptyLine returns the title candidate from a sanitized body.
func firstNonEmptyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

const maxTitleLen = 70

// makeTitle truncates the first non-empty body line to maxTitleLen runes,
// appending an ellipsis when cut.
func makeTitle(body string) string {
	line := firstNonEmptyLine(body)
	runes := []rune(line)
	if len(runes) <= maxTitleLen {
		return line
	}
	return string(runes[:maxTitleLen]) + "…"
}
