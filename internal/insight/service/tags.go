package service

import metricdomain "webpulse/backend/internal/metric/domain"

// deriveTags classifies a day by threshold rules on the raw totals.
//
// The deep-dive threshold of 5000 px is an order of magnitude below every
// other scroll threshold in this system (cf. highScrollOver). It is carried
// over from the original behavior on purpose; see DESIGN.md before changing
// it.
func deriveTags(t metricdomain.Totals) []string {
	tags := []string{}
	if t.ActiveMinutes > 240 {
		tags = append(tags, "marathon")
	}
	if t.IdleMinutes < 30 {
		tags = append(tags, "laser-focus")
	}
	if t.ScrollDistance > 5000 {
		tags = append(tags, "deep-dive")
	}
	if t.ClickCount > 250 {
		tags = append(tags, "click-happy")
	}
	if t.ActiveMinutes < 10 {
		tags = append(tags, "light-day")
	}
	return tags
}
