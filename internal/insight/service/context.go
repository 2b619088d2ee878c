package service

import (
	"math"
	"sort"

	metricdomain "webpulse/backend/internal/metric/domain"
)

// Pixel-to-physical conversion: screens are treated as 96 px/inch, an inch
// is 2.54 cm.
const (
	pxPerInch  = 96.0
	cmPerInch  = 2.54
	cmPerKm    = 100000.0
	goalActive = 120.0 // daily active-minutes goal the delta is measured against
)

// Thresholds for the context flags, in the raw units of the daily metric.
const (
	lowActivityBelow     = 10.0
	extendedActivityOver = 180.0
	highScrollOver       = 90000
	highClickOver        = 250
)

// DomainShare is one of the day's top domains with its share of total active
// time.
type DomainShare struct {
	Domain       string `json:"domain"`
	DurationMs   int64  `json:"durationMs"`
	SharePercent int    `json:"sharePercent"`
}

// PeakHour is one of the day's most active hours.
type PeakHour struct {
	Hour       int   `json:"hour"`
	DurationMs int64 `json:"durationMs"`
}

// Derived holds figures computed from the raw totals for prompting and
// signature purposes.
type Derived struct {
	ScrollCentimeters     float64 `json:"scrollCentimeters"`
	ScrollKilometers      float64 `json:"scrollKilometers"`
	ActiveVsGoalMinutes   float64 `json:"activeVsGoalMinutes"`
	ScrollPerActiveMinute float64 `json:"scrollPerActiveMinute"`
	ClicksPerActiveMinute float64 `json:"clicksPerActiveMinute"`
	ActivePercent         float64 `json:"activePercent"`
}

// Flags are coarse activity classifications used by the prompt and tags.
type Flags struct {
	LowActivity        bool `json:"lowActivity"`
	ExtendedActivity   bool `json:"extendedActivity"`
	HighScrollDistance bool `json:"highScrollDistance"`
	HighClickCount     bool `json:"highClickCount"`
}

// InsightContext is everything the generation step knows about a day: raw
// totals plus derived figures. The signature is computed over its
// signature-relevant subset.
type InsightContext struct {
	Date            string
	Totals          metricdomain.Totals
	TopDomains      []DomainShare
	PeakHours       []PeakHour
	DistinctDomains int
	ActiveHours     int
	Flags           Flags
	Derived         Derived
}

const (
	topDomainCount = 5
	peakHourCount  = 4
)

// BuildContext derives the InsightContext from a day's metric.
func BuildContext(m *metricdomain.DailyMetric) *InsightContext {
	c := &InsightContext{
		Date:            m.Date,
		Totals:          m.Totals,
		DistinctDomains: len(m.DomainBreakdown),
		ActiveHours:     len(m.HourBreakdown),
	}

	activeMs := m.Totals.ActiveMinutes * 60000
	for _, d := range m.DomainBreakdown {
		if d.DurationMs <= 0 {
			continue
		}
		share := 0
		if activeMs > 0 {
			share = int(math.Round(float64(d.DurationMs) / activeMs * 100))
		}
		c.TopDomains = append(c.TopDomains, DomainShare{
			Domain:       d.Domain,
			DurationMs:   d.DurationMs,
			SharePercent: share,
		})
		if len(c.TopDomains) == topDomainCount {
			break
		}
	}

	for hour, ms := range m.HourBreakdown {
		if ms <= 0 {
			continue
		}
		c.PeakHours = append(c.PeakHours, PeakHour{Hour: hour, DurationMs: ms})
	}
	sort.Slice(c.PeakHours, func(i, j int) bool {
		a, b := c.PeakHours[i], c.PeakHours[j]
		if a.DurationMs != b.DurationMs {
			return a.DurationMs > b.DurationMs
		}
		return a.Hour < b.Hour
	})
	if len(c.PeakHours) > peakHourCount {
		c.PeakHours = c.PeakHours[:peakHourCount]
	}

	c.Flags = Flags{
		LowActivity:        m.Totals.ActiveMinutes < lowActivityBelow,
		ExtendedActivity:   m.Totals.ActiveMinutes > extendedActivityOver,
		HighScrollDistance: m.Totals.ScrollDistance > highScrollOver,
		HighClickCount:     m.Totals.ClickCount > highClickOver,
	}

	cm := float64(m.Totals.ScrollDistance) / pxPerInch * cmPerInch
	c.Derived = Derived{
		ScrollCentimeters:   round2(cm),
		ScrollKilometers:    round2(cm / cmPerKm),
		ActiveVsGoalMinutes: round2(m.Totals.ActiveMinutes - goalActive),
	}
	if m.Totals.ActiveMinutes > 0 {
		c.Derived.ScrollPerActiveMinute = round2(float64(m.Totals.ScrollDistance) / m.Totals.ActiveMinutes)
		c.Derived.ClicksPerActiveMinute = round2(float64(m.Totals.ClickCount) / m.Totals.ActiveMinutes)
	}
	if total := m.Totals.ActiveMinutes + m.Totals.IdleMinutes; total > 0 {
		c.Derived.ActivePercent = round2(m.Totals.ActiveMinutes / total * 100)
	}
	return c
}

// signaturePayload is the signature-relevant subset of the context: no
// timestamps, no identifiers, nothing presentation-only.
type signaturePayload struct {
	Date       string              `json:"date"`
	Totals     metricdomain.Totals `json:"totals"`
	TopDomains []DomainShare       `json:"topDomains"`
	PeakHours  []PeakHour          `json:"peakHours"`
	Derived    Derived             `json:"derived"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
