package service

import (
	"reflect"
	"testing"

	metricdomain "webpulse/backend/internal/metric/domain"
)

func TestDeriveTags(t *testing.T) {
	cases := []struct {
		name   string
		totals metricdomain.Totals
		want   []string
	}{
		{
			name:   "quiet day",
			totals: metricdomain.Totals{ActiveMinutes: 5, IdleMinutes: 60, ScrollDistance: 1000},
			want:   []string{"light-day"},
		},
		{
			name:   "marathon with focus",
			totals: metricdomain.Totals{ActiveMinutes: 300, IdleMinutes: 10, ScrollDistance: 2000},
			want:   []string{"marathon", "laser-focus"},
		},
		{
			name:   "deep dive on modest scrolling",
			totals: metricdomain.Totals{ActiveMinutes: 60, IdleMinutes: 45, ScrollDistance: 5001},
			want:   []string{"deep-dive"},
		},
		{
			name:   "scroll at threshold not tagged",
			totals: metricdomain.Totals{ActiveMinutes: 60, IdleMinutes: 45, ScrollDistance: 5000},
			want:   []string{},
		},
		{
			name:   "click happy",
			totals: metricdomain.Totals{ActiveMinutes: 60, IdleMinutes: 45, ClickCount: 251},
			want:   []string{"click-happy"},
		},
		{
			name:   "all zero still tags",
			totals: metricdomain.Totals{},
			want:   []string{"laser-focus", "light-day"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveTags(tc.totals)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeriveTags_NeverNil(t *testing.T) {
	if deriveTags(metricdomain.Totals{ActiveMinutes: 60, IdleMinutes: 45}) == nil {
		t.Fatal("tags must be an empty slice, not nil")
	}
}
