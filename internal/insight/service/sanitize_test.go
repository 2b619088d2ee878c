package service

import (
	"strings"
	"testing"
)

func TestSanitize_TrimsAndCollapses(t *testing.T) {
	raw := "First line.   \n\n\n\n\nSecond line.\t\n"
	got := sanitize(raw)
	want := "First line.\n\n\nSecond line."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitize_DropsDuplicateLines(t *testing.T) {
	raw := "You scrolled far today.\n- you scrolled far today.\nA different line."
	got := sanitize(raw)
	if strings.Count(strings.ToLower(got), "scrolled far") != 1 {
		t.Fatalf("duplicate line survived: %q", got)
	}
	if !strings.Contains(got, "A different line.") {
		t.Fatalf("distinct line dropped: %q", got)
	}
}

func TestSanitize_AllWhitespaceBecomesEmpty(t *testing.T) {
	if got := sanitize("  \n\t\n   "); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestStripBulletLeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"- a point", "a point"},
		{"* a point", "a point"},
		{"• a point", "a point"},
		{"plain line", "plain line"},
		{"-no space", "-no space"},
	}
	for _, tc := range cases {
		if got := stripBulletLeader(tc.in); got != tc.want {
			t.Errorf("stripBulletLeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeTitle_ShortLineUnchanged(t *testing.T) {
	if got := makeTitle("A short title.\nMore body."); got != "A short title." {
		t.Fatalf("got %q", got)
	}
}

func TestMakeTitle_TruncatesRunesNotBytes(t *testing.T) {
	line := strings.Repeat("ß", 100)
	got := makeTitle(line)
	runes := []rune(got)
	if len(runes) != maxTitleLen+1 {
		t.Fatalf("got %d runes, want %d", len(runes), maxTitleLen+1)
	}
	if runes[len(runes)-1] != '…' {
		t.Fatalf("missing ellipsis: %q", got)
	}
}

func TestMakeTitle_SkipsLeadingBlankLines(t *testing.T) {
	if got := makeTitle("\n\nReal title"); got != "Real title" {
		t.Fatalf("got %q", got)
	}
}
