package timecontrol

import "testing"

func TestFormatClock(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{-5000, "0:00"},
		{1, "0:01"},
		{999, "0:01"},
		{1000, "0:01"},
		{1001, "0:02"},
		{59999, "1:00"},
		{60000, "1:00"},
		{61000, "1:01"},
		{600000, "10:00"},
		{3599000, "59:59"},
		{3599001, "1:00:00"},
		{3600000, "1:00:00"},
		{3661000, "1:01:01"},
		{36000000, "10:00:00"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.ms); got != tc.want {
			t.Fatalf("FormatClock(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestParseConfigRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want Config
	}{
		{"byoyomi:600+5x30", Config{Type: SchemeByoYomi, MainTimeSec: 600, Periods: 5, PeriodTimeSec: 30}},
		{"canadian:900+25/300", Config{Type: SchemeCanadian, MainTimeSec: 900, Stones: 25, OvertimeSec: 300}},
		{"fischer:600+10", Config{Type: SchemeFischer, MainTimeSec: 600, IncrementSec: 10}},
		{"fischer:600", Config{Type: SchemeFischer, MainTimeSec: 600}},
		{" byo-yomi:60+3x10 ", Config{Type: SchemeByoYomi, MainTimeSec: 60, Periods: 3, PeriodTimeSec: 10}},
	}
	for _, tc := range cases {
		got, err := ParseConfig(tc.in)
		if err != nil {
			t.Fatalf("ParseConfig(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseConfig(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		back, err := ParseConfig(got.String())
		if err != nil || back != got {
			t.Fatalf("round trip %q → %q failed: %+v (%v)", tc.in, got.String(), back, err)
		}
	}
}

func TestParseConfigRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"byoyomi",
		"byoyomi:600",
		"byoyomi:600+5",
		"byoyomi:600+5x0",
		"canadian:600+25",
		"canadian:600+0/300",
		"hourglass:600+10",
		"fischer:abc+10",
		"fischer:600+-3",
	}
	for _, s := range bad {
		if _, err := ParseConfig(s); err == nil {
			t.Fatalf("ParseConfig(%q): expected error", s)
		}
	}
}
