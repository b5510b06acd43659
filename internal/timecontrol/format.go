package timecontrol

import "fmt"

// FormatClock renders a millisecond counter the way a clock face shows it.
// Negative values clamp to zero and partial seconds round UP, so any
// positive remainder still displays as a whole second (999ms → "0:01").
// Output is H:MM:SS once hours are involved, otherwise M:SS.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := (ms + 999) / 1000
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
