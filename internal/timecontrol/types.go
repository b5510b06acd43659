package timecontrol

import (
	"fmt"
	"strings"
)

// Scheme identifies a time-control discipline.
type Scheme string

const (
	SchemeByoYomi  Scheme = "byoyomi"
	SchemeCanadian Scheme = "canadian"
	SchemeFischer  Scheme = "fischer"
)

func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "byoyomi", "byo-yomi", "japanese":
		return SchemeByoYomi, nil
	case "canadian":
		return SchemeCanadian, nil
	case "fischer":
		return SchemeFischer, nil
	}
	return "", fmt.Errorf("unknown time control scheme: %q", s)
}

// Config is the immutable per-game time control. All fields are seconds
// (or counts); the engine works in milliseconds internally. The JSON shape
// is the stable save/restore format: a type tag plus the fields relevant
// to that scheme.
type Config struct {
	Type Scheme `json:"type"`

	MainTimeSec int `json:"main_time,omitempty"`

	// byoyomi
	Periods       int `json:"periods,omitempty"`
	PeriodTimeSec int `json:"period_time,omitempty"`

	// canadian
	Stones      int `json:"stones,omitempty"`
	OvertimeSec int `json:"overtime,omitempty"`

	// fischer
	IncrementSec int `json:"increment,omitempty"`
}

// Validate checks the per-scheme constraints. The engine assumes a valid
// config; callers (API, settings) validate at the boundary.
func (c Config) Validate() error {
	if c.MainTimeSec < 0 {
		return fmt.Errorf("main time must be >= 0, got %d", c.MainTimeSec)
	}
	switch c.Type {
	case SchemeByoYomi:
		if c.Periods < 0 {
			return fmt.Errorf("byoyomi periods must be >= 0, got %d", c.Periods)
		}
		if c.PeriodTimeSec <= 0 {
			return fmt.Errorf("byoyomi period time must be > 0, got %d", c.PeriodTimeSec)
		}
	case SchemeCanadian:
		if c.Stones < 1 {
			return fmt.Errorf("canadian stones must be >= 1, got %d", c.Stones)
		}
		if c.OvertimeSec <= 0 {
			return fmt.Errorf("canadian overtime must be > 0, got %d", c.OvertimeSec)
		}
	case SchemeFischer:
		if c.IncrementSec < 0 {
			return fmt.Errorf("fischer increment must be >= 0, got %d", c.IncrementSec)
		}
	default:
		return fmt.Errorf("unknown time control scheme: %q", c.Type)
	}
	return nil
}

func (c Config) mainMs() int64      { return int64(c.MainTimeSec) * 1000 }
func (c Config) periodMs() int64    { return int64(c.PeriodTimeSec) * 1000 }
func (c Config) overtimeMs() int64  { return int64(c.OvertimeSec) * 1000 }
func (c Config) incrementMs() int64 { return int64(c.IncrementSec) * 1000 }

// Overtime is present on a Clock only after main time is exhausted.
// Which fields are meaningful depends on the config's scheme: byo-yomi
// uses Periods+TimeMs, Canadian uses Stones+TimeMs. Fischer never has an
// Overtime at all.
type Overtime struct {
	Periods int   `json:"periods,omitempty"`
	Stones  int   `json:"stones,omitempty"`
	TimeMs  int64 `json:"time_ms"`
}

// Clock is one player's remaining time. Plain data: all transitions live
// in Tick and OnMove, which copy on write so callers can keep old values.
type Clock struct {
	MainMs     int64     `json:"main_ms"`
	Overtime   *Overtime `json:"overtime,omitempty"`
	Moves      int       `json:"moves"`
	InOvertime bool      `json:"in_overtime"`
}

// NewClock returns the starting clock for cfg: full main time, no
// overtime, zero moves.
func NewClock(cfg Config) Clock {
	return Clock{MainMs: cfg.mainMs()}
}

// DisplayMs returns the counter a clock face should show: main time while
// in main time, else the running overtime counter. A Fischer clock in
// overtime shows its exhausted main time (0).
func DisplayMs(c Clock) int64 {
	if !c.InOvertime || c.Overtime == nil {
		return c.MainMs
	}
	return c.Overtime.TimeMs
}
