package timecontrol

import "fmt"

// TickResult is the outcome of advancing one player's clock.
type TickResult struct {
	Clock           Clock
	Expired         bool
	EnteredOvertime bool
}

// Tick advances c by deltaMs of elapsed wall-clock time. It is pure: the
// input clock is never mutated, a delta of 0 (or less) returns it
// unchanged. Overflow past the end of main time is carried into the fresh
// overtime state within the same call, and a large delta may cascade
// through several byo-yomi periods at once.
func Tick(c Clock, cfg Config, deltaMs int64) TickResult {
	if deltaMs <= 0 {
		return TickResult{Clock: c}
	}
	if c.InOvertime {
		return overtimeTick(c, cfg, deltaMs)
	}

	rem := c.MainMs - deltaMs
	if rem > 0 {
		c.MainMs = rem
		return TickResult{Clock: c}
	}

	// Main time exhausted: clamp, enter overtime, carry the overflow.
	overflow := -rem
	c.MainMs = 0
	c.InOvertime = true
	switch cfg.Type {
	case SchemeByoYomi:
		c.Overtime = &Overtime{Periods: cfg.Periods, TimeMs: cfg.periodMs()}
	case SchemeCanadian:
		c.Overtime = &Overtime{Stones: cfg.Stones, TimeMs: cfg.overtimeMs()}
	case SchemeFischer:
		// No overtime to spend: out of main time is out of the game.
		return TickResult{Clock: c, Expired: true, EnteredOvertime: true}
	default:
		panic(fmt.Sprintf("timecontrol: unknown scheme %q", cfg.Type))
	}

	res := overtimeTick(c, cfg, overflow)
	res.EnteredOvertime = true
	return res
}

func overtimeTick(c Clock, cfg Config, deltaMs int64) TickResult {
	if c.Overtime == nil {
		// Fischer never creates overtime state; reaching here with any
		// scheme means a driver invariant was broken upstream.
		return TickResult{Clock: c, Expired: true}
	}
	ot := *c.Overtime

	switch cfg.Type {
	case SchemeByoYomi:
		ot.TimeMs -= deltaMs
		for ot.TimeMs <= 0 && ot.Periods > 0 {
			ot.Periods--
			if ot.Periods > 0 {
				// Replenish carries the negative remainder: overshooting a
				// period eats into the next one, possibly skipping it too.
				ot.TimeMs += cfg.periodMs()
			}
		}
		if ot.Periods <= 0 {
			ot.TimeMs = 0
			c.Overtime = &ot
			return TickResult{Clock: c, Expired: true}
		}
		c.Overtime = &ot
		return TickResult{Clock: c}

	case SchemeCanadian:
		ot.TimeMs -= deltaMs
		if ot.TimeMs <= 0 {
			ot.TimeMs = 0
			c.Overtime = &ot
			return TickResult{Clock: c, Expired: true}
		}
		c.Overtime = &ot
		return TickResult{Clock: c}

	case SchemeFischer:
		// Defensive: unreachable via Tick.
		return TickResult{Clock: c, Expired: true}

	default:
		panic(fmt.Sprintf("timecontrol: unknown scheme %q", cfg.Type))
	}
}

// OnMove applies turn-completion effects: the move counter always
// increments, and the scheme decides what happens to the time fields.
func OnMove(c Clock, cfg Config) Clock {
	c.Moves++

	switch cfg.Type {
	case SchemeByoYomi:
		if c.InOvertime && c.Overtime != nil {
			// Moving within the period refreshes it without consuming it.
			ot := *c.Overtime
			ot.TimeMs = cfg.periodMs()
			c.Overtime = &ot
		}
	case SchemeCanadian:
		if c.InOvertime && c.Overtime != nil {
			ot := *c.Overtime
			ot.Stones--
			if ot.Stones <= 0 {
				// Quota played out: fresh block of stones and time.
				ot.Stones = cfg.Stones
				ot.TimeMs = cfg.overtimeMs()
			}
			c.Overtime = &ot
		}
	case SchemeFischer:
		if !c.InOvertime {
			c.MainMs += cfg.incrementMs()
		}
		// Once expired there is nothing left to increment.
	default:
		panic(fmt.Sprintf("timecontrol: unknown scheme %q", cfg.Type))
	}
	return c
}
