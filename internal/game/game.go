package game

import (
	"errors"
	"time"

	"github.com/park285/baduk-clock/internal/timecontrol"
)

var (
	ErrNotWaiting = errors.New("game has already started")
	ErrNotRunning = errors.New("game is not running")
	ErrNotPaused  = errors.New("game is not paused")
	ErrEnded      = errors.New("game has ended")
)

// New creates a match in WAITING with both clocks at full main time.
func New(id string, cfg timecontrol.Config, blackName, whiteName string, now time.Time) *Game {
	return &Game{
		ID:        id,
		BlackName: blackName,
		WhiteName: whiteName,
		Config:    cfg,
		Black:     timecontrol.NewClock(cfg),
		White:     timecontrol.NewClock(cfg),
		Active:    Black,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (g *Game) clock(p Player) *timecontrol.Clock {
	if p == Black {
		return &g.Black
	}
	return &g.White
}

// Clock returns a copy of p's clock state.
func (g *Game) Clock(p Player) timecontrol.Clock { return *g.clock(p) }

// Start moves WAITING → RUNNING. Black is on the move.
func (g *Game) Start(now time.Time) error {
	if g.Status != StatusWaiting {
		return ErrNotWaiting
	}
	g.Status = StatusRunning
	g.Active = Black
	g.StartedAt = now
	g.UpdatedAt = now
	return nil
}

// Pause freezes a running game. Time spent paused is simply never fed to
// Advance, so nothing on the clocks needs adjusting.
func (g *Game) Pause(now time.Time) error {
	if g.Status != StatusRunning {
		return ErrNotRunning
	}
	g.Status = StatusPaused
	g.UpdatedAt = now
	return nil
}

// Resume moves PAUSED → RUNNING.
func (g *Game) Resume(now time.Time) error {
	if g.Status != StatusPaused {
		return ErrNotPaused
	}
	g.Status = StatusRunning
	g.UpdatedAt = now
	return nil
}

// Advance feeds deltaMs of elapsed time to the active player's clock.
// Outside RUNNING it is a no-op. On expiry the game ends and the winner
// is the opponent of whoever ran out.
func (g *Game) Advance(deltaMs int64, now time.Time) AdvanceResult {
	if g.Status != StatusRunning || deltaMs <= 0 {
		return AdvanceResult{}
	}
	active := g.clock(g.Active)
	before := *active
	res := timecontrol.Tick(before, g.Config, deltaMs)
	*active = res.Clock
	g.UpdatedAt = now

	out := AdvanceResult{Expired: res.Expired, EnteredOvertime: res.EnteredOvertime}
	if g.Config.Type == timecontrol.SchemeByoYomi && !res.EnteredOvertime &&
		before.Overtime != nil && res.Clock.Overtime != nil &&
		res.Clock.Overtime.Periods < before.Overtime.Periods {
		out.PeriodConsumed = true
	}
	if res.Expired {
		g.end(g.Active.Opponent(), "timeout", now)
	}
	return out
}

// Move applies turn-completion effects to the active player's clock and
// hands the turn to the opponent.
func (g *Game) Move(now time.Time) (MoveResult, error) {
	if g.Status == StatusEnded {
		return MoveResult{}, ErrEnded
	}
	if g.Status != StatusRunning {
		return MoveResult{}, ErrNotRunning
	}
	active := g.clock(g.Active)
	before := *active
	*active = timecontrol.OnMove(before, g.Config)
	g.Active = g.Active.Opponent()
	g.UpdatedAt = now

	var out MoveResult
	if g.Config.Type == timecontrol.SchemeCanadian &&
		before.Overtime != nil && active.Overtime != nil &&
		active.Overtime.Stones > before.Overtime.Stones {
		out.BlockReset = true
	}
	return out, nil
}

// Resign ends the game in favor of p's opponent. Allowed from any live
// state, including PAUSED.
func (g *Game) Resign(p Player, now time.Time) error {
	if g.Status == StatusEnded {
		return ErrEnded
	}
	if g.Status == StatusWaiting {
		return ErrNotRunning
	}
	g.end(p.Opponent(), "resign", now)
	return nil
}

func (g *Game) end(winner Player, reason string, now time.Time) {
	g.Status = StatusEnded
	g.Winner = winner
	g.EndReason = reason
	g.UpdatedAt = now
	g.EndedAt = now
}

// DisplayMs returns what p's clock face shows right now.
func (g *Game) DisplayMs(p Player) int64 {
	return timecontrol.DisplayMs(*g.clock(p))
}
