package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/notify"
	"github.com/park285/baduk-clock/internal/obslog"
)

// runLoop is the per-game frame loop: wake on every tick, charge the
// active clock with the wall-clock time that actually passed, and react
// to what the engine reports. The cadence is a display concern only; a
// stalled frame of any length is handled by the engine's carry-over.
func (m *Manager) runLoop(e *entry) {
	t := m.clock.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.Chan():
			m.mu.Lock()
			m.advanceLocked(e, m.clock.Now())
			done := e.g.Status == game.StatusEnded
			m.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// advanceLocked charges the active player for the time elapsed since the
// last sample and fires whatever cues the transition produced. Callers
// hold the manager lock.
func (m *Manager) advanceLocked(e *entry, now time.Time) {
	if e.g.Status != game.StatusRunning {
		return
	}
	delta := now.Sub(e.lastSample).Milliseconds()
	if delta <= 0 {
		return
	}
	// Advance the sample point by the charged amount, not to now, so
	// sub-millisecond remainders carry into the next frame.
	e.lastSample = e.lastSample.Add(time.Duration(delta) * time.Millisecond)

	p := e.g.Active
	res := e.g.Advance(delta, now)

	if res.Expired {
		snap := snapshotOf(e.g)
		m.emit(e, m.cueEvent(e.g, notify.CueGong, string(p), "clock.timeout", map[string]any{
			"Winner": playerName(e.g, e.g.Winner),
		}), snap)
		e.halt()
		go m.saveSnapshot(context.Background(), snap.Game)
		m.persistFinal(snap.Game)
		obslog.L().Info("game_timeout",
			zap.String("game_id", e.g.ID),
			zap.String("expired", string(p)),
			zap.String("winner", string(e.g.Winner)),
		)
		return
	}

	if res.EnteredOvertime {
		e.clearFired()
		m.emit(e, m.cueEvent(e.g, notify.CueAlert, string(p), "clock.overtime", map[string]any{
			"Player": playerName(e.g, p),
		}), snapshotOf(e.g))
	}
	if res.PeriodConsumed {
		e.clearFired()
		left := 0
		if ot := e.g.Clock(p).Overtime; ot != nil {
			left = ot.Periods
		}
		m.emit(e, m.cueEvent(e.g, notify.CueAlert, string(p), "clock.period", map[string]any{
			"Player": playerName(e.g, p), "Left": left,
		}), snapshotOf(e.g))
	}

	secs := ceilSec(e.g.DisplayMs(p))
	if secs >= 1 && secs <= 5 && !e.fired[secs] {
		e.fired[secs] = true
		m.emit(e, m.cueEvent(e.g, notify.CueTick, string(p), "clock.countdown", map[string]any{
			"Seconds": secs,
		}), nil)
	}
	if secs != e.lastShownSec {
		e.lastShownSec = secs
		m.broadcast(e, Update{Kind: UpdateState, State: snapshotOf(e.g)})
	}
}

func ceilSec(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return (ms + 999) / 1000
}
