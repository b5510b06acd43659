package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/obslog"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

const snapshotTTL = 24 * time.Hour

func gameKey(id string) string { return "clock:game:" + strings.TrimSpace(id) }

// saveSnapshot writes the game JSON to Redis so state survives process
// restarts and finished games stay readable. Best-effort: a failed write
// never blocks the clock.
func (m *Manager) saveSnapshot(ctx context.Context, g *game.Game) {
	if m.rdb == nil || g == nil {
		return
	}
	raw, err := json.Marshal(g)
	if err != nil {
		obslog.L().Error("snapshot_marshal_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	if err := m.rdb.Set(ctx, gameKey(g.ID), raw, snapshotTTL).Err(); err != nil {
		obslog.L().Warn("snapshot_save_error", zap.String("game_id", g.ID), zap.Error(err))
	}
}

func (m *Manager) loadSnapshot(ctx context.Context, id string) (*game.Game, error) {
	if m.rdb == nil {
		return nil, nil
	}
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g game.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// snapshotOf deep-copies g (the live game keeps mutating under the frame
// loop) and formats both clock faces.
func snapshotOf(g *game.Game) *Snapshot {
	cp := *g
	if g.Black.Overtime != nil {
		ot := *g.Black.Overtime
		cp.Black.Overtime = &ot
	}
	if g.White.Overtime != nil {
		ot := *g.White.Overtime
		cp.White.Overtime = &ot
	}
	return &Snapshot{
		Game:         &cp,
		BlackDisplay: timecontrol.FormatClock(timecontrol.DisplayMs(cp.Black)),
		WhiteDisplay: timecontrol.FormatClock(timecontrol.DisplayMs(cp.White)),
	}
}
