package game

import (
	"time"

	"github.com/park285/baduk-clock/internal/timecontrol"
)

// Player identifies a side. Black always moves first.
type Player string

const (
	Black Player = "black"
	White Player = "white"
)

func (p Player) Opponent() Player {
	if p == Black {
		return White
	}
	return Black
}

// Status is the game lifecycle state.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusRunning Status = "RUNNING"
	StatusPaused  Status = "PAUSED"
	StatusEnded   Status = "ENDED"
)

// Game is one dual-clock match. It is plain state owned by the session
// driver; the engine in internal/timecontrol never sees it.
type Game struct {
	ID        string `json:"id"`
	BlackName string `json:"black_name"`
	WhiteName string `json:"white_name"`

	Config timecontrol.Config `json:"config"`

	Black timecontrol.Clock `json:"black"`
	White timecontrol.Clock `json:"white"`

	Active Player `json:"active"`
	Status Status `json:"status"`

	// Winner is set once, when a clock expires or a player resigns, and
	// never changes afterwards.
	Winner Player `json:"winner,omitempty"`
	// EndReason is "timeout" or "resign" once Status is ENDED.
	EndReason string `json:"end_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
}

// Advance flags surfaced to the driver so it can fire cues. They are
// derived from engine results plus before/after comparison of the active
// clock; the engine itself stays signal-free beyond its two booleans.
type AdvanceResult struct {
	Expired         bool
	EnteredOvertime bool
	// PeriodConsumed is true when a byo-yomi period was spent during this
	// advance (not counting the one entered on overtime start).
	PeriodConsumed bool
}

// MoveResult reports turn-completion effects the driver may announce.
type MoveResult struct {
	// BlockReset is true when a Canadian stone quota completed and the
	// block was replenished.
	BlockReset bool
}
