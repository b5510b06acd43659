package session

import (
	"errors"
	"sync"
	"time"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/notify"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrWrongTurn = errors.New("not this player's turn")
)

// UpdateKind distinguishes stream frames sent to subscribers.
type UpdateKind string

const (
	UpdateState UpdateKind = "state"
	UpdateCue   UpdateKind = "cue"
)

// Snapshot is a copy of the game plus the formatted faces, safe to hand
// out and marshal after the live game has moved on.
type Snapshot struct {
	Game         *game.Game `json:"game"`
	BlackDisplay string     `json:"black_display"`
	WhiteDisplay string     `json:"white_display"`
}

// Update is one frame on a game's subscriber stream.
type Update struct {
	Kind  UpdateKind    `json:"kind"`
	Event *notify.Event `json:"event,omitempty"`
	State *Snapshot     `json:"state,omitempty"`
}

// entry is one live match: the game plus everything the frame loop needs.
// All fields are guarded by the manager mutex.
type entry struct {
	g          *game.Game
	lastSample time.Time

	// fired holds the countdown seconds already beeped this turn, so a
	// threshold sounds once even across uneven frames.
	fired map[int64]bool
	// lastShownSec throttles state broadcasts to once per displayed second.
	lastShownSec int64

	stop     chan struct{}
	stopOnce sync.Once

	subs map[chan Update]struct{}
}

func (e *entry) clearFired() {
	e.fired = make(map[int64]bool)
}

func (e *entry) halt() {
	e.stopOnce.Do(func() { close(e.stop) })
}
