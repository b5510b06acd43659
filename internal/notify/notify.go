package notify

import "context"

// Cue names a clock sound event. The engine never fires these; the
// session driver decides when, and sinks decide how (websocket frame,
// webhook POST, nothing).
type Cue string

const (
	// CueClick marks game start and every turn switch.
	CueClick Cue = "click"
	// CueTick is the per-second countdown beep (5..1 seconds left).
	CueTick Cue = "tick"
	// CueAlert marks overtime entry and period/stone-block turnover.
	CueAlert Cue = "alert"
	// CueGong marks game-ending expiry.
	CueGong Cue = "gong"
)

// Event is one cue occurrence with its announcement text.
type Event struct {
	Cue     Cue    `json:"cue"`
	GameID  string `json:"game_id"`
	Player  string `json:"player,omitempty"`
	Message string `json:"message,omitempty"`
}

// Sink consumes cue events. Implementations must not block the clock
// loop; slow transports buffer or drop.
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// Func adapts a function to a Sink.
type Func func(ctx context.Context, ev Event)

func (f Func) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Multi fans an event out to every sink.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, ev)
		}
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
