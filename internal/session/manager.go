package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/msgcat"
	"github.com/park285/baduk-clock/internal/notify"
	"github.com/park285/baduk-clock/internal/obslog"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

// Manager owns every live match: it runs the frame loop that feeds
// elapsed wall-clock time into the engine, fires cues, snapshots state to
// Redis, and hands finished results to the repository.
type Manager struct {
	mu    sync.Mutex
	games map[string]*entry

	rdb  *redis.Client
	repo *Repository

	clock    clockwork.Clock
	interval time.Duration

	sink notify.Sink
	cat  *msgcat.Catalog
}

type Options struct {
	// TickInterval is the frame cadence; correctness does not depend on
	// it, only display latency does.
	TickInterval time.Duration
	// Sink receives every cue (webhook, etc). May be nil.
	Sink notify.Sink
	// Catalog renders announcement texts. May be nil.
	Catalog *msgcat.Catalog
}

func NewManager(rdb *redis.Client, clk clockwork.Clock, opts Options) *Manager {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	var sink notify.Sink = notify.Nop{}
	if opts.Sink != nil {
		sink = opts.Sink
	}
	return &Manager{
		games:    make(map[string]*entry),
		rdb:      rdb,
		clock:    clk,
		interval: interval,
		sink:     sink,
		cat:      opts.Catalog,
	}
}

// AttachRepository wires a database repository for persisting final
// results.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// Close stops every frame loop. Games stay readable via their Redis
// snapshots.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.games {
		e.halt()
	}
}

// Create registers a new match in WAITING.
func (m *Manager) Create(ctx context.Context, cfg timecontrol.Config, blackName, whiteName string) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	g := game.New(id, cfg, strings.TrimSpace(blackName), strings.TrimSpace(whiteName), m.clock.Now())

	e := &entry{
		g:     g,
		fired: make(map[int64]bool),
		stop:  make(chan struct{}),
		subs:  make(map[chan Update]struct{}),
	}
	m.mu.Lock()
	m.games[id] = e
	snap := snapshotOf(g)
	m.mu.Unlock()

	m.saveSnapshot(ctx, snap.Game)
	obslog.L().Info("game_create",
		zap.String("game_id", id),
		zap.String("time_control", cfg.String()),
		zap.String("black", blackName),
		zap.String("white", whiteName),
	)
	return snap, nil
}

// Get returns the live state, falling back to the Redis snapshot for
// matches this process no longer holds.
func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	if e, ok := m.games[id]; ok {
		snap := snapshotOf(e.g)
		m.mu.Unlock()
		return snap, nil
	}
	m.mu.Unlock()

	g, err := m.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return snapshotOf(g), nil
}

// Start begins the match and its frame loop. Black is on the move.
func (m *Manager) Start(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	now := m.clock.Now()
	if err := e.g.Start(now); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	e.lastSample = now
	e.clearFired()
	snap := snapshotOf(e.g)
	ev := m.cueEvent(e.g, notify.CueClick, string(e.g.Active), "clock.start", map[string]any{
		"Black": e.g.BlackName, "White": e.g.WhiteName,
	})
	m.emit(e, ev, snap)
	m.mu.Unlock()

	go m.runLoop(e)
	m.saveSnapshot(ctx, snap.Game)
	obslog.L().Info("game_start", zap.String("game_id", id))
	return snap, nil
}

// Pause freezes the clocks after charging the active player for the time
// already elapsed this frame.
func (m *Manager) Pause(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	now := m.clock.Now()
	m.advanceLocked(e, now)
	if err := e.g.Pause(now); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	snap := snapshotOf(e.g)
	m.broadcast(e, Update{Kind: UpdateState, State: snap})
	m.mu.Unlock()

	m.saveSnapshot(ctx, snap.Game)
	obslog.L().Info("game_pause", zap.String("game_id", id))
	return snap, nil
}

// Resume restarts the clocks; the pause gap is never charged because the
// sample point moves to now.
func (m *Manager) Resume(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	now := m.clock.Now()
	if err := e.g.Resume(now); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	e.lastSample = now
	snap := snapshotOf(e.g)
	m.broadcast(e, Update{Kind: UpdateState, State: snap})
	m.mu.Unlock()

	m.saveSnapshot(ctx, snap.Game)
	obslog.L().Info("game_resume", zap.String("game_id", id))
	return snap, nil
}

// Move completes p's turn: the frame gap since the last sample is charged
// first (the press may arrive out of time), then turn-completion effects
// apply and the opponent's clock takes over.
func (m *Manager) Move(ctx context.Context, id string, p game.Player) (*Snapshot, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	if e.g.Status == game.StatusRunning && e.g.Active != p {
		m.mu.Unlock()
		return nil, ErrWrongTurn
	}
	now := m.clock.Now()
	m.advanceLocked(e, now)
	if e.g.Status == game.StatusEnded {
		// The press came too late: the advance above expired the clock.
		snap := snapshotOf(e.g)
		m.mu.Unlock()
		return snap, game.ErrEnded
	}
	res, err := e.g.Move(now)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	e.clearFired()
	snap := snapshotOf(e.g)
	m.emit(e, m.cueEvent(e.g, notify.CueClick, string(p), "", nil), snap)
	if res.BlockReset {
		ot := e.g.Clock(p).Overtime
		stones := 0
		if ot != nil {
			stones = ot.Stones
		}
		m.emit(e, m.cueEvent(e.g, notify.CueAlert, string(p), "clock.block_reset", map[string]any{
			"Player": string(p), "Stones": stones,
		}), nil)
	}
	m.mu.Unlock()

	m.saveSnapshot(ctx, snap.Game)
	return snap, nil
}

// Resign ends the match in favor of p's opponent.
func (m *Manager) Resign(ctx context.Context, id string, p game.Player) (*Snapshot, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	now := m.clock.Now()
	m.advanceLocked(e, now)
	if err := e.g.Resign(p, now); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	snap := snapshotOf(e.g)
	m.emit(e, m.cueEvent(e.g, notify.CueGong, string(p), "clock.resign", map[string]any{
		"Loser": playerName(e.g, p), "Winner": playerName(e.g, p.Opponent()),
	}), snap)
	e.halt()
	m.mu.Unlock()

	m.saveSnapshot(ctx, snap.Game)
	m.persistFinal(snap.Game)
	obslog.L().Info("game_resign",
		zap.String("game_id", id),
		zap.String("resigner", string(p)),
		zap.String("winner", string(snap.Game.Winner)),
	)
	return snap, nil
}

// Subscribe attaches a stream of state and cue updates for one game. The
// returned cancel detaches and closes the channel.
func (m *Manager) Subscribe(id string) (<-chan Update, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	ch := make(chan Update, 64)
	e.subs[ch] = struct{}{}
	// prime with the current state
	ch <- Update{Kind: UpdateState, State: snapshotOf(e.g)}
	cancel := func() {
		m.mu.Lock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel, nil
}

func playerName(g *game.Game, p game.Player) string {
	if p == game.Black {
		return g.BlackName
	}
	return g.WhiteName
}

// cueEvent builds the event with its rendered announcement. An empty key
// means a silent cue (no text).
func (m *Manager) cueEvent(g *game.Game, cue notify.Cue, player, key string, data map[string]any) *notify.Event {
	ev := &notify.Event{Cue: cue, GameID: g.ID, Player: player}
	if key != "" && m.cat != nil {
		ev.Message = m.cat.MustRender(key, data)
	}
	return ev
}

// emit sends a cue to the external sink and to the game's subscribers,
// optionally with a fresh state frame. Callers hold the manager lock.
func (m *Manager) emit(e *entry, ev *notify.Event, snap *Snapshot) {
	m.sink.Notify(context.Background(), *ev)
	m.broadcast(e, Update{Kind: UpdateCue, Event: ev})
	if snap != nil {
		m.broadcast(e, Update{Kind: UpdateState, State: snap})
	}
}

// broadcast is non-blocking: a stalled subscriber loses frames instead of
// stalling the clock.
func (m *Manager) broadcast(e *entry, u Update) {
	for ch := range e.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func (m *Manager) persistFinal(g *game.Game) {
	if m.repo == nil || g.Status != game.StatusEnded {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.SaveResult(ctx, g); err != nil {
			obslog.L().Error("result_persist_error", zap.String("game_id", g.ID), zap.Error(err))
			return
		}
		obslog.L().Info("result_persist", zap.String("game_id", g.ID), zap.String("reason", g.EndReason))
	}()
}
