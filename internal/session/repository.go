package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/baduk-clock/internal/game"
)

// Repository persists finished matches to Postgres. Live ticking state
// never touches the database; only the final row does.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts one finished game.
func (r *Repository) SaveResult(ctx context.Context, g *game.Game) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}
	if g.Status != game.StatusEnded {
		return nil
	}

	var durationMs int64
	if !g.StartedAt.IsZero() && !g.EndedAt.IsZero() {
		durationMs = g.EndedAt.Sub(g.StartedAt).Milliseconds()
		if durationMs < 0 {
			durationMs = 0
		}
	}

	q := `INSERT INTO go_clock_games (
	    game_id, black_name, white_name, time_control,
	    winner, end_reason, black_moves, white_moves,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
	  ) ON CONFLICT (game_id) DO UPDATE SET
	    black_name=EXCLUDED.black_name,
	    white_name=EXCLUDED.white_name,
	    time_control=EXCLUDED.time_control,
	    winner=EXCLUDED.winner,
	    end_reason=EXCLUDED.end_reason,
	    black_moves=EXCLUDED.black_moves,
	    white_moves=EXCLUDED.white_moves,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		g.ID,
		g.BlackName, g.WhiteName,
		g.Config.String(),
		string(g.Winner), g.EndReason,
		g.Black.Moves, g.White.Moves,
		g.StartedAt, g.EndedAt, durationMs,
	)
	return err
}
