package settings

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/baduk-clock/internal/timecontrol"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defaults := Settings{
		TimeControl: timecontrol.Config{Type: timecontrol.SchemeByoYomi, MainTimeSec: 600, Periods: 5, PeriodTimeSec: 30},
		Sound:       true,
	}
	return NewStore(rdb, defaults)
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TimeControl.Type != timecontrol.SchemeByoYomi || !got.Sound {
		t.Fatalf("defaults: %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := Settings{
		TimeControl: timecontrol.Config{Type: timecontrol.SchemeFischer, MainTimeSec: 300, IncrementSec: 5},
		Sound:       false,
	}
	if err := s.Save(ctx, "u1", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != in {
		t.Fatalf("round trip: %+v vs %+v", got, in)
	}
	// other users keep defaults
	other, _ := s.Load(ctx, "u2")
	if other == in {
		t.Fatalf("settings leaked across users")
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	s := newTestStore(t)
	bad := Settings{TimeControl: timecontrol.Config{Type: timecontrol.SchemeByoYomi, Periods: 3}}
	if err := s.Save(context.Background(), "u1", bad); err == nil {
		t.Fatalf("expected validation error")
	}
}
