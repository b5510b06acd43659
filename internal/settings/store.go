package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/park285/baduk-clock/internal/timecontrol"
)

// Settings are a user's saved clock preferences: the time control they
// last picked and whether cue sounds are on. The JSON shape is the
// stable storage format.
type Settings struct {
	TimeControl timecontrol.Config `json:"time_control"`
	Sound       bool               `json:"sound"`
}

// Store keeps per-user settings in Redis under clock:settings:<user>.
// Settings survive across games, so no TTL.
type Store struct {
	rdb      *redis.Client
	defaults Settings
}

func NewStore(rdb *redis.Client, defaults Settings) *Store {
	return &Store{rdb: rdb, defaults: defaults}
}

func key(userID string) string { return "clock:settings:" + strings.TrimSpace(userID) }

// Load returns the user's settings, or the defaults when nothing is
// saved yet.
func (s *Store) Load(ctx context.Context, userID string) (Settings, error) {
	if strings.TrimSpace(userID) == "" {
		return s.defaults, fmt.Errorf("user id required")
	}
	raw, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return s.defaults, nil
	}
	if err != nil {
		return s.defaults, err
	}
	var out Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return s.defaults, fmt.Errorf("decode settings: %w", err)
	}
	if err := out.TimeControl.Validate(); err != nil {
		// 저장값이 깨졌으면 기본값으로 복구.
		return s.defaults, nil
	}
	return out, nil
}

// Save validates and writes the user's settings.
func (s *Store) Save(ctx context.Context, userID string, in Settings) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id required")
	}
	if err := in.TimeControl.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(userID), raw, 0).Err()
}
