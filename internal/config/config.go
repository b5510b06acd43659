package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/baduk-clock/internal/timecontrol"
)

type AppConfig struct {
	ListenAddr string

	RedisURL    string
	DatabaseURL string

	// WebhookURL, when set, receives every clock cue as a JSON POST
	// (the sound box / chat relay integration point).
	WebhookURL string

	// TickInterval is the frame cadence of the clock loop. The engine is
	// correct under any delta; this only bounds display latency.
	TickInterval time.Duration

	DefaultTimeControl timecontrol.Config
	SoundDefault       bool

	MsgTemplateDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:   ":8080",
		TickInterval: 16 * time.Millisecond,
		SoundDefault: true,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.WebhookURL = strings.TrimSpace(os.Getenv("CLOCK_WEBHOOK_URL"))
	cfg.MsgTemplateDir = strings.TrimSpace(os.Getenv("MSG_TEMPLATE_DIR"))

	if v := strings.TrimSpace(os.Getenv("TICK_INTERVAL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("SOUND_DEFAULT")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SoundDefault = b
		}
	}

	tc := strings.TrimSpace(os.Getenv("DEFAULT_TIME_CONTROL"))
	if tc == "" {
		tc = "byoyomi:600+5x30"
	}
	parsed, err := timecontrol.ParseConfig(tc)
	if err != nil {
		return nil, err
	}
	cfg.DefaultTimeControl = parsed

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
