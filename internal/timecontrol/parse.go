package timecontrol

import (
	"fmt"
	"strconv"
	"strings"
)

// Compact shorthand used by env defaults and saved settings:
//
//	byoyomi:600+5x30     10 min main, 5 periods of 30s
//	canadian:900+25/300  15 min main, 25 stones per 5 min block
//	fischer:600+10       10 min main, 10s increment
//
// Seconds everywhere, matching the Config JSON fields.

// ParseConfig parses the shorthand into a validated Config.
func ParseConfig(s string) (Config, error) {
	raw := strings.TrimSpace(s)
	schemeStr, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Config{}, fmt.Errorf("invalid time control %q: want scheme:params", s)
	}
	scheme, err := ParseScheme(schemeStr)
	if err != nil {
		return Config{}, err
	}

	mainStr, extra, hasExtra := strings.Cut(rest, "+")
	main, err := parseSeconds(mainStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid main time in %q: %w", s, err)
	}

	cfg := Config{Type: scheme, MainTimeSec: main}
	switch scheme {
	case SchemeByoYomi:
		if !hasExtra {
			return Config{}, fmt.Errorf("byoyomi needs periods, e.g. %q", "byoyomi:600+5x30")
		}
		pStr, tStr, ok := strings.Cut(extra, "x")
		if !ok {
			return Config{}, fmt.Errorf("invalid byoyomi periods %q: want NxSEC", extra)
		}
		if cfg.Periods, err = parseCount(pStr); err != nil {
			return Config{}, fmt.Errorf("invalid period count in %q: %w", s, err)
		}
		if cfg.PeriodTimeSec, err = parseSeconds(tStr); err != nil {
			return Config{}, fmt.Errorf("invalid period time in %q: %w", s, err)
		}
	case SchemeCanadian:
		if !hasExtra {
			return Config{}, fmt.Errorf("canadian needs a stone block, e.g. %q", "canadian:600+25/300")
		}
		nStr, tStr, ok := strings.Cut(extra, "/")
		if !ok {
			return Config{}, fmt.Errorf("invalid canadian block %q: want STONES/SEC", extra)
		}
		if cfg.Stones, err = parseCount(nStr); err != nil {
			return Config{}, fmt.Errorf("invalid stone count in %q: %w", s, err)
		}
		if cfg.OvertimeSec, err = parseSeconds(tStr); err != nil {
			return Config{}, fmt.Errorf("invalid overtime in %q: %w", s, err)
		}
	case SchemeFischer:
		if hasExtra {
			if cfg.IncrementSec, err = parseSeconds(extra); err != nil {
				return Config{}, fmt.Errorf("invalid increment in %q: %w", s, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// String renders the shorthand back; inverse of ParseConfig for valid
// configs.
func (c Config) String() string {
	switch c.Type {
	case SchemeByoYomi:
		return fmt.Sprintf("byoyomi:%d+%dx%d", c.MainTimeSec, c.Periods, c.PeriodTimeSec)
	case SchemeCanadian:
		return fmt.Sprintf("canadian:%d+%d/%d", c.MainTimeSec, c.Stones, c.OvertimeSec)
	case SchemeFischer:
		return fmt.Sprintf("fischer:%d+%d", c.MainTimeSec, c.IncrementSec)
	}
	return string(c.Type)
}

func parseSeconds(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0, got %d", n)
	}
	return n, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0, got %d", n)
	}
	return n, nil
}
