package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := c.Render("clock.timeout", map[string]any{"Winner": "백"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(s, "백") {
		t.Fatalf("unexpected render: %q", s)
	}
	if _, err := c.Render("clock.timeout", map[string]any{}); err == nil {
		t.Fatalf("missing data key must error")
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("missing template must error")
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	override := "clock:\n  pause: \"paused\"\n"
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := c.Render("clock.pause", nil)
	if err != nil || s != "paused" {
		t.Fatalf("override not applied: %q (%v)", s, err)
	}
	// untouched keys keep the embedded default
	if s := c.MustRender("clock.countdown", map[string]any{"Seconds": 3}); !strings.Contains(s, "3") {
		t.Fatalf("default lost: %q", s)
	}
}
