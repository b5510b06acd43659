package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

func TestCardProducesDecodablePNG(t *testing.T) {
	cfg := timecontrol.Config{Type: timecontrol.SchemeByoYomi, MainTimeSec: 600, Periods: 5, PeriodTimeSec: 30}
	g := game.New("g1", cfg, "b", "w", time.Now())

	data, err := Card(g)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != cardWidth || b.Dy() != cardHeight {
		t.Fatalf("bounds: %v", b)
	}
}

func TestCardRendersEndedAndOvertimeStates(t *testing.T) {
	cfg := timecontrol.Config{Type: timecontrol.SchemeCanadian, MainTimeSec: 1, Stones: 25, OvertimeSec: 300}
	g := game.New("g2", cfg, "b", "w", time.Now())
	if err := g.Start(time.Now()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	g.Advance(1500, time.Now()) // into the overtime block
	if _, err := Card(g); err != nil {
		t.Fatalf("overtime card: %v", err)
	}

	g.Advance(10*60*1000, time.Now()) // burn the block, game over
	if g.Status != game.StatusEnded {
		t.Fatalf("expected ended game, got %s", g.Status)
	}
	data, err := Card(g)
	if err != nil {
		t.Fatalf("ended card: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty png")
	}
}

func TestSevenSegmentTableCoversAllDigits(t *testing.T) {
	for d, segs := range digitSegments {
		on := 0
		for _, s := range segs {
			if s {
				on++
			}
		}
		if on < 2 {
			t.Fatalf("digit %d has %d segments", d, on)
		}
	}
}
