package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

// Status card: both clock faces as seven-segment digits on a dark panel,
// rendered server-side to PNG for chat embeds and spectators without the
// live page open.

const (
	cardWidth   = 640
	cardHeight  = 320
	panelWidth  = 300
	panelHeight = 220
	panelTop    = 70
	digitW      = 34
	digitH      = 62
	digitGap    = 10
	segThick    = 8
)

var (
	cardBackground = color.NRGBA{R: 24, G: 26, B: 36, A: 255}
	panelIdle      = "#20232f"
	panelActive    = "#2b3147"
	segmentLit     = "#8ef0b4"
	segmentLow     = "#f0788e"
	labelColor     = color.NRGBA{R: 214, G: 219, B: 240, A: 255}
	subLabelColor  = color.NRGBA{R: 142, G: 150, B: 178, A: 255}
)

// Card renders the current state of g as a PNG.
func Card(g *game.Game) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("game is nil")
	}

	svg := buildCardSVG(g)
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse card svg: %w", err)
	}
	icon.SetTarget(0, 0, cardWidth, cardHeight)

	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(cardBackground), image.Point{}, imagedraw.Src)

	scanner := rasterx.NewScannerGV(cardWidth, cardHeight, img, img.Bounds())
	raster := rasterx.NewDasher(cardWidth, cardHeight, scanner)
	icon.Draw(raster, 1.0)

	drawLabels(img, g)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func buildCardSVG(g *game.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		cardWidth, cardHeight, cardWidth, cardHeight)

	writePanel(&b, g, game.Black, 12)
	writePanel(&b, g, game.White, cardWidth-panelWidth-12)

	b.WriteString(`</svg>`)
	return b.String()
}

func writePanel(b *strings.Builder, g *game.Game, p game.Player, x int) {
	fill := panelIdle
	if g.Status == game.StatusRunning && g.Active == p {
		fill = panelActive
	}
	fmt.Fprintf(b, `<path d="M%d %d h%d v%d h-%d z" fill="%s"/>`,
		x, panelTop, panelWidth, panelHeight, panelWidth, fill)

	ms := g.DisplayMs(p)
	text := timecontrol.FormatClock(ms)
	lit := segmentLit
	if ms <= 10_000 || (g.Status == game.StatusEnded && g.Winner == p.Opponent()) {
		lit = segmentLow
	}
	writeTimeDigits(b, text, x, panelTop+60, lit)
}

// writeTimeDigits lays the formatted time out centered in the panel.
func writeTimeDigits(b *strings.Builder, text string, panelX, y int, fill string) {
	width := 0
	for _, r := range text {
		if r == ':' {
			width += digitW/2 + digitGap
		} else {
			width += digitW + digitGap
		}
	}
	x := panelX + (panelWidth-width)/2
	for _, r := range text {
		if r == ':' {
			writeColon(b, x, y, fill)
			x += digitW/2 + digitGap
			continue
		}
		writeDigit(b, int(r-'0'), x, y, fill)
		x += digitW + digitGap
	}
}

// Seven segments, indexed: 0 top, 1 top-right, 2 bottom-right, 3 bottom,
// 4 bottom-left, 5 top-left, 6 middle.
var digitSegments = [10][7]bool{
	{true, true, true, true, true, true, false},     // 0
	{false, true, true, false, false, false, false}, // 1
	{true, true, false, true, true, false, true},    // 2
	{true, true, true, true, false, false, true},    // 3
	{false, true, true, false, false, true, true},   // 4
	{true, false, true, true, false, true, true},    // 5
	{true, false, true, true, true, true, true},     // 6
	{true, true, true, false, false, false, false},  // 7
	{true, true, true, true, true, true, true},      // 8
	{true, true, true, true, false, true, true},     // 9
}

func writeDigit(b *strings.Builder, d, x, y int, fill string) {
	if d < 0 || d > 9 {
		return
	}
	half := digitH / 2
	segs := [7][4]int{
		{x + segThick, y, digitW - 2*segThick, segThick},                     // top
		{x + digitW - segThick, y + segThick, segThick, half - segThick - 1}, // top-right
		{x + digitW - segThick, y + half + 1, segThick, half - segThick - 1}, // bottom-right
		{x + segThick, y + digitH - segThick, digitW - 2*segThick, segThick}, // bottom
		{x, y + half + 1, segThick, half - segThick - 1},                     // bottom-left
		{x, y + segThick, segThick, half - segThick - 1},                     // top-left
		{x + segThick, y + half - segThick/2, digitW - 2*segThick, segThick}, // middle
	}
	for i, on := range digitSegments[d] {
		if !on {
			continue
		}
		s := segs[i]
		fmt.Fprintf(b, `<path d="M%d %d h%d v%d h-%d z" fill="%s"/>`, s[0], s[1], s[2], s[3], s[2], fill)
	}
}

func writeColon(b *strings.Builder, x, y int, fill string) {
	cx := x + digitW/4 - segThick/2
	fmt.Fprintf(b, `<path d="M%d %d h%d v%d h-%d z" fill="%s"/>`, cx, y+digitH/3, segThick, segThick, segThick, fill)
	fmt.Fprintf(b, `<path d="M%d %d h%d v%d h-%d z" fill="%s"/>`, cx, y+2*digitH/3, segThick, segThick, segThick, fill)
}

// drawLabels overlays the ASCII side labels with the x/image bitmap
// font. Player display names can be arbitrary unicode, so the card
// sticks to the fixed BLACK/WHITE captions plus counters.
func drawLabels(img *image.RGBA, g *game.Game) {
	drawString(img, "BLACK", 24, panelTop-14, labelColor)
	drawString(img, "WHITE", cardWidth-panelWidth, panelTop-14, labelColor)

	drawString(img, subline(g, game.Black), 24, panelTop+panelHeight-16, subLabelColor)
	drawString(img, subline(g, game.White), cardWidth-panelWidth, panelTop+panelHeight-16, subLabelColor)

	status := string(g.Status)
	if g.Status == game.StatusEnded && g.Winner != "" {
		status = fmt.Sprintf("%s WINS (%s)", strings.ToUpper(string(g.Winner)), strings.ToUpper(g.EndReason))
	}
	drawString(img, status, 24, cardHeight-18, subLabelColor)
	drawString(img, g.Config.String(), cardWidth/2+40, cardHeight-18, subLabelColor)
}

func subline(g *game.Game, p game.Player) string {
	c := g.Clock(p)
	if !c.InOvertime || c.Overtime == nil {
		return fmt.Sprintf("MAIN TIME  MOVES %d", c.Moves)
	}
	switch g.Config.Type {
	case timecontrol.SchemeByoYomi:
		return fmt.Sprintf("PERIODS %d  MOVES %d", c.Overtime.Periods, c.Moves)
	case timecontrol.SchemeCanadian:
		return fmt.Sprintf("STONES %d  MOVES %d", c.Overtime.Stones, c.Moves)
	default:
		return fmt.Sprintf("OVERTIME  MOVES %d", c.Moves)
	}
}

func drawString(img *image.RGBA, s string, x, y int, clr color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
