package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/baduk-clock/internal/session"
)

// clockcheck probes a running clock server: hits /healthz over fasthttp,
// and when CLOCK_GAME_ID is set, watches that game's websocket stream for
// a short window.
func main() {
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("CLOCK_BASE_URL")), "/")
	gameID := strings.TrimSpace(os.Getenv("CLOCK_GAME_ID"))

	if baseURL == "" {
		log.Fatal("CLOCK_BASE_URL is required")
	}

	client := &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(baseURL + "/healthz")
	if err := client.DoDeadline(req, resp, time.Now().Add(5*time.Second)); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Printf("/healthz ok: status=%d body=%s", resp.StatusCode(), resp.Body())
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if gameID == "" {
		log.Println("CLOCK_GAME_ID not set; skipping WS check")
		return
	}

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/games/" + gameID + "/ws"
	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	c, _, err := websocket.Dial(cctx, wsURL, nil)
	if err != nil {
		log.Printf("WS dial error: %v", err)
		return
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	// Observe for a short window
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rctx, rcancel := context.WithDeadline(context.Background(), deadline)
		var u session.Update
		err := wsjson.Read(rctx, c, &u)
		rcancel()
		if err != nil {
			log.Printf("WS read stopped: %v", err)
			return
		}
		switch u.Kind {
		case session.UpdateState:
			fmt.Printf("state status=%s black=%s white=%s\n",
				u.State.Game.Status, u.State.BlackDisplay, u.State.WhiteDisplay)
		case session.UpdateCue:
			fmt.Printf("cue %s player=%s msg=%q\n", u.Event.Cue, u.Event.Player, u.Event.Message)
		}
	}
}
