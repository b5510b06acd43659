package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/msgcat"
	"github.com/park285/baduk-clock/internal/session"
	"github.com/park285/baduk-clock/internal/settings"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	mgr := session.NewManager(rdb, clockwork.NewFakeClock(), session.Options{Catalog: cat})
	t.Cleanup(mgr.Close)

	defaultTC, err := timecontrol.ParseConfig("byoyomi:600+5x30")
	if err != nil {
		t.Fatalf("default tc: %v", err)
	}
	store := settings.NewStore(rdb, settings.Settings{TimeControl: defaultTC, Sound: true})

	s := New(":0", mgr, store, defaultTC)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) *session.Snapshot {
	t.Helper()
	defer resp.Body.Close()
	var snap session.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return &snap
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", map[string]string{
		"time_control": "byoyomi:10+3x30", "black": "b", "white": "w",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	snap := decodeSnapshot(t, resp)
	id := snap.Game.ID
	if snap.Game.Status != game.StatusWaiting || snap.BlackDisplay != "0:10" {
		t.Fatalf("created: %+v %q", snap.Game, snap.BlackDisplay)
	}

	resp = postJSON(t, ts.URL+"/api/games/"+id+"/start", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status: %d", resp.StatusCode)
	}
	snap = decodeSnapshot(t, resp)
	if snap.Game.Status != game.StatusRunning || snap.Game.Active != game.Black {
		t.Fatalf("started: %+v", snap.Game)
	}

	// Out-of-turn press.
	resp = postJSON(t, ts.URL+"/api/games/"+id+"/move", map[string]string{"player": "white"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("wrong turn status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/games/"+id+"/move", map[string]string{"player": "black"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move status: %d", resp.StatusCode)
	}
	snap = decodeSnapshot(t, resp)
	if snap.Game.Active != game.White || snap.Game.Black.Moves != 1 {
		t.Fatalf("after move: %+v", snap.Game)
	}

	resp = postJSON(t, ts.URL+"/api/games/"+id+"/resign", map[string]string{"player": "white"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resign status: %d", resp.StatusCode)
	}
	snap = decodeSnapshot(t, resp)
	if snap.Game.Status != game.StatusEnded || snap.Game.Winner != game.Black {
		t.Fatalf("after resign: %+v", snap.Game)
	}
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", map[string]string{
		"time_control": "blitz:whatever", "black": "b", "white": "w",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad shorthand status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Empty body falls back to the server default.
	resp = postJSON(t, ts.URL+"/api/games", map[string]string{"black": "b", "white": "w"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("default create status: %d", resp.StatusCode)
	}
	snap := decodeSnapshot(t, resp)
	if snap.Game.Config.Type != timecontrol.SchemeByoYomi || snap.BlackDisplay != "10:00" {
		t.Fatalf("default config: %+v", snap.Game.Config)
	}
}

func TestUnknownGameIs404(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/games/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestCardEndpointServesPNG(t *testing.T) {
	ts := newTestServer(t)

	snap := decodeSnapshot(t, postJSON(t, ts.URL+"/api/games", map[string]string{
		"time_control": "fischer:600+10", "black": "b", "white": "w",
	}))
	resp, err := http.Get(ts.URL + "/api/games/" + snap.Game.ID + "/card.png")
	if err != nil {
		t.Fatalf("GET card: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type: %q", ct)
	}
	var sig [8]byte
	if _, err := io.ReadFull(resp.Body, sig[:]); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(sig[:], []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("not a png: %v", sig)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	// Defaults come back for an unknown user.
	resp, err := http.Get(ts.URL + "/api/settings/u1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var got settings.Settings
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if got.TimeControl.Type != timecontrol.SchemeByoYomi || !got.Sound {
		t.Fatalf("defaults: %+v", got)
	}

	want := settings.Settings{
		TimeControl: timecontrol.Config{Type: timecontrol.SchemeFischer, MainTimeSec: 300, IncrementSec: 5},
		Sound:       false,
	}
	raw, _ := json.Marshal(want)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings/u1", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status: %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/settings/u1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TimeControl.Type != timecontrol.SchemeFischer || got.Sound {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestWebsocketStreamsPrimedState(t *testing.T) {
	ts := newTestServer(t)

	snap := decodeSnapshot(t, postJSON(t, ts.URL+"/api/games", map[string]string{
		"time_control": "byoyomi:600+5x30", "black": "b", "white": "w",
	}))
	id := snap.Game.ID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + id + "/ws"
	c, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	var u session.Update
	if err := wsjson.Read(ctx, c, &u); err != nil {
		t.Fatalf("read: %v", err)
	}
	if u.Kind != session.UpdateState || u.State == nil || u.State.Game.ID != id {
		t.Fatalf("primed frame: %+v", u)
	}

	// Starting the game pushes a cue and a state frame onto the stream.
	resp := postJSON(t, ts.URL+"/api/games/"+id+"/start", struct{}{})
	resp.Body.Close()

	sawRunning := false
	for i := 0; i < 4 && !sawRunning; i++ {
		if err := wsjson.Read(ctx, c, &u); err != nil {
			t.Fatalf("read: %v", err)
		}
		if u.Kind == session.UpdateState && u.State.Game.Status == game.StatusRunning {
			sawRunning = true
		}
	}
	if !sawRunning {
		t.Fatalf("never saw RUNNING state frame")
	}
}

func TestDecodePlayerRejectsGarbage(t *testing.T) {
	ts := newTestServer(t)
	snap := decodeSnapshot(t, postJSON(t, ts.URL+"/api/games", map[string]string{"black": "b", "white": "w"}))
	resp := postJSON(t, ts.URL+"/api/games/"+snap.Game.ID+"/move", map[string]string{"player": "red"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body["error"], "unknown player") {
		t.Fatalf("error body: %v", body)
	}
}
