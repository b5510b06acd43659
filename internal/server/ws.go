package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/baduk-clock/internal/obslog"
)

const wsWriteTimeout = 5 * time.Second

// handleWS streams a game's Update frames (state snapshots and cues) to a
// websocket client. The stream is write-only; client frames are drained
// and used solely to notice disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ch, unsubscribe, err := s.mgr.Subscribe(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		unsubscribe()
		obslog.L().Warn("ws_accept_error", zap.String("game_id", id), zap.Error(err))
		return
	}
	defer unsubscribe()
	defer c.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		for {
			if _, _, err := c.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	obslog.L().Info("ws_subscribe", zap.String("game_id", id))
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(wctx, c, u)
			wcancel()
			if err != nil {
				return
			}
		}
	}
}
