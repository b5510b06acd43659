package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/baduk-clock/internal/game"
	"github.com/park285/baduk-clock/internal/obslog"
	"github.com/park285/baduk-clock/internal/render"
	"github.com/park285/baduk-clock/internal/session"
	"github.com/park285/baduk-clock/internal/settings"
	"github.com/park285/baduk-clock/internal/timecontrol"
)

// Server exposes the clock over HTTP: a small JSON API for match control,
// a PNG status card, and a websocket stream per game.
type Server struct {
	mgr       *session.Manager
	store     *settings.Store
	defaultTC timecontrol.Config

	srv *http.Server
}

func New(addr string, mgr *session.Manager, store *settings.Store, defaultTC timecontrol.Config) *Server {
	s := &Server{mgr: mgr, store: store, defaultTC: defaultTC}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/games", s.handleCreate)
	mux.HandleFunc("GET /api/games/{id}", s.handleGet)
	mux.HandleFunc("POST /api/games/{id}/start", s.handleStart)
	mux.HandleFunc("POST /api/games/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /api/games/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /api/games/{id}/move", s.handleMove)
	mux.HandleFunc("POST /api/games/{id}/resign", s.handleResign)
	mux.HandleFunc("GET /api/games/{id}/card.png", s.handleCard)
	mux.HandleFunc("GET /api/games/{id}/ws", s.handleWS)

	mux.HandleFunc("GET /api/settings/{user}", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/{user}", s.handlePutSettings)
	return mux
}

func (s *Server) Start() error {
	obslog.L().Info("http_listen", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createGameRequest struct {
	// TimeControl is the shorthand form ("byoyomi:600+5x30"); Config, when
	// present, wins over it.
	TimeControl string              `json:"time_control,omitempty"`
	Config      *timecontrol.Config `json:"config,omitempty"`
	Black       string              `json:"black"`
	White       string              `json:"white"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	cfg := s.defaultTC
	switch {
	case req.Config != nil:
		cfg = *req.Config
	case strings.TrimSpace(req.TimeControl) != "":
		parsed, err := timecontrol.ParseConfig(req.TimeControl)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cfg = parsed
	}
	snap, err := s.mgr.Create(r.Context(), cfg, req.Black, req.White)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mgr.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mgr.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mgr.Pause(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mgr.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type playerRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	p, err := decodePlayer(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.mgr.Move(r.Context(), r.PathValue("id"), p)
	if err != nil {
		// 만료 직후 착수는 종료된 대국 상태와 함께 돌려준다.
		if errors.Is(err, game.ErrEnded) && snap != nil {
			writeJSON(w, http.StatusConflict, snap)
			return
		}
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request) {
	p, err := decodePlayer(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.mgr.Resign(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.mgr.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	data, err := render.Card(snap.Game)
	if err != nil {
		obslog.L().Error("card_render_error", zap.String("game_id", snap.Game.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("settings store unavailable"))
		return
	}
	out, err := s.store.Load(r.Context(), r.PathValue("user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("settings store unavailable"))
		return
	}
	var in settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.store.Save(r.Context(), r.PathValue("user"), in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func decodePlayer(r *http.Request) (game.Player, error) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("decode request: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(req.Player)) {
	case string(game.Black):
		return game.Black, nil
	case string(game.White):
		return game.White, nil
	default:
		return "", fmt.Errorf("unknown player %q", req.Player)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrWrongTurn),
		errors.Is(err, game.ErrEnded),
		errors.Is(err, game.ErrNotWaiting),
		errors.Is(err, game.ErrNotRunning),
		errors.Is(err, game.ErrNotPaused):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obslog.L().Warn("response_encode_error", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
