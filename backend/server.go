package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type server struct {
	controller *GameController
	hub        *Hub
	hintHub    *Hub
	limiter    *moveLimiter
}

func newServer(controller *GameController, hub, hintHub *Hub) *server {
	return &server{
		controller: controller,
		hub:        hub,
		hintHub:    hintHub,
		limiter:    newMoveLimiter(configLimit),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
	})
	r.Post("/api/start", s.handleStart)
	r.Post("/api/stop", s.handleStop)
	r.Post("/api/settings", s.handleSettings)
	r.With(s.limiter.Middleware).Post("/api/move", s.handleMove)
	r.With(s.limiter.Middleware).Post("/api/undo", s.handleUndo)
	r.Get("/api/score", s.handleScore)
	r.Get("/api/hint", s.handleHint)
	r.Get("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentCacheStatus())
	})
	r.Post("/api/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		sharedCache().Clear()
		writeJSON(w, http.StatusOK, currentCacheStatus())
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		greeting := wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(s.controller))}
		serveHubClient(s.hub, w, r, &greeting, func(client *Client, msg wsMessage) {
			switch msg.Type {
			case "request_status":
				client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(s.controller))})
			case "move":
				var move apiMove
				if err := json.Unmarshal(msg.Payload, &move); err == nil {
					s.controller.OnCellClicked(move.Row, move.Col)
				}
			}
		})
	})
	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		serveHintWS(s.hintHub, w, r)
	})
	return r
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Settings GameSettingsDTO `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	settings := settingsFromDTO(payload.Settings, SettingsFromConfig(GetConfig()))
	if err := s.controller.StartGame(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := controllerStatus(s.controller)
	s.hub.Publish("reset", status)
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(s.controller.Settings()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := controllerStatus(s.controller)
	s.hub.Publish("reset", status)
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Settings *GameSettingsDTO `json:"settings"`
		Config   *Config          `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.Config != nil {
		if err := applyConfig(s.controller, *payload.Config); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if payload.Settings != nil {
		settings := settingsFromDTO(*payload.Settings, s.controller.Settings())
		if err := s.controller.UpdateSettings(settings, false); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	s.hub.Publish("settings", settingsPayload{
		Settings: controllerSettingsDTO(s.controller.Settings()),
		Config:   GetConfig(),
	})
	writeJSON(w, http.StatusOK, controllerStatus(s.controller))
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload apiMove
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	applied, errMsg := s.controller.ApplyHumanMove(engine.Move{Row: payload.Row, Col: payload.Col})
	if !applied {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	s.publishLatest()
	writeJSON(w, http.StatusOK, controllerStatus(s.controller))
}

func (s *server) handleUndo(w http.ResponseWriter, r *http.Request) {
	ok, reason := s.controller.Undo()
	if !ok {
		writeError(w, http.StatusConflict, reason)
		return
	}
	status := controllerStatus(s.controller)
	s.hub.Publish("reset", status)
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleScore(w http.ResponseWriter, r *http.Request) {
	state := s.controller.State()
	settings := s.controller.Settings()
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:       state.Score,
		Fingerprint: formatFingerprint(state.Fingerprint),
		Stones:      s.controller.History().Size(),
		NextPlayer:  playerToInt(state.ToMove),
		BlackDepth:  settings.BlackDepth,
		WhiteDepth:  settings.WhiteDepth,
	})
}

func (s *server) handleHint(w http.ResponseWriter, r *http.Request) {
	cfg := GetConfig()
	state := s.controller.State()
	depth := s.controller.Settings().DepthFor(otherPlayer(state.ToMove))
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid depth")
			return
		}
		depth = parsed
	}
	if depth > cfg.AiMaxDepth {
		depth = cfg.AiMaxDepth
	}
	if state.IsOver() {
		writeError(w, http.StatusConflict, "game is over")
		return
	}
	res, err := s.controller.Hint(r.Context(), depth)
	if errors.Is(err, engine.ErrNoMoves) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	history := s.controller.History()
	writeJSON(w, http.StatusOK, hintResponse{
		Hint:  hintFromResult(res, state.ToMove, history.Size(), state.Fingerprint),
		Stats: res.Stats,
	})
}

// publishLatest pushes the newest history entry and the status to clients.
func (s *server) publishLatest() {
	if entry, ok := s.controller.LatestHistoryEntry(); ok {
		s.hub.Publish("history", historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
	}
	s.hub.Publish("status", controllerStatus(s.controller))
}

// applyConfig stores cfg and moves both sides to its search depth.
func applyConfig(controller *GameController, cfg Config) error {
	if err := configStore.Update(cfg); err != nil {
		return err
	}
	settings := controller.Settings()
	settings.BlackDepth = cfg.AiDepth
	settings.WhiteDepth = cfg.AiDepth
	return controller.UpdateSettings(settings, false)
}
