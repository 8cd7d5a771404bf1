package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/domain"
	"github.com/vpepe/twentyq/internal/oracle"
)

// GameHandler exposes the turn policy over HTTP. Each game session owns its
// own agent, so persistent belief state never leaks across games.
type GameHandler struct {
	newAgent func() *agent.Agent
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// session serializes turns for one game: the belief manager mutates state
// between turns and must never run concurrently with itself.
type session struct {
	mu    sync.Mutex
	agent *agent.Agent
}

func NewGameHandler(newAgent func() *agent.Agent, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		newAgent: newAgent,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	h.mu.Lock()
	h.sessions[id] = &session{agent: h.newAgent()}
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

type turnRequest struct {
	History []domain.HistoryEntry `json:"history"`
}

type turnResponse struct {
	Action string `json:"action"`
}

func (h *GameHandler) Turn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	h.mu.RLock()
	sess, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess.mu.Lock()
	action, err := sess.agent.Act(r.Context(), req.History)
	sess.mu.Unlock()
	if err != nil {
		h.logger.Error("turn failed", zap.String("game_id", id.String()), zap.Error(err))
		if errors.Is(err, oracle.ErrRetriesExhausted) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to produce an action")
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{Action: action})
}

func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
