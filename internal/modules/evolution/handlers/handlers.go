// Package handlers provides HTTP handlers for personality evolution operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/modules/evolution"
	"github.com/aristath/quirk/internal/modules/personality"
)

// Handler handles evolution HTTP requests
type Handler struct {
	engine   *evolution.Engine
	registry *personality.Registry
	log      zerolog.Logger
}

// NewHandler creates a new evolution handler
func NewHandler(engine *evolution.Engine, registry *personality.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		registry: registry,
		log:      log.With().Str("handler", "evolution").Logger(),
	}
}

// HandleProcess handles POST /api/evolution/{id}/process. The body is a
// trading activity snapshot; the tracked personality is mutated in place
// and the evolution events that fired are returned.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request, id string) {
	var activity domain.TradingActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if activity.SnapshotAt.IsZero() {
		activity.SnapshotAt = time.Now().UTC()
	}

	var fired []domain.EvolutionEvent
	var procErr error
	err := h.registry.Mutate(id, func(p *domain.TradingPersonality) {
		fired, procErr = h.engine.ProcessEvolution(p, activity)
	})
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}
	if procErr != nil {
		h.notFoundOrError(w, procErr)
		return
	}

	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"events":      fired,
			"personality": p,
		},
		"metadata": map[string]interface{}{
			"timestamp":   time.Now().Format(time.RFC3339),
			"event_count": len(fired),
		},
	})
}

// HandleGetHistory handles GET /api/evolution/{id}/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request, id string) {
	history, err := h.engine.History(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": history,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(history),
		},
	})
}

// HandleGetMilestones handles GET /api/evolution/{id}/milestones
func (h *Handler) HandleGetMilestones(w http.ResponseWriter, r *http.Request, id string) {
	achieved, err := h.engine.AchievedMilestones(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"achieved": achieved,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandlePredictions handles POST /api/evolution/{id}/predictions. The body
// is the current trading activity snapshot the projection starts from.
func (h *Handler) HandlePredictions(w http.ResponseWriter, r *http.Request, id string) {
	var activity domain.TradingActivity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	prediction, err := h.engine.GenerateEvolutionPredictions(p, activity)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": prediction,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type simulateRequest struct {
	Days         int     `json:"days"`
	TradesPerDay float64 `json:"trades_per_day"`
	WinRate      float64 `json:"win_rate"`
}

// HandleSimulate handles POST /api/evolution/{id}/simulate. The simulation
// runs on a copy of the personality and never touches tracked state.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request, id string) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Days <= 0 || req.Days > 3650 {
		http.Error(w, "days must be 1-3650", http.StatusBadRequest)
		return
	}
	if req.WinRate < 0 || req.WinRate > 1 {
		http.Error(w, "win_rate must be 0-1", http.StatusBadRequest)
		return
	}

	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	steps := h.engine.SimulateEvolutionOverTime(p, req.Days, req.TradesPerDay, req.WinRate)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": steps,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"days":      req.Days,
		},
	})
}

func (h *Handler) notFoundOrError(w http.ResponseWriter, err error) {
	if errors.Is(err, personality.ErrNotFound) || errors.Is(err, evolution.ErrPersonalityNotTracked) {
		http.Error(w, "Personality not found", http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("Evolution request failed")
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
