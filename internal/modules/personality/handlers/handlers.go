// Package handlers provides HTTP handlers for personality lifecycle
// operations.
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
	"github.com/aristath/quirk/internal/modules/variance"
)

// Handler handles personality HTTP requests
type Handler struct {
	generator *personality.Generator
	analyzer  *personality.Analyzer
	registry  *personality.Registry
	variance  *variance.ExecutionVarianceEngine
	evolution *evolution.Engine
	log       zerolog.Logger
}

// NewHandler creates a new personality handler
func NewHandler(
	generator *personality.Generator,
	analyzer *personality.Analyzer,
	registry *personality.Registry,
	varianceEngine *variance.ExecutionVarianceEngine,
	evolutionEngine *evolution.Engine,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		generator: generator,
		analyzer:  analyzer,
		registry:  registry,
		variance:  varianceEngine,
		evolution: evolutionEngine,
		log:       log.With().Str("handler", "personality").Logger(),
	}
}

type generateRequest struct {
	AccountID             string  `json:"account_id"`
	Archetype             string  `json:"archetype"`
	RandomizationStrength float64 `json:"randomization_strength"`
	EvolutionEnabled      bool    `json:"evolution_enabled"`
}

// HandleGenerate handles POST /api/personalities
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	p, err := h.generator.Generate(personality.GeneratorConfig{
		Archetype:             domain.Archetype(req.Archetype),
		RandomizationStrength: req.RandomizationStrength,
		EvolutionEnabled:      req.EvolutionEnabled,
	}, req.AccountID)
	if err != nil {
		h.log.Error().Err(err).Str("archetype", req.Archetype).Msg("Failed to generate personality")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.registry.Add(p)
	profile := h.variance.InitializePersonality(p)
	h.evolution.Register(p.ID)

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"personality": p,
			"profile":     profile,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type diverseRequest struct {
	Count      int      `json:"count"`
	AccountIDs []string `json:"account_ids"`
}

// HandleGenerateDiverse handles POST /api/personalities/diverse
func (h *Handler) HandleGenerateDiverse(w http.ResponseWriter, r *http.Request) {
	var req diverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	personalities, err := h.generator.GenerateDiverse(req.Count, req.AccountIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, p := range personalities {
		h.registry.Add(p)
		h.variance.InitializePersonality(p)
		h.evolution.Register(p.ID)
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"personalities": personalities,
			"count":         len(personalities),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleList handles GET /api/personalities
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"ids":   h.registry.IDs(),
			"count": h.registry.Len(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGet handles GET /api/personalities/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"personality": p,
			"violations":  personality.Validate(p),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDelete handles DELETE /api/personalities/{id}. The reset cascades
// through every engine; nothing dangles.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.registry.Get(id); err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.variance.ResetPersonality(id)
	h.evolution.Reset(id)
	h.registry.Remove(id)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"deleted": id,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetTraits handles GET /api/personalities/{id}/traits
func (h *Handler) HandleGetTraits(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"traits":            p.Traits,
			"categories":        h.analyzer.CategorizeTraits(p.Traits),
			"tendencies":        h.analyzer.AnalyzeBehavioralTendencies(p.Traits),
			"session_modifiers": h.analyzer.CalculateSessionModifiers(p.Traits),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) notFoundOrError(w http.ResponseWriter, err error) {
	if errors.Is(err, personality.ErrNotFound) {
		http.Error(w, "Personality not found", http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("Personality lookup failed")
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
