// Package handlers provides HTTP handlers for risk appetite operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/modules/personality"
	"github.com/aristath/quirk/internal/modules/risk"
)

// Handler handles risk appetite HTTP requests
type Handler struct {
	engine   *risk.Engine
	registry *personality.Registry
	log      zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(engine *risk.Engine, registry *personality.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		registry: registry,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

type appetiteRequest struct {
	Market      domain.MarketConditions   `json:"market"`
	Performance domain.PerformanceFactors `json:"performance"`
	Psychology  domain.PsychologicalState `json:"psychology"`
	Pair        string                    `json:"pair"`
	Hour        *int                      `json:"hour,omitempty"` // UTC; defaults to the current hour
}

// HandleCalculateAppetite handles POST /api/risk/{id}/appetite
func (h *Handler) HandleCalculateAppetite(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	var req appetiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	hour := time.Now().UTC().Hour()
	if req.Hour != nil {
		if *req.Hour < 0 || *req.Hour > 23 {
			http.Error(w, "hour must be 0-23", http.StatusBadRequest)
			return
		}
		hour = *req.Hour
	}

	result := h.engine.CalculateRiskAppetite(p, req.Market, req.Performance, req.Psychology, req.Pair, hour)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"hour":      hour,
		},
	})
}

type portfolioRequest struct {
	OpenPositions []risk.OpenPosition `json:"open_positions"`
	ProposedRisk  float64             `json:"proposed_risk"`
}

// HandlePortfolioConstraints handles POST /api/risk/{id}/portfolio
func (h *Handler) HandlePortfolioConstraints(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.registry.Get(id)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	check := h.engine.CalculatePortfolioRiskConstraints(p, req.OpenPositions, req.ProposedRisk)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": check,
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
