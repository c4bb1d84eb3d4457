// Package handlers provides HTTP handlers for signal variance operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/modules/variance"
)

// Handler handles variance HTTP requests
type Handler struct {
	engine *variance.ExecutionVarianceEngine
	log    zerolog.Logger
}

// NewHandler creates a new variance handler
func NewHandler(engine *variance.ExecutionVarianceEngine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "variance").Logger(),
	}
}

type applyRequest struct {
	Signal         domain.Signal           `json:"signal"`
	Market         domain.MarketConditions `json:"market"`
	AccountBalance float64                 `json:"account_balance"`
}

// HandleApplyVariance handles POST /api/variance/apply. A skipped signal
// returns 200 with skipped=true and no record.
func (h *Handler) HandleApplyVariance(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Signal.PersonalityID == "" {
		http.Error(w, "signal.personality_id is required", http.StatusBadRequest)
		return
	}

	record, err := h.engine.ApplyVariance(r.Context(), req.Signal, req.Market, req.AccountBalance)
	if err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"skipped": record == nil,
			"record":  record,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type outcomeRequest struct {
	ActualEntryTime time.Time `json:"actual_entry_time"`
	SlippagePips    float64   `json:"slippage_pips"`
	Success         bool      `json:"success"`
}

// HandleRecordOutcome handles POST /api/variance/{id}/executions/{recordID}
func (h *Handler) HandleRecordOutcome(w http.ResponseWriter, r *http.Request, id, recordID string) {
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engine.RecordExecutionResult(id, recordID, req.ActualEntryTime, req.SlippagePips, req.Success); err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"record_id": recordID,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetHistory handles GET /api/variance/{id}/executions.
// ?limit=N bounds the result; ?format=msgpack returns a compact binary
// export for offline analysis.
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request, id string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.engine.History(id, limit)
	if err != nil {
		h.engineError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "msgpack" {
		payload, err := msgpack.Marshal(records)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode history export")
			http.Error(w, "Failed to encode export", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(payload); err != nil {
			h.log.Error().Err(err).Msg("Failed to write history export")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"records": records,
			"count":   len(records),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetMetrics handles GET /api/variance/{id}/metrics with
// optional RFC3339 start/end query params (default: trailing 24h).
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request, id string) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "start must be RFC3339", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "end must be RFC3339", http.StatusBadRequest)
			return
		}
		end = parsed
	}

	metrics, err := h.engine.CalculateVarianceMetrics(id, start, end)
	if err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": metrics,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetProfile handles GET /api/variance/{id}/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.engine.Profile(id)
	if err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": profile,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleValidate handles POST /api/variance/{id}/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.engine.ValidateVarianceEngine(id)
	if err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type weekendRequest struct {
	Market domain.MarketConditions `json:"market"`
}

// HandleWeekendDecision handles POST /api/variance/{id}/weekend
func (h *Handler) HandleWeekendDecision(w http.ResponseWriter, r *http.Request, id string) {
	var req weekendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	decision, err := h.engine.WeekendDecision(id, req.Market)
	if err != nil {
		h.engineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": decision,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, variance.ErrPersonalityNotRegistered):
		http.Error(w, "Personality not registered", http.StatusNotFound)
	case errors.Is(err, variance.ErrRecordNotFound):
		http.Error(w, "Execution record not found", http.StatusNotFound)
	default:
		h.log.Error().Err(err).Msg("Variance engine error")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
