package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/modules/variance"
	"github.com/aristath/quirk/internal/sysload"
)

// SystemHandlers serves system-level endpoints (health, load).
type SystemHandlers struct {
	varianceEngine *variance.ExecutionVarianceEngine
	sysLoad        *sysload.CPUProvider
	startedAt      time.Time
	log            zerolog.Logger
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(
	varianceEngine *variance.ExecutionVarianceEngine,
	sysLoad *sysload.CPUProvider,
	startedAt time.Time,
	log zerolog.Logger,
) *SystemHandlers {
	return &SystemHandlers{
		varianceEngine: varianceEngine,
		sysLoad:        sysLoad,
		startedAt:      startedAt,
		log:            log.With().Str("component", "system_handlers").Logger(),
	}
}

// HandleHealth handles GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.sysLoad.Sample()

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
			"cpu_percent":    snap.CPUPercent,
			"ram_percent":    snap.RAMPercent,
			"goroutines":     runtime.NumGoroutine(),
			"personalities":  len(h.varianceEngine.Personalities()),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}
