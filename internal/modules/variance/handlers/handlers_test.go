package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/modules/personality"
	"github.com/aristath/quirk/internal/modules/variance"
	"github.com/aristath/quirk/internal/rng"
)

func newTestHandler(t *testing.T) (*Handler, *domain.TradingPersonality) {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)
	random := rng.NewSeeded(42)

	engine := variance.NewExecutionVarianceEngine(
		variance.NewTimingEngine(random, logger),
		variance.NewSizingEngine(random, logger),
		variance.NewLevelEngine(random, logger),
		variance.NewSkipEngine(random, logger),
		variance.NewMicroDelayEngine(random, nil, logger),
		variance.NewWeekendBehaviorEngine(random, logger),
		events.NewManager(events.NewBus(logger), logger),
		variance.DefaultAccountBalance,
		logger,
	)

	generator := personality.NewGenerator(random, logger)
	p, err := generator.Generate(personality.GeneratorConfig{
		Archetype: domain.ArchetypeBalancedAllrounder,
	}, "acct-1")
	require.NoError(t, err)
	engine.InitializePersonality(p)

	return NewHandler(engine, logger), p
}

func calmMarket() domain.MarketConditions {
	return domain.MarketConditions{
		Volatility: 1.0,
		SpreadPips: 1.2,
		Liquidity:  domain.LiquidityHigh,
		Session:    domain.SessionLondon,
	}
}

func testSignal(personalityID string) domain.Signal {
	return domain.Signal{
		ID:            "sig-1",
		Symbol:        "EURUSD",
		Direction:     domain.DirectionBuy,
		Size:          1.0,
		EntryPrice:    1.0850,
		StopLoss:      1.0820,
		TakeProfit:    1.0910,
		Confidence:    0.7,
		GeneratedAt:   time.Now(),
		AccountID:     "acct-1",
		PersonalityID: personalityID,
	}
}

// applyUntilRecord applies variance until a signal survives the skip gate.
func applyUntilRecord(t *testing.T, h *Handler, p *domain.TradingPersonality) *domain.ExecutionVariance {
	t.Helper()
	for i := 0; i < 50; i++ {
		record, err := h.engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
		require.NoError(t, err)
		if record != nil {
			return record
		}
	}
	t.Fatal("no signal survived the skip gate in 50 attempts")
	return nil
}

func postJSON(t *testing.T, body interface{}) *bytes.Buffer {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewBuffer(raw)
}

func TestHandleApplyVariance(t *testing.T) {
	handler, p := newTestHandler(t)

	tests := []struct {
		name           string
		body           interface{}
		rawBody        string
		expectedStatus int
		validate       func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			body: map[string]interface{}{
				"signal":          testSignal(p.ID),
				"market":          calmMarket(),
				"account_balance": 10000,
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)

				data := response["data"].(map[string]interface{})
				assert.Contains(t, data, "skipped")
				if data["skipped"] == false {
					record := data["record"].(map[string]interface{})
					assert.Equal(t, p.ID, record["personality_id"])
					assert.NotEmpty(t, record["id"])
				}
			},
		},
		{
			name: "unregistered personality",
			body: map[string]interface{}{
				"signal": testSignal("ghost"),
				"market": calmMarket(),
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "missing personality id",
			body: map[string]interface{}{
				"signal": domain.Signal{Symbol: "EURUSD"},
				"market": calmMarket(),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			rawBody:        "{not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/variance/apply", bytes.NewBufferString(tt.rawBody))
			} else {
				req = httptest.NewRequest("POST", "/api/variance/apply", postJSON(t, tt.body))
			}
			w := httptest.NewRecorder()

			handler.HandleApplyVariance(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, w)
			}
		})
	}
}

func TestHandleRecordOutcome(t *testing.T) {
	handler, p := newTestHandler(t)
	record := applyUntilRecord(t, handler, p)

	body := postJSON(t, map[string]interface{}{
		"actual_entry_time": time.Now(),
		"slippage_pips":     0.4,
		"success":           true,
	})
	req := httptest.NewRequest("POST", "/api/variance/"+p.ID+"/executions/"+record.ID, body)
	w := httptest.NewRecorder()

	handler.HandleRecordOutcome(w, req, p.ID, record.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unknown record id
	body = postJSON(t, map[string]interface{}{"success": false})
	req = httptest.NewRequest("POST", "/api/variance/"+p.ID+"/executions/ghost", body)
	w = httptest.NewRecorder()

	handler.HandleRecordOutcome(w, req, p.ID, "ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetHistory(t *testing.T) {
	handler, p := newTestHandler(t)
	applyUntilRecord(t, handler, p)

	tests := []struct {
		name           string
		id             string
		query          string
		expectedStatus int
		validate       func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "json history",
			id:             p.ID,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)

				data := response["data"].(map[string]interface{})
				assert.GreaterOrEqual(t, data["count"].(float64), float64(1))
			},
		},
		{
			name:           "msgpack export",
			id:             p.ID,
			query:          "?format=msgpack",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "application/msgpack", w.Header().Get("Content-Type"))

				var records []domain.ExecutionVariance
				err := msgpack.Unmarshal(w.Body.Bytes(), &records)
				require.NoError(t, err)
				assert.NotEmpty(t, records)
				assert.Equal(t, p.ID, records[0].PersonalityID)
			},
		},
		{
			name:           "invalid limit",
			id:             p.ID,
			query:          "?limit=-3",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown personality",
			id:             "ghost",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/variance/"+tt.id+"/executions"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.HandleGetHistory(w, req, tt.id)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validate != nil {
				tt.validate(t, w)
			}
		})
	}
}

func TestHandleGetMetrics(t *testing.T) {
	handler, p := newTestHandler(t)
	applyUntilRecord(t, handler, p)

	req := httptest.NewRequest("GET", "/api/variance/"+p.ID+"/metrics", nil)
	w := httptest.NewRecorder()

	handler.HandleGetMetrics(w, req, p.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, p.ID, data["personality_id"])
	assert.GreaterOrEqual(t, data["signal_count"].(float64), float64(1))

	// Bad window param
	req = httptest.NewRequest("GET", "/api/variance/"+p.ID+"/metrics?start=yesterday", nil)
	w = httptest.NewRecorder()
	handler.HandleGetMetrics(w, req, p.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetProfile(t *testing.T) {
	handler, p := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/variance/"+p.ID+"/profile", nil)
	w := httptest.NewRecorder()

	handler.HandleGetProfile(w, req, p.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotNil(t, response["data"])

	w = httptest.NewRecorder()
	handler.HandleGetProfile(w, req, "ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleValidate(t *testing.T) {
	handler, p := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/variance/"+p.ID+"/validate", nil)
	w := httptest.NewRecorder()

	handler.HandleValidate(w, req, p.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, p.ID, data["personality_id"])
	assert.Contains(t, data, "is_valid")
}

func TestHandleWeekendDecision(t *testing.T) {
	handler, p := newTestHandler(t)

	market := calmMarket()
	market.GapPips = 30

	req := httptest.NewRequest("POST", "/api/variance/"+p.ID+"/weekend", postJSON(t, map[string]interface{}{
		"market": market,
	}))
	w := httptest.NewRecorder()

	handler.HandleWeekendDecision(w, req, p.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Contains(t, data, "trade")
	assert.Contains(t, data, "probability")
}
