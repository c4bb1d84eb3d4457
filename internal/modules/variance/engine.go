package variance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/store"
)

// DefaultAccountBalance is assumed when the engine is constructed without a
// configured balance.
const DefaultAccountBalance = 10000

type historyState struct {
	records *store.Ring[*domain.ExecutionVariance]
}

// ExecutionVarianceEngine coordinates the six sub-engines for every signal.
// A personality must be initialized before any signal is processed; an
// unknown id fails fast with ErrPersonalityNotRegistered rather than
// falling back to defaults.
type ExecutionVarianceEngine struct {
	timing     *TimingEngine
	sizing     *SizingEngine
	level      *LevelEngine
	skip       *SkipEngine
	microDelay *MicroDelayEngine
	weekend    *WeekendBehaviorEngine

	profiles  *store.Keyed[Profile]
	histories *store.Keyed[*historyState]

	defaultBalance float64

	events *events.Manager
	log    zerolog.Logger
	now    func() time.Time
}

// NewExecutionVarianceEngine wires the orchestrator over its sub-engines.
func NewExecutionVarianceEngine(
	timing *TimingEngine,
	sizing *SizingEngine,
	level *LevelEngine,
	skip *SkipEngine,
	microDelay *MicroDelayEngine,
	weekend *WeekendBehaviorEngine,
	eventManager *events.Manager,
	defaultBalance float64,
	log zerolog.Logger,
) *ExecutionVarianceEngine {
	if defaultBalance <= 0 {
		defaultBalance = DefaultAccountBalance
	}
	return &ExecutionVarianceEngine{
		timing:         timing,
		sizing:         sizing,
		level:          level,
		skip:           skip,
		microDelay:     microDelay,
		weekend:        weekend,
		profiles:       store.NewKeyed[Profile](),
		histories:      store.NewKeyed[*historyState](),
		defaultBalance: defaultBalance,
		events:         eventManager,
		log:            log.With().Str("component", "variance_engine").Logger(),
		now:            time.Now,
	}
}

// InitializePersonality derives the variance profile from the personality's
// traits and registers it with every sub-engine. Re-initializing an already
// known personality replaces its profile and starts a fresh history.
func (e *ExecutionVarianceEngine) InitializePersonality(p *domain.TradingPersonality) Profile {
	profile := DeriveProfile(p, e.now())

	e.timing.Register(p.ID, profile.Timing)
	e.sizing.Register(p.ID, profile.Sizing)
	e.level.Register(p.ID, profile.Level)
	e.skip.Register(p.ID, profile.Skip)
	e.microDelay.Register(p.ID, profile.MicroDelay)
	e.weekend.Register(p.ID, profile.Weekend)

	e.profiles.Put(p.ID, profile)
	e.histories.Put(p.ID, &historyState{
		records: store.NewRing[*domain.ExecutionVariance](domain.ExecutionHistoryCap),
	})

	e.log.Info().
		Str("personality_id", p.ID).
		Str("archetype", string(p.Archetype)).
		Msg("Personality initialized")

	e.events.EmitTyped("variance", &events.PersonalityRegisteredData{
		PersonalityID: p.ID,
		AccountID:     p.AccountID,
		Archetype:     string(p.Archetype),
	})

	return profile
}

// ApplyVariance runs a signal through the skip gate and, if it survives,
// through the four variance aspects. A skipped signal returns (nil, nil);
// callers treat a nil record as "do not trade". accountBalance at or below
// zero falls back to the engine's configured default balance.
func (e *ExecutionVarianceEngine) ApplyVariance(
	ctx context.Context,
	signal domain.Signal,
	market domain.MarketConditions,
	accountBalance float64,
) (*domain.ExecutionVariance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := signal.PersonalityID
	if !e.profiles.Has(id) {
		return nil, fmt.Errorf("variance engine: %w: %s", ErrPersonalityNotRegistered, id)
	}
	if accountBalance <= 0 {
		accountBalance = e.defaultBalance
	}

	skipResult, err := e.skip.ShouldSkipSignal(id, signal, market)
	if err != nil {
		return nil, err
	}
	if skipResult.Skip {
		e.log.Info().
			Str("personality_id", id).
			Str("signal_id", signal.ID).
			Str("symbol", signal.Symbol).
			Float64("probability", skipResult.Probability).
			Msg("Signal skipped")
		e.events.EmitTyped("variance", &events.SignalSkippedData{
			PersonalityID: id,
			SignalID:      signal.ID,
			Symbol:        signal.Symbol,
			Probability:   skipResult.Probability,
			Reason:        skipResult.Reason,
		})
		return nil, nil
	}

	size := signal.Size
	if size <= 0 {
		// No size on the signal: derive a nominal lot size from the
		// account balance at one standard lot per 100k of equity.
		size = accountBalance / 100000
	}

	var (
		wg         sync.WaitGroup
		timingRes  domain.TimingResult
		sizingRes  domain.SizingResult
		stopRes    domain.LevelResult
		targetRes  domain.LevelResult
		microDelay time.Duration

		timingErr, sizingErr, stopErr, targetErr, microErr error
	)

	// The four aspects are independent draws over immutable profile
	// parameters, safe to compute concurrently.
	wg.Add(4)
	go func() {
		defer wg.Done()
		timingRes, timingErr = e.timing.CalculateEntryDelay(id, signal, market)
	}()
	go func() {
		defer wg.Done()
		sizingRes, sizingErr = e.sizing.AdjustSize(id, size)
	}()
	go func() {
		defer wg.Done()
		stopRes, stopErr = e.level.AdjustLevel(id, signal, market, AspectStopLoss, signal.StopLoss)
	}()
	go func() {
		defer wg.Done()
		targetRes, targetErr = e.level.AdjustLevel(id, signal, market, AspectTakeProfit, signal.TakeProfit)
	}()
	wg.Wait()

	for _, aspectErr := range []error{timingErr, sizingErr, stopErr, targetErr} {
		if aspectErr != nil {
			return nil, aspectErr
		}
	}

	microDelay, microErr = e.microDelay.CalculateDelay(id, ActionPlaceOrder, market)
	if microErr != nil {
		return nil, microErr
	}

	record := &domain.ExecutionVariance{
		ID:            uuid.New().String(),
		PersonalityID: id,
		Signal:        signal,
		EntryTiming:   timingRes,
		PositionSize:  sizingRes,
		StopLoss:      stopRes,
		TakeProfit:    targetRes,
		MicroDelay:    microDelay,
		CreatedAt:     e.now(),
	}

	e.histories.Update(id, func(h *historyState) *historyState {
		h.records.Append(record)
		return h
	})

	e.log.Debug().
		Str("personality_id", id).
		Str("signal_id", signal.ID).
		Dur("entry_delay", timingRes.Delay).
		Float64("size_deviation", sizingRes.Deviation).
		Dur("micro_delay", microDelay).
		Msg("Variance applied")

	e.events.EmitTyped("variance", &events.VarianceAppliedData{
		PersonalityID: id,
		SignalID:      signal.ID,
		Symbol:        signal.Symbol,
		EntryDelay:    timingRes.Delay,
		SizeDeviation: sizingRes.Deviation,
		MicroDelay:    microDelay,
	})

	return record, nil
}

// ApplyEntryDelay blocks for the record's computed entry delay plus micro
// delay, honoring context cancellation.
func (e *ExecutionVarianceEngine) ApplyEntryDelay(ctx context.Context, record *domain.ExecutionVariance) error {
	return e.microDelay.ApplyDelay(ctx, record.EntryTiming.Delay+record.MicroDelay)
}

// RecordExecutionResult writes the execution outcome back onto the stored
// record.
func (e *ExecutionVarianceEngine) RecordExecutionResult(
	personalityID, recordID string,
	actualEntryTime time.Time,
	slippagePips float64,
	success bool,
) error {
	found := false
	known := e.histories.Update(personalityID, func(h *historyState) *historyState {
		for _, r := range h.records.Items() {
			if r.ID == recordID {
				r.ActualEntryTime = actualEntryTime
				r.SlippagePips = slippagePips
				r.Success = success
				r.OutcomeRecorded = true
				found = true
				break
			}
		}
		return h
	})
	if !known {
		return fmt.Errorf("variance engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	if !found {
		return fmt.Errorf("variance engine: %w: %s", ErrRecordNotFound, recordID)
	}

	e.events.EmitTyped("variance", &events.ExecutionRecordedData{
		PersonalityID: personalityID,
		RecordID:      recordID,
		SlippagePips:  slippagePips,
		Success:       success,
	})
	return nil
}

// History returns up to limit most recent variance records, newest last.
// limit <= 0 returns the full retained history.
func (e *ExecutionVarianceEngine) History(personalityID string, limit int) ([]*domain.ExecutionVariance, error) {
	h, ok := e.histories.Get(personalityID)
	if !ok {
		return nil, fmt.Errorf("variance engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	records := h.records.Items()
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Profile returns the cached variance profile for the personality.
func (e *ExecutionVarianceEngine) Profile(personalityID string) (Profile, error) {
	p, ok := e.profiles.Get(personalityID)
	if !ok {
		return Profile{}, fmt.Errorf("variance engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return p, nil
}

// SkipStats exposes the skip engine's counters for the personality.
func (e *ExecutionVarianceEngine) SkipStats(personalityID string) (SkipStats, error) {
	return e.skip.Stats(personalityID)
}

// WeekendDecision evaluates Sunday-open participation for the personality.
func (e *ExecutionVarianceEngine) WeekendDecision(personalityID string, market domain.MarketConditions) (WeekendDecision, error) {
	return e.weekend.EvaluateSundayOpen(personalityID, market)
}

// ResetPersonality removes every trace of the personality from all six
// sub-engines and the orchestrator. Resetting an unknown id is a no-op.
func (e *ExecutionVarianceEngine) ResetPersonality(personalityID string) {
	e.timing.Reset(personalityID)
	e.sizing.Reset(personalityID)
	e.level.Reset(personalityID)
	e.skip.Reset(personalityID)
	e.microDelay.Reset(personalityID)
	e.weekend.Reset(personalityID)
	e.profiles.Delete(personalityID)
	e.histories.Delete(personalityID)

	e.log.Info().Str("personality_id", personalityID).Msg("Personality reset")
	e.events.EmitTyped("variance", &events.PersonalityResetData{PersonalityID: personalityID})
}

// Personalities lists the ids currently registered with the orchestrator.
func (e *ExecutionVarianceEngine) Personalities() []string {
	return e.profiles.Keys()
}
