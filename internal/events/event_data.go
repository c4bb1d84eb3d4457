package events

import "time"

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// PersonalityRegisteredData contains data for PersonalityRegistered events
type PersonalityRegisteredData struct {
	PersonalityID string `json:"personality_id"`
	AccountID     string `json:"account_id"`
	Archetype     string `json:"archetype"`
}

// EventType returns the event type for PersonalityRegisteredData
func (d *PersonalityRegisteredData) EventType() EventType {
	return PersonalityRegistered
}

// PersonalityResetData contains data for PersonalityReset events
type PersonalityResetData struct {
	PersonalityID string `json:"personality_id"`
}

// EventType returns the event type for PersonalityResetData
func (d *PersonalityResetData) EventType() EventType {
	return PersonalityReset
}

// VarianceAppliedData contains data for VarianceApplied events
type VarianceAppliedData struct {
	PersonalityID string        `json:"personality_id"`
	SignalID      string        `json:"signal_id"`
	Symbol        string        `json:"symbol"`
	EntryDelay    time.Duration `json:"entry_delay"`
	SizeDeviation float64       `json:"size_deviation"`
	MicroDelay    time.Duration `json:"micro_delay"`
}

// EventType returns the event type for VarianceAppliedData
func (d *VarianceAppliedData) EventType() EventType {
	return VarianceApplied
}

// SignalSkippedData contains data for SignalSkipped events
type SignalSkippedData struct {
	PersonalityID string  `json:"personality_id"`
	SignalID      string  `json:"signal_id"`
	Symbol        string  `json:"symbol"`
	Probability   float64 `json:"probability"`
	Reason        string  `json:"reason"`
}

// EventType returns the event type for SignalSkippedData
func (d *SignalSkippedData) EventType() EventType {
	return SignalSkipped
}

// ExecutionRecordedData contains data for ExecutionRecorded events
type ExecutionRecordedData struct {
	PersonalityID string  `json:"personality_id"`
	RecordID      string  `json:"record_id"`
	SlippagePips  float64 `json:"slippage_pips"`
	Success       bool    `json:"success"`
}

// EventType returns the event type for ExecutionRecordedData
func (d *ExecutionRecordedData) EventType() EventType {
	return ExecutionRecorded
}

// PersonalityEvolvedData contains data for PersonalityEvolved events
type PersonalityEvolvedData struct {
	PersonalityID  string   `json:"personality_id"`
	EventTypes     []string `json:"event_types"`
	EvolutionScore float64  `json:"evolution_score"`
}

// EventType returns the event type for PersonalityEvolvedData
func (d *PersonalityEvolvedData) EventType() EventType {
	return PersonalityEvolved
}

// ValidationCompletedData contains data for ValidationCompleted events
type ValidationCompletedData struct {
	PersonalityID string `json:"personality_id"`
	IsValid       bool   `json:"is_valid"`
	IssueCount    int    `json:"issue_count"`
}

// EventType returns the event type for ValidationCompletedData
func (d *ValidationCompletedData) EventType() EventType {
	return ValidationCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string            `json:"error"`
	Context map[string]string `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
