package variance

import "errors"

// ErrPersonalityNotRegistered is returned by every per-id operation when
// the personality has not been registered with the engine. Engines never
// fall back to a silent default; that would corrupt variance statistics.
var ErrPersonalityNotRegistered = errors.New("personality not registered")

// ErrRecordNotFound is returned when an execution write-back references an
// unknown variance record.
var ErrRecordNotFound = errors.New("execution variance record not found")
