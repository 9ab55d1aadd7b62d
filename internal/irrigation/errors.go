package irrigation

import (
	"errors"
	"fmt"
)

// Stage names the cycle component where a failure originated.
type Stage string

const (
	StageCurrentConditions Stage = "current-conditions"
	StageForecast          Stage = "forecast"
	StageFeatures          Stage = "feature-builder"
	StageInference         Stage = "inference"
	StageRecorder          Stage = "recorder"
	StageDispatcher        Stage = "dispatcher"
)

// Sentinel error kinds. Every non-fatal cycle failure wraps exactly one of
// these so the scheduler can log the taxonomy class alongside the stage.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDataQuality         = errors.New("data quality")
	ErrStorageWrite        = errors.New("storage write failure")
)

// CycleError tags a failure with the stage it came from. It is threaded back
// to the scheduler as a value; no stage panics across the cycle boundary.
type CycleError struct {
	Stage Stage
	Err   error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

func upstreamErr(stage Stage, err error) *CycleError {
	return &CycleError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)}
}

func dataQualityErr(stage Stage, format string, args ...any) *CycleError {
	return &CycleError{Stage: stage, Err: fmt.Errorf("%w: %s", ErrDataQuality, fmt.Sprintf(format, args...))}
}

func storageErr(stage Stage, err error) *CycleError {
	return &CycleError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrStorageWrite, err)}
}
