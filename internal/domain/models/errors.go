package models

import "errors"

// Failure taxonomy for the forecast pipeline. Wrap these with context via
// fmt.Errorf("...: %w", err) and match with errors.Is at the boundaries.
var (
	// ErrInsufficientData: candle or sample count below what an indicator
	// window or the stratified split requires.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrSchemaMismatch: feature columns disagree with an artifact's
	// recorded schema.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrUnknownModelKind: classifier kind outside the supported set.
	ErrUnknownModelKind = errors.New("unknown model kind")

	// ErrArtifactNotFound: no artifact stored or bound under the given key.
	ErrArtifactNotFound = errors.New("artifact not found")
)
