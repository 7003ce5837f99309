// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Store errors
	ErrDuplicateKey = errors.New("stage result already stored")
	ErrNilResult    = errors.New("stage result is nil")
	ErrKindMismatch = errors.New("stage result kind mismatch")

	// Pipeline errors
	ErrPipelineAlreadyRun = errors.New("pipeline already run")
	ErrNoTargets          = errors.New("at least one target is required")

	// Provider errors
	ErrUnknownProvider = errors.New("unknown provider")
)
