// internal/platform/registry/stage_registry.go
package registry

import (
	"fmt"
	"sync"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/core/ports"
	"reconpipe/internal/platform/config"
	"reconpipe/internal/platform/logx"
)

// StageRegistry gestiona el registro y construcción de stages.
// Registry + Factory: el orden de construcción es siempre domain.StageOrder,
// sea cual sea el orden de registro.
type StageRegistry struct {
	mu      sync.RWMutex
	entries map[domain.StageKind]entry
	logger  logx.Logger
}

// Predicate decide si un stage está habilitado para unos settings.
type Predicate func(s config.Settings) bool

// StageFactory crea una instancia del stage.
type StageFactory func(s config.Settings) (ports.Stage, error)

type entry struct {
	enabled Predicate
	factory StageFactory
}

// Always habilita el stage incondicionalmente.
func Always(config.Settings) bool { return true }

// NewStageRegistry crea un registry vacío.
func NewStageRegistry(logger logx.Logger) *StageRegistry {
	return &StageRegistry{
		entries: make(map[domain.StageKind]entry),
		logger:  logger.With("component", "stage-registry"),
	}
}

// Register registra la factory de kind con su predicado de habilitación.
func (r *StageRegistry) Register(kind domain.StageKind, enabled Predicate, factory StageFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !kind.IsValid() {
		return fmt.Errorf("unknown stage kind %q", kind)
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for stage %s", kind)
	}
	if enabled == nil {
		enabled = Always
	}
	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("stage %s is already registered", kind)
	}

	r.entries[kind] = entry{enabled: enabled, factory: factory}
	return nil
}

// Build evalúa cada predicado una vez y construye sólo los stages habilitados,
// en orden de ejecución. Un stage deshabilitado nunca se construye.
func (r *StageRegistry) Build(settings config.Settings) ([]ports.Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]ports.Stage, 0, len(r.entries))
	for _, kind := range domain.StageOrder {
		e, ok := r.entries[kind]
		if !ok {
			continue
		}
		if !e.enabled(settings) {
			r.logger.Debug("stage disabled", "stage", string(kind))
			continue
		}

		stage, err := e.factory(settings)
		if err != nil {
			return nil, fmt.Errorf("failed to build stage %s: %w", kind, err)
		}
		if stage.Kind() != kind {
			return nil, fmt.Errorf("factory for %s built a %s stage", kind, stage.Kind())
		}
		stages = append(stages, stage)
		r.logger.Debug("stage built", "stage", string(kind))
	}

	r.logger.Info("stages built", "count", len(stages), "registered", len(r.entries))
	return stages, nil
}

// List retorna los kinds registrados en orden de ejecución.
func (r *StageRegistry) List() []domain.StageKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.StageKind, 0, len(r.entries))
	for _, kind := range domain.StageOrder {
		if _, ok := r.entries[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// IsRegistered verifica si un stage está registrado.
func (r *StageRegistry) IsRegistered(kind domain.StageKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[kind]
	return exists
}
