// internal/core/usecases/pipeline.go
package usecases

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/core/ports"
	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/ui"
)

type pipelineState int

const (
	stateIdle pipelineState = iota
	stateRunning
	stateCompleted
)

// Pipeline ejecuta una lista fija de stages, uno tras otro, sobre un único
// ResultStore. Cada Pipeline se usa una sola vez.
type Pipeline struct {
	stages    []ports.Stage
	logger    logx.Logger
	presenter ui.Presenter

	mu    sync.Mutex
	state pipelineState
}

// PipelineOptions configura el pipeline.
type PipelineOptions struct {
	Stages    []ports.Stage
	Logger    logx.Logger
	Presenter ui.Presenter
}

// NewPipeline crea una nueva instancia del pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	if opts.Presenter == nil {
		opts.Presenter = ui.NewNoopPresenter()
	}

	return &Pipeline{
		stages:    opts.Stages,
		logger:    opts.Logger.With("component", "pipeline"),
		presenter: opts.Presenter,
	}
}

// StageExecution registra qué pasó con un stage.
type StageExecution struct {
	Kind     domain.StageKind
	Status   domain.StageStatus
	Duration time.Duration
	Stored   bool // resultado no vacío escrito en el store
	Entries  int
	Err      error
}

// StageFailure es un fallo registrado: {stage, message}.
type StageFailure struct {
	Stage   domain.StageKind `json:"stage"`
	Message string           `json:"message"`
}

// RunOutcome es el resultado de Pipeline.Run.
type RunOutcome struct {
	Store      *domain.ResultStore
	Executions []StageExecution
	Failures   []StageFailure
	Duration   time.Duration
}

// Stats resume el outcome para el presenter.
func (o *RunOutcome) Stats() ui.RunStats {
	stats := ui.RunStats{TotalDuration: o.Duration}
	for i, ex := range o.Executions {
		summary := ui.StageSummary{
			Number:   i + 1,
			Name:     string(ex.Kind),
			Duration: ex.Duration,
			Entries:  ex.Entries,
		}
		switch {
		case ex.Status == domain.StageStatusFailed:
			summary.Status = ui.StatusError
			stats.StagesFailed++
		case ex.Stored:
			summary.Status = ui.StatusSuccess
			stats.StagesSucceeded++
		default:
			summary.Status = ui.StatusEmpty
			stats.StagesEmpty++
		}
		if ex.Err != nil {
			summary.Message = ex.Err.Error()
		}
		stats.Stages = append(stats.Stages, summary)
	}
	return stats
}

// Run ejecuta todos los stages en orden. Un stage que falla (error o panic)
// se registra y el siguiente se ejecuta igualmente; sólo los resultados no
// vacíos llegan al store. Una vez cancelado ctx, los stages restantes se
// registran como fallidos sin ejecutarse.
func (p *Pipeline) Run(ctx context.Context, targets []domain.Target) (*RunOutcome, error) {
	p.mu.Lock()
	if p.state != stateIdle {
		p.mu.Unlock()
		return nil, domain.ErrPipelineAlreadyRun
	}
	p.state = stateRunning
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = stateCompleted
		p.mu.Unlock()
	}()

	startTime := time.Now()
	outcome := &RunOutcome{Store: domain.NewResultStore(targets)}

	p.logger.Info("starting pipeline execution",
		"targets", len(targets),
		"stages", len(p.stages),
	)

	for i, stage := range p.stages {
		kind := stage.Kind()
		p.presenter.StartStage(ui.StageInfo{
			Number:      i + 1,
			TotalStages: len(p.stages),
			Name:        string(kind),
		})

		var exec StageExecution
		if ctxErr := ctx.Err(); ctxErr != nil {
			exec = StageExecution{
				Kind:   kind,
				Status: domain.StageStatusFailed,
				Err:    errors.Wrapf(errors.ErrStageExecution, "%s skipped: %v", kind, ctxErr),
			}
		} else {
			exec = p.executeStage(ctx, stage, targets, outcome.Store)
		}

		if exec.Status == domain.StageStatusFailed {
			outcome.Failures = append(outcome.Failures, StageFailure{
				Stage:   kind,
				Message: exec.Err.Error(),
			})
			p.logger.Warn("stage failed",
				"stage", string(kind),
				"error", exec.Err.Error(),
				"duration_ms", exec.Duration.Milliseconds(),
			)
		} else {
			p.logger.Info("stage completed",
				"stage", string(kind),
				"stored", exec.Stored,
				"entries", exec.Entries,
				"duration_ms", exec.Duration.Milliseconds(),
			)
		}

		outcome.Executions = append(outcome.Executions, exec)
		p.presenter.FinishStage(outcome.Stats().Stages[i])
	}

	outcome.Duration = time.Since(startTime)
	p.logger.Info("pipeline execution completed",
		"stored", outcome.Store.Len(),
		"failures", len(outcome.Failures),
		"total_duration_ms", outcome.Duration.Milliseconds(),
	)

	return outcome, nil
}

// executeStage corre un stage con recuperación de panics y guarda su resultado.
func (p *Pipeline) executeStage(ctx context.Context, stage ports.Stage, targets []domain.Target, store *domain.ResultStore) StageExecution {
	kind := stage.Kind()
	exec := StageExecution{Kind: kind, Status: domain.StageStatusRunning}
	start := time.Now()

	p.logger.Debug("executing stage", "stage", string(kind))

	result, err := p.safeRun(ctx, stage, targets, store)
	exec.Duration = time.Since(start)

	if err != nil {
		exec.Status = domain.StageStatusFailed
		exec.Err = err
		return exec
	}

	exec.Status = domain.StageStatusSucceeded
	if result == nil || result.IsEmpty() {
		return exec
	}

	if err := store.Set(kind, result); err != nil {
		exec.Status = domain.StageStatusFailed
		exec.Err = fmt.Errorf("%s: %w: %w", kind, errors.ErrStageExecution, err)
		return exec
	}
	exec.Stored = true
	exec.Entries = result.Len()
	return exec
}

func (p *Pipeline) safeRun(ctx context.Context, stage ports.Stage, targets []domain.Target, store *domain.ResultStore) (result domain.StageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("stage panic", "stage", string(stage.Kind()), "stack", string(debug.Stack()))
			result = nil
			err = errors.Wrapf(errors.ErrStageExecution, "%s panicked: %v", stage.Kind(), r)
		}
	}()

	result, err = stage.Run(ctx, targets, store)
	if err != nil && !errors.Is(err, errors.ErrStageExecution) {
		err = fmt.Errorf("%s: %w: %w", stage.Kind(), errors.ErrStageExecution, err)
	}
	return result, err
}
