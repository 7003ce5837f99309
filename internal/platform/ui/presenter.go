// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// Presenter muestra el progreso del pipeline en la terminal.
// Las implementaciones deben tolerar llamadas desde un único goroutine.
type Presenter interface {
	// Start inicia la presentación con información de la ejecución
	Start(info RunInfo)

	// StartStage notifica el inicio de un stage
	StartStage(stage StageInfo)

	// FinishStage notifica la finalización de un stage
	FinishStage(summary StageSummary)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close limpia recursos del presenter
	Close() error
}

// RunInfo contiene información inicial de la ejecución
type RunInfo struct {
	RunID       string
	Targets     []string
	TotalStages int
	ConfigPath  string
	ReportPath  string
}

// StageInfo contiene información de un stage al arrancar
type StageInfo struct {
	Number      int
	TotalStages int
	Name        string
}

// StageSummary describe cómo terminó un stage
type StageSummary struct {
	Number   int
	Name     string
	Status   Status
	Duration time.Duration
	Entries  int    // claves en el resultado almacenado
	Message  string // error, si lo hubo
}

// RunStats contiene estadísticas finales de la ejecución
type RunStats struct {
	TotalDuration   time.Duration
	StagesSucceeded int
	StagesEmpty     int
	StagesFailed    int
	ReportPath      string
	Stages          []StageSummary
}
