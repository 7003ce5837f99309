// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// PTermPresenter implementa Presenter usando pterm: un spinner por stage
// y una tabla resumen al final.
type PTermPresenter struct {
	mu sync.Mutex

	info      RunInfo
	startTime time.Time
	spinner   *pterm.SpinnerPrinter
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{}
}

// Start muestra el header de la ejecución
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info
	p.startTime = time.Now()

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("reconpipe - Reconnaissance Pipeline")

	pterm.Println()

	content := fmt.Sprintf("%s Targets: %s\n", IconTarget, pterm.Cyan(joinTargets(info.Targets, 5)))
	content += fmt.Sprintf("%s Stages: %d\n", IconStage, info.TotalStages)
	content += fmt.Sprintf("%s Report: %s\n", IconReport, info.ReportPath)
	content += fmt.Sprintf("   Run ID: %s", StyleSecondary.Sprint(info.RunID))

	pterm.DefaultBox.
		WithTitle("Run").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Println(content)

	pterm.Println()
}

// StartStage arranca un spinner para el stage
func (p *PTermPresenter) StartStage(stage StageInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()

	spinner, err := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷").
		WithRemoveWhenDone(true).
		Start(fmt.Sprintf("[%d/%d] Running %s...", stage.Number, stage.TotalStages, pterm.Cyan(stage.Name)))
	if err == nil {
		p.spinner = spinner
	}
}

// FinishStage reemplaza el spinner por la línea final del stage
func (p *PTermPresenter) FinishStage(summary StageSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()

	line := fmt.Sprintf("  %s %s (%s)", summary.Status.Symbol(), summary.Name, formatDuration(summary.Duration))
	switch summary.Status {
	case StatusSuccess:
		line += fmt.Sprintf(" %d entries", summary.Entries)
	case StatusEmpty:
		line += " no data"
	case StatusError:
		line += " " + summary.Message
	}
	summary.Status.Style().Println(line)
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Warning.Println(msg)
}

// Finish muestra la tabla de stages y las estadísticas finales
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
	pterm.Println()

	tableData := pterm.TableData{{"Stage", "Status", "Entries", "Duration"}}
	for _, s := range stats.Stages {
		tableData = append(tableData, []string{
			s.Name,
			s.Status.Style().Sprint(s.Status.String()),
			fmt.Sprintf("%d", s.Entries),
			formatDuration(s.Duration),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()

	pterm.Println()
	summary := fmt.Sprintf("%s %s   %s %d ok   ○ %d empty   %s %d failed",
		IconTime, formatDuration(stats.TotalDuration),
		IconSuccess, stats.StagesSucceeded,
		stats.StagesEmpty,
		IconError, stats.StagesFailed,
	)
	pterm.Println(StylePrimary.Sprint(summary))
	if stats.ReportPath != "" {
		pterm.Success.Printf("Report written to %s\n", stats.ReportPath)
	}
}

// Close limpia recursos del presenter
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	return nil
}

// stopSpinner must be called with p.mu held.
func (p *PTermPresenter) stopSpinner() {
	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}
}
