// cmd/reconpipe/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"reconpipe/internal/adapters/output"
	"reconpipe/internal/core/domain"
	"reconpipe/internal/core/usecases"
	"reconpipe/internal/platform/config"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/ui"
	"reconpipe/internal/stages"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Códigos de salida.
const (
	exitOK          = 0
	exitUsage       = 1
	exitReportWrite = 2
	exitStageBuild  = 3
)

// buildStages es reemplazable en tests.
var buildStages = stages.Build

func main() {
	// Context and signals for clean shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run ejecuta el CLI completo y devuelve el código de salida.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. Flags
	opts, err := config.ParseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}
	if opts.PrintHelp {
		config.PrintHelp(stdout)
		return exitOK
	}
	if opts.PrintVersion {
		config.PrintVersion(stdout, version, commit, date)
		return exitOK
	}
	if len(opts.Targets) == 0 {
		fmt.Fprintf(stderr, "Error: %v\n", domain.ErrNoTargets)
		config.PrintHelp(stderr)
		return exitUsage
	}

	// 2. Settings: fichero, luego ENV, luego flags
	configPath := config.ResolvePath(opts.ConfigPath)
	settings, loadErr := config.Load(configPath)
	opts.Apply(&settings)

	// 3. Shared logger, scoped to this run
	runID := uuid.NewString()
	logger := logx.NewWithLevel(logx.ParseLevel(settings.Logging.Level)).With("run_id", runID)
	if loadErr != nil {
		logger.Warn("using default settings", "path", configPath, "error", loadErr.Error())
	}

	logger.Info("reconpipe starting",
		"version", version,
		"commit", commit,
		"targets", len(opts.Targets),
		"config", configPath,
	)

	targets := domain.NewTargets(opts.Targets)
	sink := output.NewJSONSink(settings.Report.OutputFile, logger)

	// 4. Stages. Sin stages se escribe igualmente un informe vacío.
	stageList, err := buildStages(settings, stages.NewDeps(settings, logger))
	if err != nil {
		logger.Err(err, "phase", "stage-build")
		fmt.Fprintf(stderr, "Error: cannot build stages: %v\n", err)
		if code := writeReport(sink, domain.NewResultStore(targets), logger, stderr); code != exitOK {
			return code
		}
		return exitStageBuild
	}

	var presenter ui.Presenter = ui.NewNoopPresenter()
	if !opts.Quiet {
		presenter = ui.NewPTermPresenter()
	}
	defer presenter.Close()

	presenter.Start(ui.RunInfo{
		RunID:       runID,
		Targets:     opts.Targets,
		TotalStages: len(stageList),
		ConfigPath:  configPath,
		ReportPath:  settings.Report.OutputFile,
	})

	// 5. Pipeline
	pipeline := usecases.NewPipeline(usecases.PipelineOptions{
		Stages:    stageList,
		Logger:    logger,
		Presenter: presenter,
	})

	outcome, err := pipeline.Run(ctx, targets)
	if err != nil {
		logger.Err(err, "phase", "run")
		outcome = &usecases.RunOutcome{Store: domain.NewResultStore(targets)}
	}
	if ctx.Err() != nil {
		presenter.Warning("interrupted, writing partial report")
	}

	// 6. Report, siempre, aunque todos los stages hayan fallado
	if code := writeReport(sink, outcome.Store, logger, stderr); code != exitOK {
		return code
	}

	stats := outcome.Stats()
	stats.ReportPath = sink.Path()
	presenter.Finish(stats)

	logger.Info("reconpipe finished",
		"elapsed_ms", outcome.Duration.Milliseconds(),
		"stored", outcome.Store.Len(),
		"failures", len(outcome.Failures),
		"report", sink.Path(),
	)
	return exitOK
}

func writeReport(sink *output.JSONSink, store *domain.ResultStore, logger logx.Logger, stderr io.Writer) int {
	if err := sink.Write(domain.NewReport(store, time.Now())); err != nil {
		logger.Err(err, "phase", "output")
		fmt.Fprintf(stderr, "Error: cannot write report: %v\n", err)
		return exitReportWrite
	}
	return exitOK
}
