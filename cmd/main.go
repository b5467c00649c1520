package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinstat/trs/internal/adapters/loader"
	"github.com/clinstat/trs/internal/app"
	"github.com/clinstat/trs/internal/bootstrap"
	"github.com/clinstat/trs/internal/config"
	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/domain/score"
	"github.com/clinstat/trs/internal/synthcohort"
	"github.com/clinstat/trs/pkg/logger"
	"github.com/clinstat/trs/pkg/metrics"
)

const reportFileMode = 0o600

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	full, err := buildCohort(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to build cohort", logger.Error(err))
		return
	}
	metrics.UpdateCohortSize(full.Len())

	svc, err := app.New(
		app.WithLogger(log),
		app.WithComponentPlan(model.CanonicalTRS().Components()),
		app.WithLandmarkDays(cfg.LandmarkDays),
		app.WithHorizons(cfg.Horizons),
		app.WithPrimaryHorizon(cfg.PrimaryHorizon),
		app.WithRiskCategories(cfg.Categories()),
		app.WithCalibrationBins(cfg.CalibrationBins),
		app.WithCalculator(score.NewCalculator(score.WithMaxMissing(cfg.MaxMissingCovariates))),
		app.WithValidator(bootstrap.New(
			bootstrap.WithIterations(cfg.BootstrapIterations),
			bootstrap.WithSeed(cfg.Seed),
			bootstrap.WithSkipTolerance(cfg.SkipTolerance),
			bootstrap.WithWorkers(cfg.WorkerCount),
			bootstrap.WithLogger(log),
		)),
	)
	if err != nil {
		log.Error(ctx, "failed to configure validation service", logger.Error(err))
		return
	}

	report, err := svc.Run(ctx, full)
	if err != nil {
		log.Error(ctx, "validation run failed", logger.Error(err))
		return
	}

	if err := writeReport(cfg.ReportPath, report); err != nil {
		log.Error(ctx, "failed to write report", logger.Error(err))
		return
	}
	log.Info(ctx, "validation run complete",
		logger.String("run_id", report.RunID),
		logger.Int("landmarks", len(report.Landmarks)),
		logger.String("elapsed", report.Elapsed.String()),
	)
}

// buildCohort loads the configured CSV, or generates a synthetic cohort when
// no path is configured.
func buildCohort(ctx context.Context, cfg *config.Config) (*cohort.Cohort, error) {
	numeric, boolean := synthcohort.Schema()
	schema := cohort.Schema{Numeric: numeric, Boolean: boolean}
	opts := []cohort.Option{
		cohort.WithMaxMissing(cfg.MaxMissingCovariates),
		cohort.WithVariableSpecs(model.CanonicalVariableSpecs()),
		cohort.WithLogger(logger.Named("cohort")),
	}

	if cfg.CohortPath != "" {
		res, err := loader.LoadCSV(ctx, cfg.CohortPath, schema, opts...)
		if err != nil {
			return nil, err
		}
		return res.Cohort, nil
	}

	logger.Get().Info(ctx, "no cohort_path configured; generating synthetic cohort")
	gen := synthcohort.DefaultConfig()
	gen.Seed = cfg.Seed
	subjects := synthcohort.Generate(ctx, gen)
	c, _, err := cohort.New(ctx, subjects, schema, opts...)
	return c, err
}

// writeReport renders the report as indented JSON to the configured path, or
// stdout when none is set.
func writeReport(path string, report *app.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, reportFileMode)
}
