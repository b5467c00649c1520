package app

import (
	"time"

	"github.com/clinstat/trs/internal/bootstrap"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/domain/roc"
	"github.com/clinstat/trs/internal/domain/stratify"
	"github.com/clinstat/trs/internal/domain/survival"
)

// LandmarkAnalysis is the full result set for one landmark day. All fields
// are plain structured records; serialization is the caller's concern.
type LandmarkAnalysis struct {
	Day      float64
	Subjects int

	// Thresholds re-derived on the landmark cohort, with bootstrap CIs.
	Thresholds []model.Threshold
	Definition *model.ScoreDefinition

	// Curves holds one ROC per evaluable horizon; NonEvaluable explains
	// the rest.
	Curves       []roc.Result
	NonEvaluable []string

	BootstrapAUC    bootstrap.Report
	BootstrapCIndex bootstrap.Report

	Stratification stratify.Summary
	Brier          float64
	Calibration    []stratify.CalibrationBin
	Survival       map[string]survival.Curve
}

// Report is the complete output of one validation run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	CohortSize  int
	Landmarks   []LandmarkAnalysis
	Elapsed     time.Duration
}
