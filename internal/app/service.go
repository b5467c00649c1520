// Package app provides the validation service that glues the domain
// components into the full landmark x horizon analysis.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinstat/trs/internal/bootstrap"
	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/domain/roc"
	"github.com/clinstat/trs/internal/domain/score"
	"github.com/clinstat/trs/internal/domain/stratify"
	"github.com/clinstat/trs/internal/domain/survival"
	"github.com/clinstat/trs/internal/domain/threshold"
	"github.com/clinstat/trs/pkg/logger"
	"github.com/clinstat/trs/pkg/metrics"
)

// Metric names used in bootstrap reports.
const (
	MetricAUC    = "time_dependent_auc"
	MetricCIndex = "c_index"
)

// Service runs the complete internal validation for a cohort.
type Service struct {
	plan           []model.Component // component table whose thresholds get re-derived
	landmarkDays   []float64
	horizons       []float64
	primaryHorizon float64
	categories     []model.RiskCategory
	calibBins      int

	calc      *score.Calculator
	optimizer *threshold.Optimizer
	validator *bootstrap.Validator

	log logger.Logger
}

// New creates a Service with configuration options. The default component
// plan is the canonical published definition; partitions are validated
// against its derived maximum at construction, so an impossible partition
// fails at startup rather than mid-run.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		plan:           model.CanonicalTRS().Components(),
		landmarkDays:   []float64{3, 5, 7},
		horizons:       []float64{30, 60, 90},
		primaryHorizon: 90,
		calibBins:      10,
		calc:           score.NewCalculator(),
		optimizer:      threshold.New(),
		validator:      bootstrap.New(),
		log:            logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}

	def, err := model.NewScoreDefinition(s.plan)
	if err != nil {
		return nil, fmt.Errorf("component plan: %w", err)
	}
	if s.categories == nil {
		s.categories = defaultCategories()
	}
	if err := stratify.ValidatePartition(s.categories, def.MaxScore()); err != nil {
		return nil, err
	}
	return s, nil
}

// defaultCategories is the corrected derivation-study partition. Supplying
// WithRiskCategories overrides it entirely; the high-risk boundary is not a
// constant anywhere else in the engine.
func defaultCategories() []model.RiskCategory {
	return []model.RiskCategory{
		{Name: "LOW", Lo: 0, Hi: 1, Description: "Low Risk", Recommendation: "Standard weaning protocol", MortalityRate: 0.10},
		{Name: "MEDIUM", Lo: 2, Hi: 2, Description: "Medium Risk", Recommendation: "Enhanced monitoring and assessment", MortalityRate: 0.33},
		{Name: "HIGH", Lo: 3, Hi: 8, Description: "High Risk", Recommendation: "Consider early tracheostomy (day 5-7)", MortalityRate: 0.46},
	}
}

// Run validates the score over every configured landmark day and horizon.
// Non-evaluable (landmark, horizon) pairs are reported as such, never as
// zero performance.
func (s *Service) Run(ctx context.Context, full *cohort.Cohort) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: start,
		CohortSize:  full.Len(),
	}
	metrics.UpdateCohortSize(full.Len())

	for _, day := range s.landmarkDays {
		la, err := s.analyzeLandmark(ctx, full, day)
		if err != nil {
			return report, fmt.Errorf("landmark day %g: %w", day, err)
		}
		report.Landmarks = append(report.Landmarks, *la)
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run interrupted: %w", err)
		}
	}

	report.Elapsed = time.Since(start)
	s.log.Info(ctx, "validation run complete",
		logger.String("runID", report.RunID),
		logger.Int("landmarks", len(report.Landmarks)),
	)
	return report, nil
}

// analyzeLandmark runs the whole chain for one landmark day.
func (s *Service) analyzeLandmark(ctx context.Context, full *cohort.Cohort, day float64) (*LandmarkAnalysis, error) {
	lc, err := cohort.Landmark(full, day)
	if err != nil {
		return nil, err
	}
	la := &LandmarkAnalysis{Day: day, Subjects: lc.Len()}

	// Headline thresholds with bootstrap confidence bounds, then the
	// definition actually used for scoring this landmark cohort.
	def, err := s.deriveDefinition(ctx, lc, true)
	if err != nil {
		return nil, err
	}
	la.Definition = def
	for _, c := range def.Components() {
		if c.Kind == model.ThresholdComponent {
			la.Thresholds = append(la.Thresholds, c.Threshold)
		}
	}

	scores, err := s.calc.ScoreCohort(def, lc)
	if err != nil {
		return nil, err
	}
	times, events := lc.Times(), lc.Events()

	for _, h := range s.horizons {
		curve, err := roc.Compute(scores, times, events, h)
		if errors.Is(err, roc.ErrNonEvaluable) {
			la.NonEvaluable = append(la.NonEvaluable, fmt.Sprintf("horizon %g: %v", h, err))
			continue
		}
		if err != nil {
			return nil, err
		}
		la.Curves = append(la.Curves, curve)
	}

	aucReport, err := s.validator.Validate(ctx, MetricAUC, lc, s.deriver(), s.aucMetric())
	if err != nil {
		return nil, err
	}
	la.BootstrapAUC = aucReport

	cidxReport, err := s.validator.Validate(ctx, MetricCIndex, lc, s.deriver(), s.cIndexMetric())
	if err != nil {
		return nil, err
	}
	la.BootstrapCIndex = cidxReport

	la.Stratification, err = stratify.Stratify(s.categories, def.MaxScore(), scores, times, events, s.primaryHorizon)
	if err != nil {
		return nil, err
	}

	if err := s.calibrate(la, scores, times, events); err != nil {
		return nil, err
	}
	s.survivalByCategory(ctx, la, scores, times, events)
	return la, nil
}

// calibrate maps scores to empirical risks and derives Brier score and
// calibration bins at the primary horizon.
func (s *Service) calibrate(la *LandmarkAnalysis, scores []int, times []float64, events []bool) error {
	risk, err := stratify.RiskByScore(scores, times, events, s.primaryHorizon)
	if err != nil {
		return err
	}
	predicted := make([]float64, len(scores))
	for i, sc := range scores {
		predicted[i] = risk[sc]
	}

	brier, err := roc.Brier(predicted, times, events, s.primaryHorizon)
	if err != nil {
		return err
	}
	la.Brier = brier

	la.Calibration, err = stratify.Calibration(predicted, times, events, s.primaryHorizon, s.calibBins)
	return err
}

// survivalByCategory estimates a Kaplan-Meier curve per risk category. A
// category without subjects simply has no curve.
func (s *Service) survivalByCategory(ctx context.Context, la *LandmarkAnalysis, scores []int, times []float64, events []bool) {
	la.Survival = make(map[string]survival.Curve, len(s.categories))
	for _, cat := range s.categories {
		var ct []float64
		var ce []bool
		for i, sc := range scores {
			if cat.Contains(sc) {
				ct = append(ct, times[i])
				ce = append(ce, events[i])
			}
		}
		if len(ct) == 0 {
			continue
		}
		curve, err := survival.KaplanMeier(ct, ce)
		if err != nil {
			s.log.Warn(ctx, "survival curve skipped",
				logger.String("category", cat.Name), logger.Error(err))
			continue
		}
		la.Survival[cat.Name] = curve
	}
}

// deriveDefinition re-fits every threshold component on the given cohort,
// optionally with bootstrap confidence bounds (headline derivation only; the
// inner bootstrap re-derivations skip the nested resampling).
func (s *Service) deriveDefinition(_ context.Context, c *cohort.Cohort, withCI bool) (*model.ScoreDefinition, error) {
	comps := make([]model.Component, 0, len(s.plan))
	for _, pc := range s.plan {
		if pc.Kind != model.ThresholdComponent {
			comps = append(comps, pc)
			continue
		}
		values, labels, err := s.outcomeSamples(c, pc.Threshold.Variable)
		if err != nil {
			return nil, err
		}
		var th model.Threshold
		if withCI {
			th, err = s.optimizer.OptimizeCI(pc.Threshold.Variable, pc.Threshold.Direction, values, labels)
		} else {
			th, err = s.optimizer.Optimize(pc.Threshold.Variable, pc.Threshold.Direction, values, labels)
		}
		if err != nil {
			return nil, err
		}
		comps = append(comps, model.Component{
			Name:      pc.Name,
			Kind:      model.ThresholdComponent,
			Threshold: th,
			Points:    pc.Points,
		})
	}
	return model.NewScoreDefinition(comps)
}

// outcomeSamples extracts (value, case/control label) pairs for one variable
// at the primary horizon. Subjects censored before the horizon are ambiguous
// and excluded, as are subjects missing the covariate.
func (s *Service) outcomeSamples(c *cohort.Cohort, variable string) ([]float64, []bool, error) {
	values, present := c.NumericValues(variable)
	times, events := c.Times(), c.Events()

	var vs []float64
	var ls []bool
	for i := range values {
		if !present[i] {
			continue
		}
		switch {
		case times[i] <= s.primaryHorizon && events[i]:
			vs = append(vs, values[i])
			ls = append(ls, true)
		case times[i] > s.primaryHorizon:
			vs = append(vs, values[i])
			ls = append(ls, false)
		}
	}
	if len(vs) == 0 {
		return nil, nil, fmt.Errorf("variable %s: no evaluable subjects: %w", variable, threshold.ErrInsufficientData)
	}
	return vs, ls, nil
}

// deriver adapts definition re-fitting to the bootstrap contract.
func (s *Service) deriver() bootstrap.Deriver {
	return func(ctx context.Context, c *cohort.Cohort) (*model.ScoreDefinition, error) {
		return s.deriveDefinition(ctx, c, false)
	}
}

// aucMetric evaluates the time-dependent AUC at the primary horizon.
func (s *Service) aucMetric() bootstrap.Metric {
	return func(_ context.Context, c *cohort.Cohort, def *model.ScoreDefinition) (float64, error) {
		scores, err := s.calc.ScoreCohort(def, c)
		if err != nil {
			return 0, err
		}
		res, err := roc.Compute(scores, c.Times(), c.Events(), s.primaryHorizon)
		if err != nil {
			return 0, err
		}
		return res.AUC, nil
	}
}

// cIndexMetric evaluates Harrell's concordance index.
func (s *Service) cIndexMetric() bootstrap.Metric {
	return func(_ context.Context, c *cohort.Cohort, def *model.ScoreDefinition) (float64, error) {
		scores, err := s.calc.ScoreCohort(def, c)
		if err != nil {
			return 0, err
		}
		return roc.CIndex(scores, c.Times(), c.Events())
	}
}
