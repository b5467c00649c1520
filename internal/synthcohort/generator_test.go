package synthcohort_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/internal/domain/model"
	"github.com/clinstat/trs/internal/synthcohort"
)

func TestGenerate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := synthcohort.DefaultConfig()
		cfg.Subjects = 80

		Convey("When generating", func() {
			subjects := synthcohort.Generate(context.Background(), cfg)

			Convey("Then the cohort has the requested size with unique IDs", func() {
				So(subjects, ShouldHaveLength, 80)
				seen := make(map[string]struct{}, len(subjects))
				for _, s := range subjects {
					seen[s.ID] = struct{}{}
				}
				So(seen, ShouldHaveLength, 80)
			})

			Convey("And every time is strictly positive within follow-up", func() {
				for _, s := range subjects {
					So(s.TimeToEvent, ShouldBeGreaterThan, 0)
					So(s.TimeToEvent, ShouldBeLessThanOrEqualTo, cfg.FollowUp)
				}
			})

			Convey("And covariates stay in their clinical ranges when present", func() {
				for _, s := range subjects {
					if v, ok := s.Numeric[model.VarMELD]; ok {
						So(v, ShouldBeBetweenOrEqual, 6, 40)
					}
					if v, ok := s.Numeric[model.VarPlatelets]; ok {
						So(v, ShouldBeBetweenOrEqual, 20, 300)
					}
				}
			})

			Convey("And both outcome classes occur", func() {
				events, censored := 0, 0
				for _, s := range subjects {
					if s.Event {
						events++
					} else {
						censored++
					}
				}
				So(events, ShouldBeGreaterThan, 0)
				So(censored, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given the same seed twice", t, func() {
		cfg := synthcohort.DefaultConfig()
		cfg.Subjects = 40

		a := synthcohort.Generate(context.Background(), cfg)
		b := synthcohort.Generate(context.Background(), cfg)

		Convey("Then the cohorts are identical", func() {
			So(a, ShouldResemble, b)
		})
	})

	Convey("Given different seeds", t, func() {
		cfg := synthcohort.DefaultConfig()
		cfg.Subjects = 40
		a := synthcohort.Generate(context.Background(), cfg)
		cfg.Seed = 99
		b := synthcohort.Generate(context.Background(), cfg)

		Convey("Then the cohorts differ", func() {
			So(a, ShouldNotResemble, b)
		})
	})

	Convey("Given a zero missing rate", t, func() {
		cfg := synthcohort.DefaultConfig()
		cfg.Subjects = 30
		cfg.MissingRate = 0

		Convey("Then every covariate is present", func() {
			numeric, boolean := synthcohort.Schema()
			for _, s := range synthcohort.Generate(context.Background(), cfg) {
				So(s.Numeric, ShouldHaveLength, len(numeric))
				So(s.Boolean, ShouldHaveLength, len(boolean))
			}
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("Given the generator schema", t, func() {
		numeric, boolean := synthcohort.Schema()

		Convey("Then it matches the canonical definition's covariates", func() {
			So(numeric, ShouldResemble, []string{model.VarMELD, model.VarSAPSII, model.VarAge, model.VarPlatelets})
			So(boolean, ShouldResemble, []string{model.VarHCC, model.VarCVVHD, model.VarVHF})
		})
	})
}
