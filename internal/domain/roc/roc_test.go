package roc_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/internal/domain/roc"
)

func TestCompute(t *testing.T) {
	Convey("Given scores that separate deaths perfectly", t, func() {
		scores := []int{0, 1, 2, 5, 6, 7}
		times := []float64{100, 120, 95, 10, 20, 5}
		events := []bool{false, false, false, true, true, true}

		Convey("When computing the 90-day curve", func() {
			res, err := roc.Compute(scores, times, events, 90)

			Convey("Then discrimination is perfect", func() {
				So(err, ShouldBeNil)
				So(res.AUC, ShouldAlmostEqual, 1.0, 1e-9)
				So(res.Cases, ShouldEqual, 3)
				So(res.Controls, ShouldEqual, 3)
				So(res.Excluded, ShouldEqual, 0)
			})

			Convey("And the curve starts at (0,0) and ends at (1,1)", func() {
				last := len(res.Thresholds) - 1
				So(res.Sensitivity[0], ShouldEqual, 0)
				So(res.Specificity[0], ShouldEqual, 1)
				So(res.Sensitivity[last], ShouldEqual, 1)
				So(res.Specificity[last], ShouldEqual, 0)
			})

			Convey("And thresholds descend from above the maximum score", func() {
				So(res.Thresholds[0], ShouldEqual, 8)
				for i := 1; i < len(res.Thresholds); i++ {
					So(res.Thresholds[i], ShouldBeLessThan, res.Thresholds[i-1])
				}
			})
		})
	})

	Convey("Given identical score distributions in both classes", t, func() {
		scores := []int{1, 2, 3, 1, 2, 3}
		times := []float64{10, 20, 30, 100, 110, 120}
		events := []bool{true, true, true, false, false, false}

		Convey("When computing the 90-day curve", func() {
			res, err := roc.Compute(scores, times, events, 90)

			Convey("Then the AUC is that of a coin flip", func() {
				So(err, ShouldBeNil)
				So(res.AUC, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})

	Convey("Given subjects censored before the horizon", t, func() {
		scores := []int{5, 0, 3}
		times := []float64{10, 100, 40}
		events := []bool{true, false, false} // censored at day 40

		Convey("When computing the 90-day curve", func() {
			res, err := roc.Compute(scores, times, events, 90)

			Convey("Then the early-censored subject joins neither class", func() {
				So(err, ShouldBeNil)
				So(res.Cases, ShouldEqual, 1)
				So(res.Controls, ShouldEqual, 1)
				So(res.Excluded, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an event exactly at the horizon", t, func() {
		scores := []int{5, 0}
		times := []float64{90, 120}
		events := []bool{true, false}

		Convey("Then the boundary event counts as a case", func() {
			res, err := roc.Compute(scores, times, events, 90)
			So(err, ShouldBeNil)
			So(res.Cases, ShouldEqual, 1)
		})
	})

	Convey("Given a horizon with an empty class", t, func() {
		scores := []int{1, 2}
		times := []float64{100, 120}
		events := []bool{false, false}

		Convey("Then the pair is non-evaluable, never zero", func() {
			_, err := roc.Compute(scores, times, events, 90)
			So(err, ShouldWrap, roc.ErrNonEvaluable)
		})
	})

	Convey("Given a non-positive horizon", t, func() {
		_, err := roc.Compute([]int{1}, []float64{1}, []bool{true}, 0)

		Convey("Then computation is refused", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCIndex(t *testing.T) {
	Convey("Given perfectly concordant scores", t, func() {
		scores := []int{4, 3, 2, 1}
		times := []float64{1, 2, 3, 4}
		events := []bool{true, true, true, true}

		Convey("Then the concordance is 1", func() {
			c, err := roc.CIndex(scores, times, events)
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 1.0)
		})
	})

	Convey("Given perfectly discordant scores", t, func() {
		scores := []int{1, 2, 3, 4}
		times := []float64{1, 2, 3, 4}
		events := []bool{true, true, true, true}

		Convey("Then the concordance is 0", func() {
			c, err := roc.CIndex(scores, times, events)
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 0.0)
		})
	})

	Convey("Given tied scores", t, func() {
		scores := []int{2, 2, 1, 1}
		times := []float64{1, 2, 3, 4}
		events := []bool{true, true, true, true}

		Convey("Then ties count half", func() {
			// 6 comparable pairs: 4 concordant, 2 score-tied.
			c, err := roc.CIndex(scores, times, events)
			So(err, ShouldBeNil)
			So(c, ShouldAlmostEqual, 5.0/6.0, 1e-9)
		})
	})

	Convey("Given censoring", t, func() {
		scores := []int{3, 2, 1}
		times := []float64{1, 2, 3}
		events := []bool{true, false, false}

		Convey("Then only pairs anchored by an event are comparable", func() {
			// Censored subjects at times 2 and 3 are each comparable with the
			// event at time 1; the censored pair is not.
			c, err := roc.CIndex(scores, times, events)
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 1.0)
		})
	})

	Convey("Given no comparable pairs", t, func() {
		scores := []int{1, 2}
		times := []float64{5, 5}
		events := []bool{false, false}

		Convey("Then the index is non-evaluable", func() {
			_, err := roc.CIndex(scores, times, events)
			So(err, ShouldWrap, roc.ErrNonEvaluable)
		})
	})
}

func TestBrier(t *testing.T) {
	Convey("Given perfect probability forecasts", t, func() {
		predicted := []float64{1, 0}
		times := []float64{10, 120}
		events := []bool{true, false}

		Convey("Then the Brier score is 0", func() {
			b, err := roc.Brier(predicted, times, events, 90)
			So(err, ShouldBeNil)
			So(b, ShouldEqual, 0)
		})
	})

	Convey("Given coin-flip forecasts", t, func() {
		predicted := []float64{0.5, 0.5, 0.5, 0.5}
		times := []float64{10, 20, 120, 130}
		events := []bool{true, true, false, false}

		Convey("Then the Brier score is 0.25", func() {
			b, err := roc.Brier(predicted, times, events, 90)
			So(err, ShouldBeNil)
			So(b, ShouldAlmostEqual, 0.25, 1e-9)
		})
	})

	Convey("Given only early-censored subjects", t, func() {
		predicted := []float64{0.5}
		times := []float64{10}
		events := []bool{false}

		Convey("Then the score is non-evaluable", func() {
			_, err := roc.Brier(predicted, times, events, 90)
			So(err, ShouldWrap, roc.ErrNonEvaluable)
		})
	})
}
