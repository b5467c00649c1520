package survival_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/internal/domain/survival"
)

func TestKaplanMeier(t *testing.T) {
	Convey("Given a mix of events and censoring", t, func() {
		times := []float64{1, 2, 3, 4, 5}
		events := []bool{true, true, false, true, false}

		Convey("When estimating the survival function", func() {
			curve, err := survival.KaplanMeier(times, events)

			Convey("Then only event times appear as steps", func() {
				So(err, ShouldBeNil)
				So(curve.Times, ShouldResemble, []float64{1, 2, 4})
			})

			Convey("And the product-limit values are exact", func() {
				// S(1) = 4/5; S(2) = 4/5 * 3/4; S(4) = 3/5 * 1/2 after the
				// censored subject left the risk set.
				So(curve.Survival[0], ShouldAlmostEqual, 0.8, 1e-9)
				So(curve.Survival[1], ShouldAlmostEqual, 0.6, 1e-9)
				So(curve.Survival[2], ShouldAlmostEqual, 0.3, 1e-9)
			})

			Convey("And the risk set shrinks through censoring", func() {
				So(curve.AtRisk, ShouldResemble, []int{5, 4, 2})
				So(curve.Events, ShouldResemble, []int{1, 1, 1})
			})
		})
	})

	Convey("Given tied event times", t, func() {
		times := []float64{2, 2, 5}
		events := []bool{true, true, false}

		Convey("Then deaths at the same time form one step", func() {
			curve, err := survival.KaplanMeier(times, events)
			So(err, ShouldBeNil)
			So(curve.Times, ShouldResemble, []float64{2})
			So(curve.Survival[0], ShouldAlmostEqual, 1.0/3.0, 1e-9)
			So(curve.Events[0], ShouldEqual, 2)
		})
	})

	Convey("Given only censored subjects", t, func() {
		curve, err := survival.KaplanMeier([]float64{3, 7}, []bool{false, false})

		Convey("Then the curve stays flat at 1", func() {
			So(err, ShouldBeNil)
			So(curve.Times, ShouldBeEmpty)
			So(curve.At(10), ShouldEqual, 1.0)
		})
	})

	Convey("Given no subjects", t, func() {
		_, err := survival.KaplanMeier(nil, nil)

		Convey("Then estimation fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCurve_At(t *testing.T) {
	Convey("Given an estimated curve", t, func() {
		curve, err := survival.KaplanMeier([]float64{1, 2, 3, 4, 5}, []bool{true, true, false, true, false})
		So(err, ShouldBeNil)

		Convey("Then the step function evaluates right-continuously", func() {
			So(curve.At(0.5), ShouldEqual, 1.0)
			So(curve.At(1), ShouldAlmostEqual, 0.8, 1e-9)
			So(curve.At(3.5), ShouldAlmostEqual, 0.6, 1e-9)
			So(curve.At(100), ShouldAlmostEqual, 0.3, 1e-9)
		})
	})
}
