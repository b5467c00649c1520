package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/pkg/metrics"
)

func TestNewManager(t *testing.T) {
	Convey("Given a private registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager against it", func() {
			m := metrics.NewManager(metrics.WithRegistry(reg))

			Convey("Then all instruments register", func() {
				So(m, ShouldNotBeNil)
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThanOrEqualTo, 7)
			})
		})

		Convey("When overriding the namespace", func() {
			metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("custom"))

			Convey("Then metric names carry it", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
				for _, f := range families {
					So(f.GetName(), ShouldStartWith, "custom_")
				}
			})
		})

		Convey("When supplying custom histogram buckets", func() {
			So(func() {
				metrics.NewManager(
					metrics.WithRegistry(reg),
					metrics.WithNamespace("buckets"),
					metrics.WithHistogramBuckets([]float64{0.1, 1, 10}),
				)
			}, ShouldNotPanic)
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the singleton manager", t, func() {
		Convey("Then the helpers never panic", func() {
			So(func() {
				metrics.RecordIterationCompleted()
				metrics.RecordIterationSkipped()
				metrics.RecordSubjectExcluded()
				metrics.RecordIterationDuration(0.01)
				metrics.RecordRunDuration(1.5)
				metrics.UpdateCohortSize(150)
				metrics.UpdateWorkersActive(4)
				metrics.UpdateWorkersActive(0)
			}, ShouldNotPanic)
		})

		Convey("And the engine registry gathers them", func() {
			families, err := metrics.Registry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}
