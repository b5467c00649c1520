package logger_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/pkg/logger"
)

func TestInit(t *testing.T) {
	Convey("Given a fresh process", t, func() {
		Convey("When initializing", func() {
			err := logger.Init()

			Convey("Then the global logger is usable", func() {
				So(err, ShouldBeNil)
				So(logger.Get(), ShouldNotBeNil)
			})
		})

		Convey("When skipping Init entirely", func() {
			Convey("Then Get still hands out a working logger", func() {
				log := logger.Get()
				So(log, ShouldNotBeNil)
				So(func() {
					log.Info(context.Background(), "lazy init", logger.String("k", "v"))
				}, ShouldNotPanic)
			})
		})
	})
}

func TestNamed(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When deriving a named child", func() {
			child := logger.Named("bootstrap")

			Convey("Then the child is independent and usable", func() {
				So(child, ShouldNotBeNil)
				So(func() {
					child.Warn(context.Background(), "derived logger")
				}, ShouldNotPanic)
			})

			Convey("And children can nest", func() {
				So(child.Named("worker-0"), ShouldNotBeNil)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		Convey("Then known names parse in any case", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("INFO"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString("Error"), ShouldBeNil)
		})

		Convey("And the empty string means info", func() {
			So(logger.SetLevelString(""), ShouldBeNil)
		})

		Convey("And unknown names are rejected", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})

		Reset(func() {
			logger.SetLevel(slog.LevelInfo)
		})
	})
}

func TestFields(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then each carries its key and value", func() {
			So(logger.String("a", "b"), ShouldResemble, logger.Field{Key: "a", Value: "b"})
			So(logger.Int("n", 3).Value, ShouldEqual, 3)
			So(logger.Float64("f", 0.5).Value, ShouldEqual, 0.5)
			So(logger.Bool("ok", true).Value, ShouldEqual, true)
		})

		Convey("And Error uses the conventional key", func() {
			err := fmt.Errorf("boom")
			f := logger.Error(err)
			So(f.Key, ShouldEqual, "error")
			So(f.Value, ShouldEqual, err)
		})
	})
}
