package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clinstat/trs/internal/adapters/loader"
	"github.com/clinstat/trs/internal/domain/cohort"
)

var testSchema = cohort.Schema{
	Numeric: []string{"meld", "age"},
	Boolean: []string{"hcc"},
}

func TestRead(t *testing.T) {
	Convey("Given a well-formed cohort file", t, func() {
		csv := strings.Join([]string{
			"subject_id,time_to_event,event,meld,age,hcc",
			"s1,12.5,1,22,61,yes",
			"s2,90,0,14,48,no",
		}, "\n")

		Convey("When reading", func() {
			res, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)

			Convey("Then every row becomes a subject", func() {
				So(err, ShouldBeNil)
				So(res.Cohort.Len(), ShouldEqual, 2)
				So(res.Excluded, ShouldBeEmpty)

				s := res.Cohort.At(0)
				So(s.ID, ShouldEqual, "s1")
				So(s.TimeToEvent, ShouldEqual, 12.5)
				So(s.Event, ShouldBeTrue)
				So(s.Numeric["meld"], ShouldEqual, 22)
				So(s.Boolean["hcc"], ShouldBeTrue)
			})
		})
	})

	Convey("Given shuffled and oddly cased headers", t, func() {
		csv := strings.Join([]string{
			"MELD,Event,subject_id,AGE,hcc,Time_To_Event",
			"22,1,s1,61,1,12.5",
		}, "\n")

		Convey("Then columns are matched case-insensitively by name", func() {
			res, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)
			So(err, ShouldBeNil)
			So(res.Cohort.At(0).Numeric["meld"], ShouldEqual, 22)
			So(res.Cohort.At(0).TimeToEvent, ShouldEqual, 12.5)
		})
	})

	Convey("Given empty covariate cells", t, func() {
		csv := strings.Join([]string{
			"subject_id,time_to_event,event,meld,age,hcc",
			"s1,12.5,1,,61,",
		}, "\n")

		Convey("When reading with the default missing policy", func() {
			res, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)

			Convey("Then empty cells are missing covariates, not zeros", func() {
				So(err, ShouldBeNil)
				s := res.Cohort.At(0)
				So(s.HasNumeric("meld"), ShouldBeFalse)
				So(s.HasBoolean("hcc"), ShouldBeFalse)
				So(s.Numeric["age"], ShouldEqual, 61)
			})
		})

		Convey("When no missing covariates are allowed", func() {
			res, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema,
				cohort.WithMaxMissing(0))

			Convey("Then the whole load fails on the empty cohort", func() {
				So(res, ShouldBeNil)
				So(err, ShouldWrap, cohort.ErrEmptyCohort)
			})
		})
	})

	Convey("Given a missing required column", t, func() {
		csv := "subject_id,event,meld,age,hcc\ns1,1,22,61,1"

		Convey("Then reading fails naming the column", func() {
			_, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)
			So(err, ShouldWrap, loader.ErrMissingColumn)
			So(err.Error(), ShouldContainSubstring, "time_to_event")
		})
	})

	Convey("Given a missing covariate column", t, func() {
		csv := "subject_id,time_to_event,event,meld,hcc\ns1,12,1,22,1"

		Convey("Then reading fails naming the covariate", func() {
			_, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)
			So(err, ShouldWrap, loader.ErrMissingColumn)
			So(err.Error(), ShouldContainSubstring, "age")
		})
	})

	Convey("Given a malformed cell", t, func() {
		Convey("When the time is not numeric", func() {
			csv := "subject_id,time_to_event,event,meld,age,hcc\ns1,soon,1,22,61,1"
			_, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)

			Convey("Then the row is fatal, not dropped", func() {
				So(err, ShouldWrap, loader.ErrBadValue)
				So(err.Error(), ShouldContainSubstring, "row 2")
			})
		})

		Convey("When a boolean cell is gibberish", func() {
			csv := "subject_id,time_to_event,event,meld,age,hcc\ns1,12,1,22,61,maybe"
			_, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)

			Convey("Then the row is fatal", func() {
				So(err, ShouldWrap, loader.ErrBadValue)
			})
		})
	})

	Convey("Given excludable subjects among valid ones", t, func() {
		csv := strings.Join([]string{
			"subject_id,time_to_event,event,meld,age,hcc",
			"s1,12.5,1,22,61,1",
			"s2,0,0,14,48,0", // never at risk
		}, "\n")

		Convey("Then the exclusion is reported, not fatal", func() {
			res, err := loader.Read(context.Background(), strings.NewReader(csv), testSchema)
			So(err, ShouldBeNil)
			So(res.Cohort.Len(), ShouldEqual, 1)
			So(res.Excluded, ShouldHaveLength, 1)
			So(res.Excluded[0].SubjectID, ShouldEqual, "s2")
		})
	})
}

func TestLoadCSV(t *testing.T) {
	Convey("Given a cohort file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "cohort.csv")
		csv := "subject_id,time_to_event,event,meld,age,hcc\ns1,12.5,1,22,61,1\n"
		So(os.WriteFile(path, []byte(csv), 0o600), ShouldBeNil)

		Convey("Then it loads like any reader", func() {
			res, err := loader.LoadCSV(context.Background(), path, testSchema)
			So(err, ShouldBeNil)
			So(res.Cohort.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a path that does not exist", t, func() {
		_, err := loader.LoadCSV(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), testSchema)

		Convey("Then loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
