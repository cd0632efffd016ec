package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeights_Score(t *testing.T) {
	Convey("Given the default weights", t, func() {
		w := scoring.DefaultWeights()

		Convey("When scoring the reference records", func() {
			acme := model.CountryMetrics{Country: "Acme", ImportTon: 10, ExportTon: 5, ImportUSD: 100, ExportUSD: 200}
			beta := model.CountryMetrics{Country: "Beta", ImportTon: 20, ExportTon: 1, ImportUSD: 50, ExportUSD: 50}

			Convey("Then raw units are mixed with weights 1, 2, 3, 4", func() {
				So(w.Score(acme), ShouldEqual, 1120)
				So(w.Score(beta), ShouldEqual, 372)
			})

			Convey("And scoring twice gives the same value", func() {
				So(w.Score(acme), ShouldEqual, w.Score(acme))
			})
		})

		Convey("When the record is empty", func() {
			So(w.Score(model.CountryMetrics{}), ShouldEqual, 0)
		})

		Convey("When the record already has a priority", func() {
			Convey("Then the stored priority does not feed back into the score", func() {
				So(w.Score(model.CountryMetrics{ImportTon: 1, Priority: 1e9}), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an alternate weighting", t, func() {
		w := scoring.Weights{ImportTon: 0, ExportTon: 0, ImportUSD: 0, ExportUSD: 1}

		Convey("Then only export value counts", func() {
			So(w.Score(model.CountryMetrics{ImportTon: 99, ExportUSD: 7}), ShouldEqual, 7)
		})
	})
}

func TestWeights_Validate(t *testing.T) {
	Convey("Given weight tables", t, func() {
		So(scoring.DefaultWeights().Validate(), ShouldBeNil)
		So(scoring.Weights{ExportUSD: -1}.Validate(), ShouldBeNil)

		err := scoring.Weights{ImportUSD: math.NaN()}.Validate()
		So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "import_usd")

		err = scoring.Weights{ExportTon: math.Inf(1)}.Validate()
		So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
	})
}

func TestApply(t *testing.T) {
	Convey("Given a dataset", t, func() {
		ds := model.Dataset{
			"acme": {Country: "Acme", ImportTon: 10, ExportTon: 5, ImportUSD: 100, ExportUSD: 200},
		}

		Convey("When priorities are applied", func() {
			scored := scoring.Apply(ds, scoring.DefaultWeights())

			Convey("Then the copy carries the priority and the input is untouched", func() {
				So(scored["acme"].Priority, ShouldEqual, 1120)
				So(ds["acme"].Priority, ShouldEqual, 0)
			})

			Convey("And applying again is idempotent", func() {
				So(scoring.Apply(scored, scoring.DefaultWeights()), ShouldResemble, scored)
			})
		})
	})
}
