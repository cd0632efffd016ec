package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tradeboard/internal/adapters/repository"
	"github.com/okian/tradeboard/internal/adapters/source"
	service "github.com/okian/tradeboard/internal/app"
	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/internal/domain/normalize"
	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/domain/scoring"
	"github.com/okian/tradeboard/internal/sampledata"
	"github.com/okian/tradeboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// rowsReader serves fixed rows.
type rowsReader struct {
	rows []model.Row
	err  error
}

func (r rowsReader) Read(context.Context) ([]model.Row, error) { return r.rows, r.err }

var compact = normalize.Layout{Country: 0, Continent: 1, ImportTon: 2, ExportTon: 3, ImportUSD: 4, ExportUSD: 5}

func row(line int, cells ...model.Cell) model.Row {
	return model.Row{Line: line, Cells: cells}
}

func n(f float64) model.Cell { return model.NumberCell(f) }
func s(v string) model.Cell  { return model.TextCell(v) }
func blank() model.Cell      { return model.MissingCell() }

func referenceRows() []model.Row {
	return []model.Row{
		row(2, s("Acme"), s("Asia"), n(10), n(5), n(100), n(200)),
		row(3, s("Beta"), s("Asia"), n(20), n(1), n(50), n(50)),
		row(4, n(42), s("Asia"), n(1000), n(1000), n(1000), n(1000)),
		row(5, s("Gamma"), s("Europe"), blank(), s("n/a"), blank(), blank()),
		row(6, s("Delta"), s("Europe"), n(3), n(3), n(3), n(3)),
	}
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a service over the reference rows", t, func() {
		svc := service.New(
			service.WithReader(rowsReader{rows: referenceRows()}),
			service.WithLayout(compact),
			service.WithClock(func() time.Time { return at }),
		)

		Convey("When the dataset is loaded", func() {
			snap, err := svc.Load(ctx)
			So(err, ShouldBeNil)

			Convey("Then skipped and dropped rows are counted, not kept", func() {
				So(snap.Stats.Rows, ShouldEqual, 5)
				So(snap.Stats.Skipped, ShouldEqual, 1)
				So(snap.Stats.Dropped, ShouldEqual, 1)
				So(snap.Stats.Retained, ShouldEqual, 3)
				So(snap.Dataset, ShouldHaveLength, 3)
				So(snap.RunID, ShouldNotBeEmpty)
				So(snap.LoadedAt, ShouldEqual, at)
			})

			Convey("Then priorities are stored on the snapshot", func() {
				So(snap.Dataset["acme"].Priority, ShouldEqual, 1120)
				So(snap.Dataset["beta"].Priority, ShouldEqual, 372)
			})

			Convey("Then the top priority in Asia is Acme", func() {
				res, err := svc.Rankings(ctx, ranking.Priority, 1, ranking.TopAndBottom, "")
				So(err, ShouldBeNil)
				top := res.Continents["Asia"]["priority"].Top
				So(top, ShouldHaveLength, 1)
				So(top[0].Country, ShouldEqual, "Acme")
				So(top[0].Value, ShouldEqual, 1120)
				So(res.RunID, ShouldEqual, snap.RunID)
			})

			Convey("Then a continent filter narrows the result", func() {
				res, err := svc.Rankings(ctx, ranking.ImportTon, 5, ranking.TopOnly, "europe")
				So(err, ShouldBeNil)
				So(res.ContinentNames(), ShouldResemble, []string{"Europe"})

				_, err = svc.Rankings(ctx, ranking.ImportTon, 5, ranking.TopOnly, "Atlantis")
				So(errors.Is(err, service.ErrUnknownContinent), ShouldBeTrue)
			})

			Convey("Then country lookups carry continent ranks", func() {
				rec, err := svc.Country(ctx, "BETA")
				So(err, ShouldBeNil)
				So(rec.Ranks["import_ton"], ShouldEqual, 1)
				So(rec.Ranks["priority"], ShouldEqual, 2)

				_, err = svc.Country(ctx, "Gamma")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then stats describe the snapshot", func() {
				st, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(st.Countries, ShouldEqual, 3)
				So(st.Continents, ShouldResemble, []string{"Asia", "Europe"})
				So(st.RunID, ShouldEqual, snap.RunID)
			})

			Convey("Then an unknown metric is refused", func() {
				_, err := svc.Report(ctx, []ranking.Metric{"gdp"}, 3, ranking.TopOnly)
				So(errors.Is(err, ranking.ErrInvalidMetric), ShouldBeTrue)
			})
		})
	})

	Convey("Given alternate weights", t, func() {
		svc := service.New(
			service.WithReader(rowsReader{rows: referenceRows()}),
			service.WithLayout(compact),
			service.WithWeights(scoring.Weights{ImportTon: 1}),
		)
		snap, err := svc.Load(ctx)
		So(err, ShouldBeNil)

		Convey("Then the priority follows them", func() {
			So(snap.Dataset["beta"].Priority, ShouldEqual, 20)
		})
	})

	Convey("Given rows where nothing survives", t, func() {
		svc := service.New(
			service.WithReader(rowsReader{rows: []model.Row{row(1, n(1), s("Asia"), n(1))}}),
			service.WithLayout(compact),
		)

		Convey("Then Load reports an empty dataset", func() {
			_, err := svc.Load(ctx)
			So(errors.Is(err, service.ErrEmptyDataset), ShouldBeTrue)

			_, err = svc.GetStats(ctx)
			So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
		})
	})

	Convey("Given a failing source", t, func() {
		svc := service.New(service.WithReader(rowsReader{err: source.ErrIngestion}))
		_, err := svc.Load(ctx)
		So(errors.Is(err, source.ErrIngestion), ShouldBeTrue)
	})

	Convey("Given no source", t, func() {
		_, err := service.New().Load(ctx)
		So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
	})

	Convey("Given an invalid layout", t, func() {
		svc := service.New(
			service.WithReader(rowsReader{}),
			service.WithLayout(normalize.Layout{Country: -1}),
		)
		_, err := svc.Load(ctx)
		So(errors.Is(err, normalize.ErrInvalidLayout), ShouldBeTrue)
	})
}

func TestService_Integration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated byvalue workbook", t, func() {
		layout := normalize.Layout{Country: 0, Continent: 1, ImportTon: 2, ExportTon: 3, ImportUSD: 33, ExportUSD: 10}
		path := filepath.Join(t.TempDir(), "trade.xlsx")
		records := sampledata.Generate(sampledata.Config{Countries: 60, Seed: 5, Noise: true})
		So(sampledata.WriteXLSX(path, layout, 2, records), ShouldBeNil)

		r, err := source.Open(path, source.WithSkipRows(2))
		So(err, ShouldBeNil)
		svc := service.New(service.WithReader(r), service.WithLayout(layout), service.WithParallelism(3))

		Convey("When loaded and reported", func() {
			_, err := svc.Load(ctx)
			So(err, ShouldBeNil)
			res, err := svc.Report(ctx, ranking.AllMetrics(), 3, ranking.TopAndBottom)
			So(err, ShouldBeNil)

			Convey("Then every continent has at most three entries per metric", func() {
				So(res.Continents, ShouldNotBeEmpty)
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats.Source, ShouldEqual, path)
				So(stats.Rows.Skipped, ShouldBeGreaterThanOrEqualTo, 1)
				So(stats.Rows.Dropped, ShouldBeGreaterThanOrEqualTo, 1)
				for _, groups := range res.Continents {
					So(groups, ShouldHaveLength, 5)
					for _, g := range groups {
						So(len(g.Top), ShouldBeLessThanOrEqualTo, 3)
						So(len(g.Bottom), ShouldEqual, len(g.Top))
					}
				}
			})
		})
	})
}
