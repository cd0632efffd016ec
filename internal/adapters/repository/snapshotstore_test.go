package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/tradeboard/internal/adapters/repository"
	"github.com/okian/tradeboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := repository.NewSnapshotStore()

		Convey("Then reads report that nothing is loaded", func() {
			_, err := s.Current(ctx)
			So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
			_, err = s.Country(ctx, "Acme")
			So(errors.Is(err, repository.ErrNotLoaded), ShouldBeTrue)
			So(s.Count(ctx), ShouldEqual, 0)
		})

		Convey("Then a nil snapshot is refused", func() {
			So(errors.Is(s.Replace(ctx, nil), repository.ErrNilSnapshot), ShouldBeTrue)
		})

		Convey("When a snapshot is published", func() {
			snap := &repository.Snapshot{
				RunID: "run-1",
				Dataset: model.Dataset{
					"new acme": {Country: "New Acme", Continent: "Asia", ImportTon: 1},
				},
				Ranks: map[string]map[string]int{"new acme": {"import_ton": 1}},
			}
			So(s.Replace(ctx, snap), ShouldBeNil)

			Convey("Then lookups fold case and spacing", func() {
				rec, err := s.Country(ctx, "  new   ACME ")
				So(err, ShouldBeNil)
				So(rec.Metrics.Country, ShouldEqual, "New Acme")
				So(rec.Ranks, ShouldResemble, map[string]int{"import_ton": 1})
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then unknown countries are not found", func() {
				_, err := s.Country(ctx, "Atlantis")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the returned ranks are a copy", func() {
				rec, _ := s.Country(ctx, "new acme")
				rec.Ranks["import_ton"] = 99
				again, _ := s.Country(ctx, "new acme")
				So(again.Ranks["import_ton"], ShouldEqual, 1)
			})

			Convey("And a later snapshot replaces it", func() {
				So(s.Replace(ctx, &repository.Snapshot{RunID: "run-2"}), ShouldBeNil)
				cur, err := s.Current(ctx)
				So(err, ShouldBeNil)
				So(cur.RunID, ShouldEqual, "run-2")
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})
	})

	Convey("Given concurrent readers and a writer", t, func() {
		s := repository.NewSnapshotStore()
		So(s.Replace(ctx, &repository.Snapshot{RunID: "seed"}), ShouldBeNil)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					_, _ = s.Current(ctx)
					_ = s.Count(ctx)
				}
			}()
		}
		for range 10 {
			_ = s.Replace(ctx, &repository.Snapshot{RunID: "next"})
		}
		wg.Wait()

		cur, err := s.Current(ctx)
		So(err, ShouldBeNil)
		So(cur.RunID, ShouldEqual, "next")
	})
}
