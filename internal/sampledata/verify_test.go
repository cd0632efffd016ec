package sampledata_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tradeboard/internal/domain/types"
	"github.com/okian/tradeboard/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func result(top ...types.Entry) types.Result {
	return types.Result{
		Metrics:    []string{"priority"},
		Continents: map[string]map[string]types.Group{"Asia": {"priority": {Top: top}}},
	}
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	want := result(types.Entry{Rank: 1, Country: "Acme", Continent: "Asia", Value: 1120})

	Convey("Given a server answering health and rankings", t, func() {
		var query string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.WriteHeader(http.StatusOK)
			case "/rankings":
				query = r.URL.RawQuery
				_ = json.NewEncoder(w).Encode(want)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()
		c := sampledata.NewClient(srv.URL, time.Second, nil)

		Convey("Then the health check passes", func() {
			So(c.CheckHealth(ctx), ShouldBeNil)
		})

		Convey("When rankings are fetched", func() {
			got, err := c.Rankings(ctx, "priority", 1, "top")

			Convey("Then the query carries every parameter and the result decodes", func() {
				So(err, ShouldBeNil)
				So(query, ShouldEqual, "limit=1&metric=priority&mode=top")
				So(sampledata.Compare(want, got, "priority"), ShouldBeNil)
			})
		})
	})

	Convey("Given a server that is still loading", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		c := sampledata.NewClient(srv.URL, time.Second, nil)

		Convey("Then health and rankings fail", func() {
			So(c.CheckHealth(ctx), ShouldNotBeNil)
			_, err := c.Rankings(ctx, "priority", 1, "top")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "HTTP 503")
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given a reference result", t, func() {
		want := result(
			types.Entry{Rank: 1, Country: "Acme", Value: 10},
			types.Entry{Rank: 2, Country: "Beta", Value: 5},
		)

		Convey("Then a swapped order is a mismatch", func() {
			got := result(
				types.Entry{Rank: 1, Country: "Beta", Value: 5},
				types.Entry{Rank: 2, Country: "Acme", Value: 10},
			)
			err := sampledata.Compare(want, got, "priority")
			So(errors.Is(err, sampledata.ErrMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Asia top #1")
		})

		Convey("Then a missing continent is a mismatch", func() {
			err := sampledata.Compare(want, types.Result{}, "priority")
			So(errors.Is(err, sampledata.ErrMismatch), ShouldBeTrue)
		})

		Convey("Then a missing metric is a mismatch", func() {
			got := types.Result{Continents: map[string]map[string]types.Group{"Asia": {}}}
			So(errors.Is(sampledata.Compare(want, got, "priority"), sampledata.ErrMismatch), ShouldBeTrue)
		})
	})
}
