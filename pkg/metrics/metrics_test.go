package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "tradeboard")
				So(manager.subsystem, ShouldEqual, "ranking")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRows(RowsRead, 3)

			Convey("Then collectors carry the custom names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
					if f.GetName() == "test_ns_test_sub_pfx_rows_total" {
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(names["test_ns_test_sub_pfx_rows_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording row outcomes", func() {
			m.RecordRows(RowsRead, 10)
			m.RecordRows(RowsRejected, 2)
			m.RecordRows(RowsRetained, 0)

			Convey("Then the counters reflect the additions", func() {
				So(testutil.ToFloat64(m.rows.WithLabelValues(RowsRead)), ShouldEqual, 10)
				So(testutil.ToFloat64(m.rows.WithLabelValues(RowsRejected)), ShouldEqual, 2)
				So(testutil.ToFloat64(m.rows.WithLabelValues(RowsRetained)), ShouldEqual, 0)
			})
		})

		Convey("When recording dataset and ranking metrics", func() {
			m.UpdateDatasetSize(120, 6)
			m.RecordRanking("priority", "top", 1.5)
			m.RecordRanking("priority", "top", 2.5)
			m.RecordInvalidMetric()

			Convey("Then gauges and counters are updated", func() {
				So(testutil.ToFloat64(m.datasetCountries), ShouldEqual, 120)
				So(testutil.ToFloat64(m.datasetContinents), ShouldEqual, 6)
				So(testutil.ToFloat64(m.rankings.WithLabelValues("priority", "top")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.invalidMetrics), ShouldEqual, 1)
			})
		})

		Convey("When recording system metrics", func() {
			m.UpdateSystemMemoryUsage(1024 * 1024 * 100)
			m.UpdateSystemGoroutineCount(42)
			m.RecordSystemGCPauseTime(1.0)

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, 1024*1024*100)
				So(testutil.ToFloat64(m.systemGoroutines), ShouldEqual, 42)
				So(testutil.CollectAndCount(m.systemGCPauseTime), ShouldEqual, 1)
			})
		})

		Convey("When recording is disabled", func() {
			off := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordRows(RowsRead, 5)
			off.RecordIngestionFailure()

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(off.rows.WithLabelValues(RowsRead)), ShouldEqual, 0)
				So(testutil.ToFloat64(off.ingestionFailures), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		So(func() {
			RecordRows(RowsRead, 1)
			RecordIngestionFailure()
			RecordIngestionLatency(3)
			UpdateDatasetSize(1, 1)
			RecordRanking("export_ton", "both", 0.2)
			RecordInvalidMetric()
			RecordHTTPRequest("rankings", "GET", "200")
			RecordHTTPRequestDuration("rankings", "GET", "200", 1)
			RecordErrorByType("client_error", "medium")
			RecordErrorByEndpoint("rankings", "GET", "client_error")
			UpdateSystemMemoryUsage(1)
			UpdateSystemGoroutineCount(1)
			RecordSystemGCPauseTime(1)
		}, ShouldNotPanic)
		So(GetRegistry(), ShouldNotBeNil)
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager rebuilt with options", t, func() {
		Init(WithNamespace("board"), WithMetricPrefix("tb"))
		defer Init()

		RecordRows(RowsRead, 4)

		Convey("Then the served registry carries the new names", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["board_ranking_tb_rows_total"], ShouldBeTrue)
			So(names["tradeboard_ranking_rows_total"], ShouldBeFalse)
		})
	})
}
