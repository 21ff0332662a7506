package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.recommendations.Inc()

			Convey("Then collectors should be registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_sub_recommendations_total"], ShouldBeTrue)
				So(names["test_sub_ranking_duration_milliseconds"], ShouldBeTrue)
			})
		})

		Convey("When creating two managers on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second should panic on duplicate registration", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the default global manager", t, func() {
		previous, previousRegistry := globalManager, customRegistry
		Reset(func() { globalManager, customRegistry = previous, previousRegistry })

		Convey("When reinitialising with a custom prefix and labels", func() {
			Init(
				WithNamespace("fantasy"),
				WithSubsystem("nba"),
				WithHistogramBuckets([]float64{1, 5}),
				WithConstLabels(map[string]string{"league": "ttfl"}),
			)
			RecordPick(false)

			Convey("Then the new registry should expose the renamed metrics", func() {
				So(GetRegistry(), ShouldNotEqual, previousRegistry)
				n, err := testutil.GatherAndCount(GetRegistry(), "fantasy_nba_picks_recorded_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.picksRecorded), ShouldEqual, 1)
			})

			Convey("And the previous registry should keep its own collectors", func() {
				n, err := testutil.GatherAndCount(previousRegistry, "fantasy_nba_picks_recorded_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a recommendation", func() {
			before := testutil.ToFloat64(globalManager.recommendations)
			RecordRecommendation(1.5, 12, 3)

			Convey("Then counters and gauges should move", func() {
				So(testutil.ToFloat64(globalManager.recommendations), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.eligiblePlayers), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.lockedPlayers), ShouldEqual, 3)
			})
		})

		Convey("When recording exclusions", func() {
			c := globalManager.exclusions.WithLabelValues("locked")
			before := testutil.ToFloat64(c)
			RecordExclusions("locked", 2)
			RecordExclusions("locked", 0)
			So(testutil.ToFloat64(c), ShouldEqual, before+2)
		})

		Convey("When recording picks", func() {
			rec := testutil.ToFloat64(globalManager.picksRecorded)
			dup := testutil.ToFloat64(globalManager.picksDuplicate)
			RecordPick(false)
			RecordPick(true)
			RecordPick(true)
			So(testutil.ToFloat64(globalManager.picksRecorded), ShouldEqual, rec+1)
			So(testutil.ToFloat64(globalManager.picksDuplicate), ShouldEqual, dup+2)
		})

		Convey("When recording a plan", func() {
			days := testutil.ToFloat64(globalManager.planDays)
			RecordPlan(7, 6, 3)
			So(testutil.ToFloat64(globalManager.planDays), ShouldEqual, days+7)
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordDataGap()
				RecordHTTPRequest("/recommendations", "GET", "200")
				RecordHTTPRequestDuration("/recommendations", "GET", "200", 4.2)
				RecordError("planner", "data_gap")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
				UpdateDatasetSize(120, 450)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 8)
			So(testutil.ToFloat64(globalManager.scheduledDates), ShouldEqual, 120)
			So(testutil.ToFloat64(globalManager.knownPlayers), ShouldEqual, 450)
		})

		Convey("Then the custom registry should expose them", func() {
			So(GetRegistry(), ShouldNotBeNil)
			n, err := testutil.GatherAndCount(GetRegistry(), "ttfl_picker_picks_recorded_total")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})
}
