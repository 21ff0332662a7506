package risk_test

import (
	"testing"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDNPRisk(t *testing.T) {
	Convey("Given the injury designations", t, func() {
		Convey("Then each should map to its fixed DNP risk", func() {
			So(risk.DNPRisk(model.Healthy), ShouldEqual, 0.0)
			So(risk.DNPRisk(model.Probable), ShouldEqual, 0.10)
			So(risk.DNPRisk(model.Questionable), ShouldEqual, 0.40)
			So(risk.DNPRisk(model.Doubtful), ShouldEqual, 0.75)
			So(risk.DNPRisk(model.Out), ShouldEqual, 1.0)
		})

		Convey("And percentages should scale by 100", func() {
			So(risk.DNPRiskPercent(model.Questionable), ShouldAlmostEqual, 40.0, 1e-9)
		})

		Convey("And day-to-day reports should take the questionable risk", func() {
			for _, text := range []string{"day-to-day", "GTD"} {
				st, ok := model.ParseInjuryStatus(text)
				So(ok, ShouldBeTrue)
				So(risk.DNPRisk(st), ShouldEqual, 0.40)
			}
		})

		Convey("And an unknown status should carry no risk", func() {
			So(risk.DNPRisk(model.InjuryStatus(-1)), ShouldEqual, 0.0)
		})
	})
}

func TestAdjust(t *testing.T) {
	Convey("Given a baseline of 50", t, func() {
		const baseline = 50.0

		Convey("When the player is healthy", func() {
			Convey("Then the adjusted score should equal the baseline", func() {
				So(risk.Adjust(baseline, model.Healthy), ShouldEqual, baseline)
			})
		})

		Convey("When the player is questionable", func() {
			So(risk.Adjust(baseline, model.Questionable), ShouldAlmostEqual, 30.0, 1e-9)
		})

		Convey("When the status worsens", func() {
			Convey("Then the adjusted score should never increase", func() {
				prev := risk.Adjust(baseline, model.Healthy)
				for _, st := range []model.InjuryStatus{model.Probable, model.Questionable, model.Doubtful, model.Out} {
					cur := risk.Adjust(baseline, st)
					So(cur, ShouldBeLessThanOrEqualTo, prev)
					prev = cur
				}
				So(prev, ShouldEqual, 0.0)
			})
		})
	})
}
