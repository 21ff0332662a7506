package types_test

import (
	"testing"
	"time"

	types "github.com/okian/ttfl/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLock(t *testing.T) {
	Convey("Given a lock ending on February 9th", t, func() {
		l := types.Lock{
			Player:     "a",
			LastPick:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			UnlockDate: time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
		}

		Convey("Then it should bind the day before", func() {
			So(l.Active(time.Date(2025, 2, 8, 23, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("And release on the unlock date", func() {
			So(l.Active(time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)), ShouldBeFalse)
		})
	})
}
