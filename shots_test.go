package qsim

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRunShots(t *testing.T) {
	Convey("Given a base register in |+⟩", t, func() {
		base, _ := Allocate(1)
		So(ApplyH(base.Real(), base.Imag(), 1, 0), ShouldBeNil)
		c := NewCircuit(1, 1).Measure(0, 0)
		metrics := NewMetrics()

		Convey("When replaying shots on several workers", func() {
			counts, err := runShots(context.Background(), base, c, 1000, 4, 7, metrics)

			Convey("Every shot should land in the histogram", func() {
				So(err, ShouldBeNil)
				So(counts["0"]+counts["1"], ShouldEqual, 1000)
				So(counts["0"], ShouldBeGreaterThan, 400)
				So(counts["1"], ShouldBeGreaterThan, 400)
				So(metrics.Shots, ShouldEqual, 1000)
			})

			Convey("The base register should be untouched", func() {
				So(base.Real()[0], ShouldAlmostEqual, invSqrt2, 1e-12)
				So(base.Real()[1], ShouldAlmostEqual, invSqrt2, 1e-12)
			})
		})

		Convey("When more workers than shots are requested", func() {
			counts, err := runShots(context.Background(), base, c, 3, 16, 7, nil)

			Convey("It should still run every shot", func() {
				So(err, ShouldBeNil)
				So(counts["0"]+counts["1"], ShouldEqual, 3)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := runShots(ctx, base, c, 1000, 2, 7, nil)

			Convey("It should report the cancellation", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given an empty base register", t, func() {
		base := newStore(1)
		c := NewCircuit(1, 1).Measure(0, 0)

		_, err := runShots(context.Background(), base, c, 10, 2, 7, nil)

		Convey("The first failure should stop the pool", func() {
			So(errors.Is(err, ErrDegenerateState), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "shot")
		})
	})
}
