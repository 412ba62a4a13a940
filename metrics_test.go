package qsim

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given fresh metrics", t, func() {
		m := NewMetrics()

		Convey("When recording dispatches", func() {
			m.recordDispatch(1)
			m.recordDispatch(4)
			m.recordDispatch(4)

			Convey("Only multi-slice dispatches should count as parallel", func() {
				So(m.SliceDispatches, ShouldEqual, 3)
				So(m.ParallelDispatches, ShouldEqual, 2)
				So(m.Slices, ShouldEqual, 9)
			})
		})

		Convey("When recording runs", func() {
			for i := 0; i < 99; i++ {
				m.recordRun(time.Now(), true)
			}
			m.recordRun(time.Now().Add(-time.Second), false)

			Convey("It should track the success rate and tail latency", func() {
				out := m.ExportMetrics()
				So(out["runs"], ShouldEqual, int64(100))
				So(out["success_rate"], ShouldAlmostEqual, 0.99, 1e-9)
				So(m.P99RunLatency, ShouldBeGreaterThanOrEqualTo, time.Second)
				So(m.P95RunLatency, ShouldBeLessThan, time.Second)
			})
		})

		Convey("When the window overflows", func() {
			m.windowSize = 10
			for i := 0; i < 25; i++ {
				m.recordRun(time.Now(), true)
			}

			Convey("It should keep only the newest samples", func() {
				So(m.latencyWindows, ShouldHaveLength, 10)
				So(m.Runs, ShouldEqual, 25)
			})
		})
	})

	Convey("Given nil metrics", t, func() {
		var m *Metrics

		Convey("Recording should be a no-op", func() {
			So(func() {
				m.recordDispatch(2)
				m.recordGate()
				m.recordShots(3)
				m.recordDegraded(1)
				m.recordRun(time.Now(), true)
			}, ShouldNotPanic)
		})
	})
}
