package qsim

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func fixedProbe(available uint64, err error) func() (uint64, error) {
	return func() (uint64, error) { return available, err }
}

func TestNewGovernor(t *testing.T) {
	Convey("Given parameters for a new governor", t, func() {
		Convey("When the fraction is valid", func() {
			governor := NewGovernor(0.5, nil, nil)

			Convey("It should be properly initialized", func() {
				So(governor, ShouldNotBeNil)
				So(governor.GetThresholds(), ShouldEqual, 0.5)
				So(governor.available, ShouldEqual, 0)
				So(governor.log, ShouldNotBeNil)
			})
		})

		Convey("When the fraction is out of range", func() {
			So(NewGovernor(0, nil, nil).GetThresholds(), ShouldEqual, 0.8)
			So(NewGovernor(1.5, nil, nil).GetThresholds(), ShouldEqual, 0.8)
		})
	})
}

func TestGovernorObserve(t *testing.T) {
	Convey("Given a governor", t, func() {
		governor := NewGovernor(0.5, nil, nil)

		Convey("When observing the real host", func() {
			err := governor.Observe()

			Convey("It should see some available memory", func() {
				So(err, ShouldBeNil)
				available, budget := governor.GetResourceUsage()
				So(available, ShouldBeGreaterThan, 0)
				So(budget, ShouldEqual, float64(available)*0.5)
			})
		})

		Convey("When the probe fails", func() {
			governor.probe = fixedProbe(0, errors.New("no procfs"))

			Convey("It should report the failure", func() {
				So(governor.Observe(), ShouldNotBeNil)
			})
		})
	})
}

func TestGovernorLimit(t *testing.T) {
	Convey("Given a governor with 1000 bytes available", t, func() {
		governor := NewGovernor(0.5, nil, nil)
		governor.probe = fixedProbe(1000, nil)
		So(governor.Observe(), ShouldBeNil)

		Convey("Claims within half should pass", func() {
			So(governor.Limit(500), ShouldBeFalse)
		})

		Convey("Claims beyond half should be limited", func() {
			So(governor.Limit(501), ShouldBeTrue)
		})
	})
}

func TestGovernorAdmit(t *testing.T) {
	Convey("Given a governor", t, func() {
		metrics := NewMetrics()
		governor := NewGovernor(1, metrics, nil)
		per := StoreBytes(10)

		Convey("When everything fits", func() {
			governor.probe = fixedProbe(per*100, nil)
			workers, err := governor.Admit(10, 8)

			Convey("It should admit every worker", func() {
				So(err, ShouldBeNil)
				So(workers, ShouldEqual, 8)
				So(metrics.DegradedWorkers, ShouldEqual, 0)
			})
		})

		Convey("When only some workers fit", func() {
			governor.probe = fixedProbe(per*4, nil)
			workers, err := governor.Admit(10, 8)

			Convey("It should shed the rest", func() {
				So(err, ShouldBeNil)
				So(workers, ShouldEqual, 3)
				So(metrics.DegradedWorkers, ShouldEqual, 5)
			})
		})

		Convey("When the base register does not fit", func() {
			governor.probe = fixedProbe(per-1, nil)
			_, err := governor.Admit(10, 8)

			Convey("It should refuse with a capacity error", func() {
				So(errors.Is(err, ErrCapacity), ShouldBeTrue)
			})
		})

		Convey("When the probe fails", func() {
			governor.probe = fixedProbe(0, errors.New("no procfs"))
			workers, err := governor.Admit(10, 8)

			Convey("It should admit the run unchanged", func() {
				So(err, ShouldBeNil)
				So(workers, ShouldEqual, 8)
			})
		})
	})
}

func TestStoreBytes(t *testing.T) {
	Convey("Given register sizes", t, func() {
		Convey("It should count both buffers including padding", func() {
			So(StoreBytes(10), ShouldEqual, uint64(2*8*1024))
			So(StoreBytes(0), ShouldEqual, uint64(2*8*LaneWidth()))
		})
	})
}
