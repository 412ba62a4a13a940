package qsim

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMeasure(t *testing.T) {
	Convey("Given a fixed random source", t, func() {
		rng := rand.New(rand.NewPCG(1, 2))

		Convey("Measuring |0⟩ should always yield 0 and leave the state alone", func() {
			for i := 0; i < 100; i++ {
				re, im := basisState(1, 0)
				outcome, err := Measure(re, im, 1, 0, rng)
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, 0)
				So(re, ShouldResemble, []float64{1, 0})
			}
		})

		Convey("Measuring |1⟩ should always yield 1", func() {
			for i := 0; i < 100; i++ {
				re, im := basisState(1, 1)
				outcome, err := Measure(re, im, 1, 0, rng)
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, 1)
			}
		})

		Convey("Measuring one half of a Bell pair should collapse the other", func() {
			for i := 0; i < 50; i++ {
				re, im := basisState(2, 0)
				So(ApplyH(re, im, 2, 0), ShouldBeNil)
				So(ApplyCX(re, im, 2, 0, 1), ShouldBeNil)

				first, err := Measure(re, im, 2, 0, rng)
				So(err, ShouldBeNil)
				So(math.Abs(probabilityMass(re, im)-1), ShouldBeLessThan, 1e-12)

				second, err := Measure(re, im, 2, 1, rng)
				So(err, ShouldBeNil)
				So(second, ShouldEqual, first)
			}
		})

		Convey("A collapsed state should measure the same way again", func() {
			re, im := randomState(3, 9)
			first, err := Measure(re, im, 3, 2, rng)
			So(err, ShouldBeNil)

			for i := 0; i < 20; i++ {
				again, err := Measure(re, im, 3, 2, rng)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
		})

		Convey("Measuring an empty state should fail without dividing", func() {
			re, im := make([]float64, 4), make([]float64, 4)
			_, err := Measure(re, im, 2, 1, rng)

			var stateErr *StateError
			So(errors.As(err, &stateErr), ShouldBeTrue)
			So(stateErr.Qubit, ShouldEqual, 1)
			So(errors.Is(err, ErrDegenerateState), ShouldBeTrue)
			So(re, ShouldResemble, []float64{0, 0, 0, 0})
		})

		Convey("A missing random source should be rejected", func() {
			re, im := basisState(1, 0)
			_, err := Measure(re, im, 1, 0, nil)
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})
	})
}

func TestMeasureAll(t *testing.T) {
	Convey("Given a superposition over three qubits", t, func() {
		rng := rand.New(rand.NewPCG(5, 6))

		Convey("It should reset to the sampled basis state", func() {
			for i := 0; i < 50; i++ {
				re, im := randomState(3, uint64(i))
				before := append([]float64(nil), re...)

				basis, err := MeasureAll(re, im, 3, rng)
				So(err, ShouldBeNil)
				So(basis, ShouldBeBetweenOrEqual, 0, 7)
				So(re[basis], ShouldEqual, 1)
				So(probabilityMass(re, im), ShouldEqual, 1)
				So(before[basis], ShouldNotEqual, 0)
			}
		})

		Convey("It should never sample a basis state with zero probability", func() {
			for i := 0; i < 200; i++ {
				re, im := basisState(3, 0)
				So(ApplyH(re, im, 3, 1), ShouldBeNil)

				basis, err := MeasureAll(re, im, 3, rng)
				So(err, ShouldBeNil)
				So(basis == 0 || basis == 2, ShouldBeTrue)
			}
		})

		Convey("It should reject an empty register", func() {
			_, err := MeasureAll(make([]float64, 8), make([]float64, 8), 3, rng)

			var stateErr *StateError
			So(errors.As(err, &stateErr), ShouldBeTrue)
			So(stateErr.Qubit, ShouldEqual, -1)
		})
	})
}

func TestSampleBasis(t *testing.T) {
	Convey("Given a draw past the cumulative sum", t, func() {
		re := []float64{0.6, 0.8, 0, 0}
		im := make([]float64, 4)

		Convey("It should fall back to the last non-zero state", func() {
			So(sampleBasis(re, im, 2), ShouldEqual, 1)
		})

		Convey("It should pick by cumulative probability otherwise", func() {
			So(sampleBasis(re, im, 0.1), ShouldEqual, 0)
			So(sampleBasis(re, im, 0.5), ShouldEqual, 1)
		})
	})
}

func TestMeasureStatistics(t *testing.T) {
	Convey("Given RY(θ)|0⟩ measured many times", t, func() {
		const trials = 10000
		theta := 2 * math.Pi / 3
		want := math.Pow(math.Sin(theta/2), 2)

		ones := 0
		for i := 0; i < trials; i++ {
			s, _ := Allocate(1)
			So(ApplyRY(s.Real(), s.Imag(), 1, 0, theta), ShouldBeNil)

			outcome, err := s.Measure(0, newShotRand(99, i))
			So(err, ShouldBeNil)
			ones += outcome
		}

		Convey("The observed frequency should follow the Born rule", func() {
			got := float64(ones) / trials
			So(got, ShouldAlmostEqual, want, 0.02)
			if math.Abs(got-want) > 0.02 {
				t.Log(spew.Sdump(ones, want))
			}
		})
	})
}

func TestBitstring(t *testing.T) {
	Convey("Given a measured basis index", t, func() {
		Convey("Classical bit 0 should be the first character", func() {
			So(Bitstring(0b01, 2, map[int]int{0: 0, 1: 1}), ShouldEqual, "10")
			So(Bitstring(0b11, 2, map[int]int{0: 0, 1: 1}), ShouldEqual, "11")
		})

		Convey("The map should route qubits to any classical bit", func() {
			So(Bitstring(0b001, 3, map[int]int{0: 2}), ShouldEqual, "001")
		})

		Convey("Unmapped classical bits should render as 0", func() {
			So(Bitstring(0b111, 4, map[int]int{1: 0}), ShouldEqual, "1000")
			So(Bitstring(0b111, 3, nil), ShouldEqual, "000")
		})
	})
}
