package qsim

import (
	"errors"
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseGateKind(t *testing.T) {
	Convey("Given gate names", t, func() {
		Convey("Canonical names should parse in any case", func() {
			for _, name := range []string{"h", "X", "sdg", "Tdg", "rz", "cx", "SWAP"} {
				kind, err := ParseGateKind(name)
				So(err, ShouldBeNil)
				So(kind.String(), ShouldEqual, strings.ToUpper(name))
			}
		})

		Convey("Aliases should map onto their kind", func() {
			kind, _ := ParseGateKind("cnot")
			So(kind, ShouldEqual, GateCX)
			kind, _ = ParseGateKind("sdag")
			So(kind, ShouldEqual, GateSdg)
		})

		Convey("Unknown names should fail validation", func() {
			_, err := ParseGateKind("toffoli")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})
	})
}

func TestCircuitBuilder(t *testing.T) {
	Convey("Given a circuit built fluently", t, func() {
		c := NewCircuit(3, 1).H(0).RX(1, 0.5).CZ(0, 2).Barrier(0, 1).S(2).Measure(2, 0)

		Convey("It should record operations in order", func() {
			So(c.Ops, ShouldHaveLength, 5)
			So(c.Ops[0], ShouldResemble, FixedGate{Kind: GateH, Qubit: 0})
			So(c.Ops[1], ShouldResemble, RotationGate{Kind: GateRX, Qubit: 1, Theta: 0.5})
			So(c.Ops[2], ShouldResemble, TwoQubitGate{Kind: GateCZ, Control: 0, Target: 2})
			So(c.Ops[3], ShouldResemble, Barrier{Qubits: []int{0, 1}})
		})

		Convey("Barriers should not count as gates", func() {
			So(c.GateCount(), ShouldEqual, 4)
		})

		Convey("It should validate", func() {
			So(c.Validate(), ShouldBeNil)
			So(c.HasMeasurements(), ShouldBeTrue)
		})

		Convey("MeasureAll should widen the classical register", func() {
			c.MeasureAll()
			So(c.ClassicalBits, ShouldEqual, 3)
			So(c.MeasureMap, ShouldResemble, map[int]int{0: 0, 1: 1, 2: 2})
		})
	})
}

func TestCircuitValidate(t *testing.T) {
	Convey("Given invalid circuits", t, func() {
		cases := []struct {
			name    string
			circuit *Circuit
		}{
			{"a negative qubit count", NewCircuit(-1, 0)},
			{"a negative classical register", NewCircuit(1, -1)},
			{"a qubit out of range", NewCircuit(2, 0).H(2)},
			{"equal two-qubit operands", NewCircuit(2, 0).CX(1, 1)},
			{"a non-finite angle", NewCircuit(1, 0).RZ(0, math.NaN())},
			{"a barrier out of range", NewCircuit(1, 0).Barrier(4)},
			{"a classical bit out of range", NewCircuit(2, 1).Measure(0, 1)},
			{"a measured qubit out of range", NewCircuit(2, 2).Measure(2, 0)},
			{"a nil operation", &Circuit{Qubits: 1, Ops: []Operation{nil}}},
		}

		for _, tc := range cases {
			Convey("It should reject "+tc.name, func() {
				So(errors.Is(tc.circuit.Validate(), ErrValidation), ShouldBeTrue)
			})
		}

		Convey("It should report the failing operation", func() {
			err := NewCircuit(2, 0).H(0).X(5).Validate()
			So(err.Error(), ShouldContainSubstring, "operation 1")
		})
	})
}
