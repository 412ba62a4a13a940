// circuit.go
package qsim

import (
	"fmt"
	"math"
	"strings"
)

// GateKind identifies a gate type.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateY
	GateZ
	GateS
	GateSdg
	GateT
	GateTdg
	GateRX
	GateRY
	GateRZ
	GateCX
	GateCZ
	GateSWAP
)

var gateNames = [...]string{
	GateH:    "H",
	GateX:    "X",
	GateY:    "Y",
	GateZ:    "Z",
	GateS:    "S",
	GateSdg:  "SDG",
	GateT:    "T",
	GateTdg:  "TDG",
	GateRX:   "RX",
	GateRY:   "RY",
	GateRZ:   "RZ",
	GateCX:   "CX",
	GateCZ:   "CZ",
	GateSWAP: "SWAP",
}

func (k GateKind) String() string {
	if k >= 0 && int(k) < len(gateNames) {
		return gateNames[k]
	}

	return fmt.Sprintf("GateKind(%d)", int(k))
}

// ParseGateKind maps a gate name such as "cx" or "Sdg" to its kind.
func ParseGateKind(name string) (GateKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))

	switch upper {
	case "CNOT":
		return GateCX, nil
	case "S†", "SDAG":
		return GateSdg, nil
	case "T†", "TDAG":
		return GateTdg, nil
	}

	for k, n := range gateNames {
		if n == upper {
			return GateKind(k), nil
		}
	}

	return 0, validationError("unknown gate %q", name)
}

/*
Operation is one step of a circuit. The set of implementations is closed:
FixedGate, RotationGate, TwoQubitGate and Barrier.
*/
type Operation interface {
	operation()
}

// FixedGate is a single-qubit gate without parameters.
type FixedGate struct {
	Kind  GateKind
	Qubit int
}

// RotationGate is a single-qubit rotation by Theta radians.
type RotationGate struct {
	Kind  GateKind
	Qubit int
	Theta float64
}

// TwoQubitGate acts on two distinct qubits.
type TwoQubitGate struct {
	Kind    GateKind
	Control int
	Target  int
}

// Barrier carries scheduling intent only. An empty Qubits spans the register.
type Barrier struct {
	Qubits []int
}

func (FixedGate) operation()    {}
func (RotationGate) operation() {}
func (TwoQubitGate) operation() {}
func (Barrier) operation()      {}

/*
Circuit is the read-only input of the engine: qubit count, ordered
operations, classical register width and the measurement map from qubit
index to classical bit index.
*/
type Circuit struct {
	Qubits        int
	Ops           []Operation
	ClassicalBits int
	MeasureMap    map[int]int
	Shots         int
	DumpState     bool
}

// NewCircuit starts an empty circuit over the given registers.
func NewCircuit(qubits, clbits int) *Circuit {
	return &Circuit{
		Qubits:        qubits,
		ClassicalBits: clbits,
		MeasureMap:    make(map[int]int),
	}
}

func (c *Circuit) H(q int) *Circuit   { return c.Fixed(GateH, q) }
func (c *Circuit) X(q int) *Circuit   { return c.Fixed(GateX, q) }
func (c *Circuit) Y(q int) *Circuit   { return c.Fixed(GateY, q) }
func (c *Circuit) Z(q int) *Circuit   { return c.Fixed(GateZ, q) }
func (c *Circuit) S(q int) *Circuit   { return c.Fixed(GateS, q) }
func (c *Circuit) Sdg(q int) *Circuit { return c.Fixed(GateSdg, q) }
func (c *Circuit) T(q int) *Circuit   { return c.Fixed(GateT, q) }
func (c *Circuit) Tdg(q int) *Circuit { return c.Fixed(GateTdg, q) }

func (c *Circuit) RX(q int, theta float64) *Circuit { return c.Rotate(GateRX, q, theta) }
func (c *Circuit) RY(q int, theta float64) *Circuit { return c.Rotate(GateRY, q, theta) }
func (c *Circuit) RZ(q int, theta float64) *Circuit { return c.Rotate(GateRZ, q, theta) }

func (c *Circuit) CX(control, target int) *Circuit { return c.Pair(GateCX, control, target) }
func (c *Circuit) CZ(control, target int) *Circuit { return c.Pair(GateCZ, control, target) }
func (c *Circuit) SWAP(a, b int) *Circuit          { return c.Pair(GateSWAP, a, b) }

// Fixed appends a parameterless single-qubit gate.
func (c *Circuit) Fixed(kind GateKind, q int) *Circuit {
	c.Ops = append(c.Ops, FixedGate{Kind: kind, Qubit: q})
	return c
}

// Rotate appends a parameterised single-qubit rotation.
func (c *Circuit) Rotate(kind GateKind, q int, theta float64) *Circuit {
	c.Ops = append(c.Ops, RotationGate{Kind: kind, Qubit: q, Theta: theta})
	return c
}

// Pair appends a two-qubit gate.
func (c *Circuit) Pair(kind GateKind, a, b int) *Circuit {
	c.Ops = append(c.Ops, TwoQubitGate{Kind: kind, Control: a, Target: b})
	return c
}

// Barrier appends a barrier over the given qubits, or all of them.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	c.Ops = append(c.Ops, Barrier{Qubits: qubits})
	return c
}

// Measure maps qubit q onto classical bit cbit.
func (c *Circuit) Measure(q, cbit int) *Circuit {
	if c.MeasureMap == nil {
		c.MeasureMap = make(map[int]int)
	}
	c.MeasureMap[q] = cbit
	return c
}

// MeasureAll maps every qubit onto the classical bit of the same index,
// widening the classical register if needed.
func (c *Circuit) MeasureAll() *Circuit {
	c.ClassicalBits = max(c.ClassicalBits, c.Qubits)
	for q := 0; q < c.Qubits; q++ {
		c.Measure(q, q)
	}
	return c
}

// HasMeasurements reports whether any qubit is mapped to a classical bit.
func (c *Circuit) HasMeasurements() bool {
	return len(c.MeasureMap) > 0
}

/*
Validate checks every index the circuit references. The engine relies on it
so that kernels only ever see in-range qubits.
*/
func (c *Circuit) Validate() error {
	if c.Qubits < 0 {
		return validationError("qubit count %d is negative", c.Qubits)
	}

	if c.ClassicalBits < 0 {
		return validationError("classical bit count %d is negative", c.ClassicalBits)
	}

	if c.Shots < 0 {
		return validationError("shot count %d is negative", c.Shots)
	}

	for q, cbit := range c.MeasureMap {
		if err := c.checkQubit(q); err != nil {
			return fmt.Errorf("measure map: %w", err)
		}
		if cbit < 0 || cbit >= c.ClassicalBits {
			return validationError("measure map: classical bit %d out of range [0, %d)", cbit, c.ClassicalBits)
		}
	}

	for i, op := range c.Ops {
		if err := c.checkOperation(op); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}

	return nil
}

func (c *Circuit) checkOperation(op Operation) error {
	switch op := op.(type) {
	case FixedGate:
		return c.checkQubit(op.Qubit)
	case RotationGate:
		if math.IsNaN(op.Theta) || math.IsInf(op.Theta, 0) {
			return validationError("%s angle %v is not finite", op.Kind, op.Theta)
		}
		return c.checkQubit(op.Qubit)
	case TwoQubitGate:
		if op.Control == op.Target {
			return validationError("%s operands must differ, both are %d", op.Kind, op.Control)
		}
		if err := c.checkQubit(op.Control); err != nil {
			return err
		}
		return c.checkQubit(op.Target)
	case Barrier:
		for _, q := range op.Qubits {
			if err := c.checkQubit(q); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return validationError("nil operation")
	}

	return validationError("unknown operation %T", op)
}

func (c *Circuit) checkQubit(q int) error {
	if q < 0 || q >= c.Qubits {
		return validationError("qubit %d out of range [0, %d)", q, c.Qubits)
	}

	return nil
}

// GateCount returns the number of non-barrier operations.
func (c *Circuit) GateCount() int {
	n := 0

	for _, op := range c.Ops {
		if _, ok := op.(Barrier); !ok {
			n++
		}
	}

	return n
}
