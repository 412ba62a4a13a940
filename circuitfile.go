package qsim

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

/*
circuitFile is the YAML form of a circuit:

	qubits: 2
	clbits: 2
	shots: 1000
	ops:
	  - {gate: h, qubits: [0]}
	  - {gate: cx, qubits: [0, 1]}
	  - {gate: rz, qubits: [1], theta: 0.25}
	  - {gate: barrier}
	measure: {0: 0, 1: 1}
*/
type circuitFile struct {
	Qubits     int         `yaml:"qubits"`
	Clbits     int         `yaml:"clbits"`
	Shots      int         `yaml:"shots"`
	DumpState  bool        `yaml:"dump_state"`
	Ops        []opEntry   `yaml:"ops"`
	Measure    map[int]int `yaml:"measure"`
	MeasureAll bool        `yaml:"measure_all"`
}

type opEntry struct {
	Gate   string   `yaml:"gate"`
	Qubits []int    `yaml:"qubits"`
	Theta  *float64 `yaml:"theta"`
}

// LoadCircuit decodes and validates a YAML circuit. Unknown keys are rejected.
func LoadCircuit(r io.Reader) (*Circuit, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f circuitFile
	if err := dec.Decode(&f); err != nil {
		return nil, validationError("decode circuit: %v", err)
	}

	c := NewCircuit(f.Qubits, f.Clbits)
	c.Shots = f.Shots
	c.DumpState = f.DumpState

	for i, entry := range f.Ops {
		op, err := entry.operation()
		if err != nil {
			return nil, fmt.Errorf("ops[%d]: %w", i, err)
		}
		c.Ops = append(c.Ops, op)
	}

	for q, cbit := range f.Measure {
		c.Measure(q, cbit)
	}

	if f.MeasureAll {
		c.MeasureAll()
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadCircuitFile opens path and hands it to LoadCircuit.
func LoadCircuitFile(path string) (*Circuit, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return LoadCircuit(fh)
}

func (entry opEntry) operation() (Operation, error) {
	if strings.EqualFold(strings.TrimSpace(entry.Gate), "barrier") {
		return Barrier{Qubits: entry.Qubits}, nil
	}

	kind, err := ParseGateKind(entry.Gate)
	if err != nil {
		return nil, err
	}

	switch kind {
	case GateCX, GateCZ, GateSWAP:
		if len(entry.Qubits) != 2 {
			return nil, validationError("%s takes 2 qubits, got %d", kind, len(entry.Qubits))
		}
		return TwoQubitGate{Kind: kind, Control: entry.Qubits[0], Target: entry.Qubits[1]}, nil
	}

	if len(entry.Qubits) != 1 {
		return nil, validationError("%s takes 1 qubit, got %d", kind, len(entry.Qubits))
	}

	switch kind {
	case GateRX, GateRY, GateRZ:
		if entry.Theta == nil {
			return nil, validationError("%s needs theta", kind)
		}
		return RotationGate{Kind: kind, Qubit: entry.Qubits[0], Theta: *entry.Theta}, nil
	}

	if entry.Theta != nil {
		return nil, validationError("%s takes no theta", kind)
	}

	return FixedGate{Kind: kind, Qubit: entry.Qubits[0]}, nil
}
