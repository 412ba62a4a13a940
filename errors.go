package qsim

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed arguments detected before any mutation.
	ErrValidation = errors.New("invalid argument")

	// ErrCapacity is returned when a register cannot be allocated.
	ErrCapacity = errors.New("register exceeds capacity")

	// ErrUnsupportedGate is returned when the engine has no kernel for a gate kind.
	ErrUnsupportedGate = errors.New("unsupported gate")

	// ErrDegenerateState is returned when a measurement meets zero probability mass.
	ErrDegenerateState = errors.New("degenerate state")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

/*
UnsupportedGateError names the engine and the gate kind it could not apply.
A run that hits it is aborted without a partial result.
*/
type UnsupportedGateError struct {
	Engine string
	Kind   GateKind
}

func (e *UnsupportedGateError) Error() string {
	return fmt.Sprintf("%s engine: gate %s not supported", e.Engine, e.Kind)
}

func (e *UnsupportedGateError) Is(target error) bool {
	return target == ErrUnsupportedGate
}

/*
StateError reports a measurement against a state whose probability mass is
numerically zero, either in total or for the selected outcome. Qubit is -1
for full-register measurements.
*/
type StateError struct {
	Qubit int
	Mass  float64
}

func (e *StateError) Error() string {
	if e.Qubit < 0 {
		return fmt.Sprintf("cannot measure register: probability mass %g", e.Mass)
	}

	return fmt.Sprintf("cannot measure qubit %d: probability mass %g", e.Qubit, e.Mass)
}

func (e *StateError) Is(target error) bool {
	return target == ErrDegenerateState
}
