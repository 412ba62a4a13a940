// store.go
package qsim

import (
	"fmt"
	"math"
	"strings"
)

// MaxQubits is the largest register the store will allocate.
const MaxQubits = 30

/*
Store owns the amplitudes of an n-qubit register in Structure-of-Arrays
layout: one buffer of real parts and one of imaginary parts, each padded to a
multiple of LaneWidth. Only the first 2^n entries are logical amplitudes; the
padding is always zero and never contributes probability.

A Store is not safe for concurrent mutation. The sweep scheduler hands out
disjoint slices of it, which is the only concurrent access it supports.
*/
type Store struct {
	real    []float64
	imag    []float64
	qubits  int
	logical int
	padded  int
}

/*
Allocate creates a store for numQubits qubits initialised to |0…0⟩.
It fails before allocating when numQubits is negative or above MaxQubits.
*/
func Allocate(numQubits int) (*Store, error) {
	if numQubits < 0 {
		return nil, validationError("qubit count %d is negative", numQubits)
	}

	if numQubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits requested, maximum is %d", ErrCapacity, numQubits, MaxQubits)
	}

	s := newStore(numQubits)
	s.real[0] = 1

	return s, nil
}

func newStore(numQubits int) *Store {
	logical := 1 << numQubits
	padded := roundUp(logical, LaneWidth())

	return &Store{
		real:    make([]float64, padded),
		imag:    make([]float64, padded),
		qubits:  numQubits,
		logical: logical,
		padded:  padded,
	}
}

// Clone returns a fully independent deep copy, padding included.
func (s *Store) Clone() *Store {
	c := newStore(s.qubits)
	copy(c.real, s.real)
	copy(c.imag, s.imag)

	return c
}

// CopyFrom overwrites s with the contents of src, which must have the same size.
func (s *Store) CopyFrom(src *Store) error {
	if src.qubits != s.qubits {
		return validationError("cannot copy %d-qubit store into %d-qubit store", src.qubits, s.qubits)
	}

	copy(s.real, src.real)
	copy(s.imag, src.imag)

	return nil
}

func (s *Store) Qubits() int      { return s.qubits }
func (s *Store) LogicalSize() int { return s.logical }
func (s *Store) PaddedSize() int  { return s.padded }

// Real returns the logical prefix of the real buffer. Writes go to the store.
func (s *Store) Real() []float64 { return s.real[:s.logical] }

// Imag returns the logical prefix of the imaginary buffer.
func (s *Store) Imag() []float64 { return s.imag[:s.logical] }

// PaddedReal exposes the full real buffer including padding.
func (s *Store) PaddedReal() []float64 { return s.real }

// PaddedImag exposes the full imaginary buffer including padding.
func (s *Store) PaddedImag() []float64 { return s.imag }

// Amplitude returns the amplitude of basis state i.
func (s *Store) Amplitude(i int) complex128 {
	return complex(s.real[i], s.imag[i])
}

// Amplitudes copies the logical amplitudes out of the store.
func (s *Store) Amplitudes() []complex128 {
	out := make([]complex128, s.logical)

	for i := range out {
		out[i] = complex(s.real[i], s.imag[i])
	}

	return out
}

// Norm returns the total probability mass over the logical amplitudes.
func (s *Store) Norm() float64 {
	return probabilityMass(s.Real(), s.Imag())
}

func probabilityMass(real, imag []float64) float64 {
	var total float64

	for i := range real {
		total += real[i]*real[i] + imag[i]*imag[i]
	}

	return total
}

// String renders the first amplitudes in polar form for debugging.
func (s *Store) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Store[%d qubits, %d amplitudes]:\n", s.qubits, s.logical)

	show := min(8, s.logical)
	for i := 0; i < show; i++ {
		mag := math.Hypot(s.real[i], s.imag[i])
		phase := 0.0
		if mag > 1e-10 {
			phase = math.Atan2(s.imag[i], s.real[i]) * 180 / math.Pi
		}
		fmt.Fprintf(&sb, "  [%d]: %.6f ∠ %.3f°\n", i, mag, phase)
	}

	if show < s.logical {
		fmt.Fprintf(&sb, "  ... (%d more)\n", s.logical-show)
	}

	return sb.String()
}
