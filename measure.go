package qsim

import (
	"math"
	"math/rand/v2"
)

// massEpsilon is the probability mass below which a state counts as empty.
const massEpsilon = 1e-12

/*
Measure performs a Born-rule measurement of qubit and collapses the state in
place: amplitudes inconsistent with the outcome are zeroed and the rest are
rescaled by 1/sqrt(p). The outcome is drawn against the total mass, so a
slightly denormalised state still measures with the right odds.
*/
func Measure(real, imag []float64, numQubits, qubit int, rng *rand.Rand) (int, error) {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return 0, err
	}

	if rng == nil {
		return 0, validationError("random source must not be nil")
	}

	mask := 1 << qubit
	var p0, p1 float64

	for i := range real {
		p := real[i]*real[i] + imag[i]*imag[i]
		if i&mask == 0 {
			p0 += p
		} else {
			p1 += p
		}
	}

	total := p0 + p1
	if total < massEpsilon {
		return 0, &StateError{Qubit: qubit, Mass: total}
	}

	outcome, kept := 0, p0
	if rng.Float64()*total >= p0 {
		outcome, kept = 1, p1
	}

	if kept < massEpsilon {
		return 0, &StateError{Qubit: qubit, Mass: kept}
	}

	scale := 1 / math.Sqrt(kept)
	want := outcome * mask

	for i := range real {
		if i&mask == want {
			real[i] *= scale
			imag[i] *= scale
		} else {
			real[i], imag[i] = 0, 0
		}
	}

	return outcome, nil
}

/*
MeasureAll samples the whole register with one inverse-CDF draw and resets it
to the sampled basis state with amplitude 1+0i. Bit q of the returned index is
the outcome of qubit q. If rounding leaves the cumulative sum short of the
draw, the last basis state with non-zero probability is chosen.
*/
func MeasureAll(real, imag []float64, numQubits int, rng *rand.Rand) (int, error) {
	if err := checkBuffers(real, imag, numQubits); err != nil {
		return 0, err
	}

	if rng == nil {
		return 0, validationError("random source must not be nil")
	}

	total := probabilityMass(real, imag)
	if total < massEpsilon {
		return 0, &StateError{Qubit: -1, Mass: total}
	}

	basis := sampleBasis(real, imag, rng.Float64()*total)

	clear(real)
	clear(imag)
	real[basis] = 1

	return basis, nil
}

func sampleBasis(real, imag []float64, r float64) int {
	var cumulative float64
	last := 0

	for i := range real {
		p := real[i]*real[i] + imag[i]*imag[i]
		if p == 0 {
			continue
		}

		last = i
		cumulative += p
		if r < cumulative {
			return i
		}
	}

	return last
}

// Measure measures qubit q of the store in place.
func (s *Store) Measure(q int, rng *rand.Rand) (int, error) {
	return Measure(s.Real(), s.Imag(), s.qubits, q, rng)
}

// MeasureAll collapses the whole store onto one sampled basis state.
func (s *Store) MeasureAll(rng *rand.Rand) (int, error) {
	return MeasureAll(s.Real(), s.Imag(), s.qubits, rng)
}

// Probabilities returns |amplitude|² for every logical basis state.
func (s *Store) Probabilities() []float64 {
	out := make([]float64, s.logical)

	for i := range out {
		out[i] = s.real[i]*s.real[i] + s.imag[i]*s.imag[i]
	}

	return out
}

/*
Bitstring projects a measured basis index through measureMap onto a classical
register of clbits characters. Character c holds classical bit c; bits that
no qubit maps to render as '0'.
*/
func Bitstring(basis, clbits int, measureMap map[int]int) string {
	bits := make([]byte, clbits)
	for i := range bits {
		bits[i] = '0'
	}

	for q, c := range measureMap {
		if c >= 0 && c < clbits && basis>>q&1 == 1 {
			bits[c] = '1'
		}
	}

	return string(bits)
}

// newShotRand derives the generator for one shot from the run seed.
func newShotRand(seed uint64, shot int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(shot)))
}
