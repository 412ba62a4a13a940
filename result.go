package qsim

import (
	"math/cmplx"
	"sort"
	"time"
)

/*
Result is what a run hands back to the caller. The engine keeps no reference
to it. Amplitudes is nil unless the state was requested.
*/
type Result struct {
	RunID         string
	Engine        string
	Qubits        int
	ClassicalBits int
	Counts        map[string]int
	Shots         int
	GateCount     int
	Elapsed       time.Duration
	Amplitudes    []complex128
}

// Probability returns |amplitude|² of basis, and false if the state was not kept.
func (r *Result) Probability(basis int) (float64, bool) {
	if basis < 0 || basis >= len(r.Amplitudes) {
		return 0, false
	}

	a := cmplx.Abs(r.Amplitudes[basis])
	return a * a, true
}

// Frequency returns the observed share of shots that produced bits.
func (r *Result) Frequency(bits string) float64 {
	if r.Shots == 0 {
		return 0
	}

	return float64(r.Counts[bits]) / float64(r.Shots)
}

// Bitstrings lists the observed outcomes in lexical order.
func (r *Result) Bitstrings() []string {
	out := make([]string, 0, len(r.Counts))
	for bits := range r.Counts {
		out = append(out, bits)
	}
	sort.Strings(out)

	return out
}

// MostFrequent returns the outcome with the highest count. Ties go to the lexically smallest.
func (r *Result) MostFrequent() (string, int) {
	best, count := "", -1

	for _, bits := range r.Bitstrings() {
		if n := r.Counts[bits]; n > count {
			best, count = bits, n
		}
	}

	return best, max(count, 0)
}
