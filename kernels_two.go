package qsim

/*
Two-qubit kernels walk their slice index by index and let bit tests decide
which amplitudes move. The base of a CX pair has the control bit set and the
target bit clear; the base of a SWAP pair has the first qubit's bit clear and
the second one's set. CZ is diagonal and only touches its own slice.
*/

func controlledX(real, imag []float64, control, target int, s Slice) {
	cm, tm := 1<<control, 1<<target

	for i := s.Start; i < s.End; i++ {
		if i&cm == 0 || i&tm != 0 {
			continue
		}

		j := i | tm
		real[i], real[j] = real[j], real[i]
		imag[i], imag[j] = imag[j], imag[i]
	}
}

func controlledZ(real, imag []float64, a, b int, s Slice) {
	both := 1<<a | 1<<b

	for i := s.Start; i < s.End; i++ {
		if i&both == both {
			real[i] = -real[i]
			imag[i] = -imag[i]
		}
	}
}

func swap(real, imag []float64, a, b int, s Slice) {
	am, bm := 1<<a, 1<<b

	for i := s.Start; i < s.End; i++ {
		if i&am != 0 || i&bm == 0 {
			continue
		}

		j := (i | am) &^ bm
		real[i], real[j] = real[j], real[i]
		imag[i], imag[j] = imag[j], imag[i]
	}
}

func checkPair(real, imag []float64, numQubits, a, b int) error {
	if err := checkBuffers(real, imag, numQubits); err != nil {
		return err
	}

	for _, q := range [2]int{a, b} {
		if q < 0 || q >= numQubits {
			return validationError("qubit %d out of range [0, %d)", q, numQubits)
		}
	}

	if a == b {
		return validationError("two-qubit gate operands must differ, both are %d", a)
	}

	return nil
}

// ApplyCX flips target on every basis state where control is |1⟩.
func ApplyCX(real, imag []float64, numQubits, control, target int) error {
	if err := checkPair(real, imag, numQubits, control, target); err != nil {
		return err
	}
	controlledX(real, imag, control, target, full(real))
	return nil
}

// ApplyCZ negates the amplitudes where both qubits are |1⟩. It is symmetric.
func ApplyCZ(real, imag []float64, numQubits, a, b int) error {
	if err := checkPair(real, imag, numQubits, a, b); err != nil {
		return err
	}
	controlledZ(real, imag, a, b, full(real))
	return nil
}

// ApplySWAP exchanges the states of qubits a and b.
func ApplySWAP(real, imag []float64, numQubits, a, b int) error {
	if err := checkPair(real, imag, numQubits, a, b); err != nil {
		return err
	}
	swap(real, imag, a, b, full(real))
	return nil
}
