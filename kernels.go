// kernels.go
package qsim

import "math"

/*
sliceKernel applies one gate to the part of the register a slice owns.

Ownership rules keep concurrent slices apart. Diagonal gates touch only the
indices inside the slice. Pair gates own every pair whose base index (the one
with the target bit clear) lies inside the slice and update both members of
it, even when the partner sits in another slice. Each pair has exactly one
base and a partner is never a base, so two slices never touch the same
amplitude within one gate.
*/
type sliceKernel func(real, imag []float64, s Slice)

const invSqrt2 = 1 / math.Sqrt2

// clearRun returns the next run [lo, hi) at or after i and below end whose
// mask bit is clear. lo == hi == end when there is none.
func clearRun(i, end, mask int) (int, int) {
	if i&mask != 0 {
		i = (i | (mask - 1)) + 1
	}
	if i >= end {
		return end, end
	}
	return i, min(end, (i|(mask-1))+1)
}

// setRun is clearRun for runs whose mask bit is set.
func setRun(i, end, mask int) (int, int) {
	if i&mask == 0 {
		i = (i &^ (mask - 1)) | mask
	}
	if i >= end {
		return end, end
	}
	return i, min(end, (i|(mask-1))+1)
}

func hadamard(real, imag []float64, q int, s Slice) {
	mask := 1 << q

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			j := i + mask
			re0, im0, re1, im1 := real[i], imag[i], real[j], imag[j]
			real[i] = (re0 + re1) * invSqrt2
			imag[i] = (im0 + im1) * invSqrt2
			real[j] = (re0 - re1) * invSqrt2
			imag[j] = (im0 - im1) * invSqrt2
		}
	}
}

func pauliX(real, imag []float64, q int, s Slice) {
	mask := 1 << q

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			j := i + mask
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
	}
}

func pauliY(real, imag []float64, q int, s Slice) {
	mask := 1 << q

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			j := i + mask
			re0, im0, re1, im1 := real[i], imag[i], real[j], imag[j]
			real[i], imag[i] = im1, -re1
			real[j], imag[j] = -im0, re0
		}
	}
}

func pauliZ(real, imag []float64, q int, s Slice) {
	mask := 1 << q

	for lo, hi := setRun(s.Start, s.End, mask); lo < hi; lo, hi = setRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			real[i] = -real[i]
			imag[i] = -imag[i]
		}
	}
}

func rotateX(real, imag []float64, q int, theta float64, s Slice) {
	mask := 1 << q
	c, sn := math.Cos(theta/2), math.Sin(theta/2)

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			j := i + mask
			re0, im0, re1, im1 := real[i], imag[i], real[j], imag[j]
			real[i] = c*re0 + sn*im1
			imag[i] = c*im0 - sn*re1
			real[j] = c*re1 + sn*im0
			imag[j] = c*im1 - sn*re0
		}
	}
}

func rotateY(real, imag []float64, q int, theta float64, s Slice) {
	mask := 1 << q
	c, sn := math.Cos(theta/2), math.Sin(theta/2)

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		for i := lo; i < hi; i++ {
			j := i + mask
			re0, im0, re1, im1 := real[i], imag[i], real[j], imag[j]
			real[i] = c*re0 - sn*re1
			imag[i] = c*im0 - sn*im1
			real[j] = sn*re0 + c*re1
			imag[j] = sn*im0 + c*im1
		}
	}
}

// rotateZ multiplies target-bit-0 amplitudes by e^{-iθ/2} and
// target-bit-1 amplitudes by e^{+iθ/2}.
func rotateZ(real, imag []float64, q int, theta float64, s Slice) {
	mask := 1 << q
	c, sn := math.Cos(theta/2), math.Sin(theta/2)

	for lo, hi := clearRun(s.Start, s.End, mask); lo < hi; lo, hi = clearRun(hi, s.End, mask) {
		phase(real, imag, lo, hi, c, -sn)
	}

	for lo, hi := setRun(s.Start, s.End, mask); lo < hi; lo, hi = setRun(hi, s.End, mask) {
		phase(real, imag, lo, hi, c, sn)
	}
}

func phase(real, imag []float64, lo, hi int, c, sn float64) {
	for i := lo; i < hi; i++ {
		re, im := real[i], imag[i]
		real[i] = re*c - im*sn
		imag[i] = re*sn + im*c
	}
}

// fixedAngles maps the phase gates onto their RZ angle.
var fixedAngles = map[GateKind]float64{
	GateS:   math.Pi / 2,
	GateSdg: -math.Pi / 2,
	GateT:   math.Pi / 4,
	GateTdg: -math.Pi / 4,
}

/*
kernelFor resolves an operation to its slice kernel. Barriers resolve to nil
with no error. Gate kinds without a kernel for the operation's shape yield an
*UnsupportedGateError.
*/
func kernelFor(op Operation) (sliceKernel, error) {
	switch op := op.(type) {
	case Barrier:
		return nil, nil
	case FixedGate:
		q := op.Qubit
		switch op.Kind {
		case GateH:
			return func(re, im []float64, s Slice) { hadamard(re, im, q, s) }, nil
		case GateX:
			return func(re, im []float64, s Slice) { pauliX(re, im, q, s) }, nil
		case GateY:
			return func(re, im []float64, s Slice) { pauliY(re, im, q, s) }, nil
		case GateZ:
			return func(re, im []float64, s Slice) { pauliZ(re, im, q, s) }, nil
		case GateS, GateSdg, GateT, GateTdg:
			theta := fixedAngles[op.Kind]
			return func(re, im []float64, s Slice) { rotateZ(re, im, q, theta, s) }, nil
		}
		return nil, &UnsupportedGateError{Engine: EngineID, Kind: op.Kind}
	case RotationGate:
		q, theta := op.Qubit, op.Theta
		switch op.Kind {
		case GateRX:
			return func(re, im []float64, s Slice) { rotateX(re, im, q, theta, s) }, nil
		case GateRY:
			return func(re, im []float64, s Slice) { rotateY(re, im, q, theta, s) }, nil
		case GateRZ:
			return func(re, im []float64, s Slice) { rotateZ(re, im, q, theta, s) }, nil
		}
		return nil, &UnsupportedGateError{Engine: EngineID, Kind: op.Kind}
	case TwoQubitGate:
		a, b := op.Control, op.Target
		switch op.Kind {
		case GateCX:
			return func(re, im []float64, s Slice) { controlledX(re, im, a, b, s) }, nil
		case GateCZ:
			return func(re, im []float64, s Slice) { controlledZ(re, im, a, b, s) }, nil
		case GateSWAP:
			return func(re, im []float64, s Slice) { swap(re, im, a, b, s) }, nil
		}
		return nil, &UnsupportedGateError{Engine: EngineID, Kind: op.Kind}
	}

	return nil, validationError("unknown operation %T", op)
}

func checkBuffers(real, imag []float64, numQubits int) error {
	if real == nil || imag == nil {
		return validationError("amplitude buffers must not be nil")
	}

	if len(real) != len(imag) {
		return validationError("real and imaginary buffers differ in length: %d != %d", len(real), len(imag))
	}

	if numQubits < 0 || numQubits > MaxQubits {
		return validationError("qubit count %d out of range [0, %d]", numQubits, MaxQubits)
	}

	if want := 1 << numQubits; len(real) != want {
		return validationError("buffer length %d does not match %d for %d qubits", len(real), want, numQubits)
	}

	return nil
}

func checkSingle(real, imag []float64, numQubits, qubit int) error {
	if err := checkBuffers(real, imag, numQubits); err != nil {
		return err
	}

	if qubit < 0 || qubit >= numQubits {
		return validationError("qubit %d out of range [0, %d)", qubit, numQubits)
	}

	return nil
}

func full(real []float64) Slice { return Slice{Start: 0, End: len(real)} }

// ApplyH applies the Hadamard gate to qubit in place.
func ApplyH(real, imag []float64, numQubits, qubit int) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	hadamard(real, imag, qubit, full(real))
	return nil
}

// ApplyX swaps the |0⟩ and |1⟩ amplitudes of qubit.
func ApplyX(real, imag []float64, numQubits, qubit int) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	pauliX(real, imag, qubit, full(real))
	return nil
}

func ApplyY(real, imag []float64, numQubits, qubit int) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	pauliY(real, imag, qubit, full(real))
	return nil
}

func ApplyZ(real, imag []float64, numQubits, qubit int) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	pauliZ(real, imag, qubit, full(real))
	return nil
}

func ApplyS(real, imag []float64, numQubits, qubit int) error {
	return ApplyRZ(real, imag, numQubits, qubit, fixedAngles[GateS])
}

func ApplySdg(real, imag []float64, numQubits, qubit int) error {
	return ApplyRZ(real, imag, numQubits, qubit, fixedAngles[GateSdg])
}

func ApplyT(real, imag []float64, numQubits, qubit int) error {
	return ApplyRZ(real, imag, numQubits, qubit, fixedAngles[GateT])
}

func ApplyTdg(real, imag []float64, numQubits, qubit int) error {
	return ApplyRZ(real, imag, numQubits, qubit, fixedAngles[GateTdg])
}

func ApplyRX(real, imag []float64, numQubits, qubit int, theta float64) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	rotateX(real, imag, qubit, theta, full(real))
	return nil
}

func ApplyRY(real, imag []float64, numQubits, qubit int, theta float64) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	rotateY(real, imag, qubit, theta, full(real))
	return nil
}

func ApplyRZ(real, imag []float64, numQubits, qubit int, theta float64) error {
	if err := checkSingle(real, imag, numQubits, qubit); err != nil {
		return err
	}
	rotateZ(real, imag, qubit, theta, full(real))
	return nil
}
