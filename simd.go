package qsim

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

var laneWidth = detectLaneWidth()

/*
LaneWidth returns how many float64 values fit in the widest vector register
the host advertises. Amplitude buffers are padded to a multiple of it so
block loops never need a scalar tail.
*/
func LaneWidth() int {
	return laneWidth
}

func detectLaneWidth() int {
	switch runtime.GOARCH {
	case "amd64":
		switch {
		case cpu.X86.HasAVX512F:
			return 8
		case cpu.X86.HasAVX2, cpu.X86.HasAVX:
			return 4
		}
		return 2
	case "arm64":
		if cpu.ARM64.HasSVE {
			return 4
		}
		return 2
	}

	return 1
}

// roundUp rounds n up to the next multiple of width, a power of two.
func roundUp(n, width int) int {
	return (n + width - 1) &^ (width - 1)
}
