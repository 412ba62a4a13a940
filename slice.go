package qsim

import "fmt"

// Slice is the half-open amplitude index range [Start, End).
type Slice struct {
	Start int
	End   int
}

func (s Slice) Len() int { return s.End - s.Start }

func (s Slice) Contains(i int) bool { return i >= s.Start && i < s.End }

func (s Slice) String() string {
	return fmt.Sprintf("[%d, %d) length=%d", s.Start, s.End, s.Len())
}

/*
Partition splits [0, total) into count contiguous, disjoint, non-empty
slices. The remainder goes to the earliest slices, intermediate sizes are
rounded up to align when that still leaves an amplitude for every later
slice, and the last slice takes whatever is left.
*/
func Partition(total, count, align int) ([]Slice, error) {
	if count < 1 {
		return nil, validationError("slice count %d must be at least 1", count)
	}

	if total < count {
		return nil, validationError("cannot cut %d amplitudes into %d slices", total, count)
	}

	if align < 1 || align&(align-1) != 0 {
		return nil, validationError("alignment %d is not a power of two", align)
	}

	out := make([]Slice, 0, count)
	base, rem := total/count, total%count
	start := 0

	for i := 0; i < count-1; i++ {
		later := count - i - 1

		size := base
		if i < rem {
			size++
		}

		if size%align != 0 {
			if aligned := roundUp(size, align); start+aligned <= total-later {
				size = aligned
			}
		}

		end := min(start+size, total-later)
		out = append(out, Slice{Start: start, End: end})
		start = end
	}

	return append(out, Slice{Start: start, End: total}), nil
}

// checkDisjoint asserts that slices are sorted, non-empty and non-overlapping.
func checkDisjoint(slices []Slice) error {
	prev := 0

	for i, s := range slices {
		if s.Start < prev || s.End <= s.Start {
			return fmt.Errorf("slice %d %s overlaps or is empty", i, s)
		}
		prev = s.End
	}

	return nil
}
