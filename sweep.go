package qsim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

/*
Sweeper decides how a register is cut into slices and runs one task per
slice. Tasks for a single gate either all finish or the first failure
cancels the rest; nothing started by ForEachSlice outlives the call.
*/
type Sweeper struct {
	cfg     *Config
	metrics *Metrics
}

func NewSweeper(cfg *Config, metrics *Metrics) *Sweeper {
	if cfg == nil {
		cfg = NewConfig()
	}

	return &Sweeper{cfg: cfg, metrics: metrics}
}

/*
DecideSlices returns how many slices a sweep over total amplitudes of a
numQubits register should use. Registers below the parallel threshold are
swept serially. Above it the hardware parallelism, rounded down to a power of
two, is halved until every slice holds at least MinAmplitudesPerSlice
amplitudes, and never exceeds numQubits.
*/
func (sw *Sweeper) DecideSlices(total, numQubits int) int {
	if sw.cfg.ForceSlices > 0 {
		return max(1, min(sw.cfg.ForceSlices, total))
	}

	if sw.cfg.ForceSerial || numQubits < sw.cfg.ParallelThreshold {
		return 1
	}

	slices := floorPow2(runtime.GOMAXPROCS(0))
	for slices > 1 && total/slices < sw.cfg.MinAmplitudesPerSlice {
		slices /= 2
	}

	return max(1, min(slices, numQubits))
}

func floorPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

/*
ForEachSlice partitions the logical amplitudes of store and calls task once
per slice. A single slice runs on the calling goroutine. Otherwise every
slice gets its own goroutine in an errgroup, the group joins before return,
and the first error (or recovered panic) cancels the siblings and is
returned wrapped with the slice it came from.
*/
func (sw *Sweeper) ForEachSlice(ctx context.Context, store *Store, task func(context.Context, Slice) error) error {
	total := store.LogicalSize()
	count := sw.DecideSlices(total, store.Qubits())

	if count == 1 {
		sw.metrics.recordDispatch(1)
		return runSlice(ctx, Slice{Start: 0, End: total}, task)
	}

	slices, err := Partition(total, count, sw.cfg.SliceAlignment)
	if err != nil {
		return err
	}

	if err := checkDisjoint(slices); err != nil {
		return err
	}

	sw.metrics.recordDispatch(len(slices))

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range slices {
		g.Go(func() error {
			return runSlice(gctx, s, task)
		})
	}

	return g.Wait()
}

func runSlice(ctx context.Context, s Slice, task func(context.Context, Slice) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("slice %s: panic: %v", s, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := task(ctx, s); err != nil {
		return fmt.Errorf("slice %s: %w", s, err)
	}

	return nil
}
