package qsim

import (
	"context"
	"fmt"
	"sync"
)

// shotJob is one shot to replay against the base register.
type shotJob struct {
	Index int
}

/*
shotPool replays shots against a read-only base register on a bounded set of
workers. Every shot draws from its own generator seeded by (seed, index), so
the histogram for a seed does not depend on how many workers ran it or in
which order they finished.
*/
type shotPool struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	jobs    chan shotJob
	base    *Store
	circuit *Circuit
	seed    uint64
	metrics *Metrics

	mu      sync.Mutex
	err     error
	workers []*shotWorker
}

// shotWorker owns one scratch register, re-seeded from the base before every shot.
type shotWorker struct {
	pool    *shotPool
	scratch *Store
	counts  map[string]int
}

func runShots(ctx context.Context, base *Store, c *Circuit, shots, workers int, seed uint64, metrics *Metrics) (map[string]int, error) {
	workers = max(1, min(workers, shots))

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := &shotPool{
		ctx:     pctx,
		cancel:  cancel,
		jobs:    make(chan shotJob, workers*10),
		base:    base,
		circuit: c,
		seed:    seed,
		metrics: metrics,
	}

	for i := 0; i < workers; i++ {
		pool.startWorker()
	}

	pool.schedule(shots)
	pool.wg.Wait()

	if pool.err != nil {
		return nil, pool.err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, w := range pool.workers {
		for bits, n := range w.counts {
			counts[bits] += n
		}
	}

	metrics.recordShots(shots)

	return counts, nil
}

func (p *shotPool) startWorker() {
	w := &shotWorker{
		pool:    p,
		scratch: p.base.Clone(),
		counts:  make(map[string]int),
	}
	p.workers = append(p.workers, w)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		w.run()
	}()
}

func (p *shotPool) schedule(shots int) {
	defer close(p.jobs)

	for i := 0; i < shots; i++ {
		select {
		case p.jobs <- shotJob{Index: i}:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *shotPool) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err == nil {
		p.err = err
		p.cancel()
	}
}

func (w *shotWorker) run() {
	for job := range w.pool.jobs {
		if w.pool.ctx.Err() != nil {
			continue
		}

		bits, err := w.processJob(job)
		if err != nil {
			w.pool.fail(fmt.Errorf("shot %d: %w", job.Index, err))
			continue
		}

		w.counts[bits]++
	}
}

func (w *shotWorker) processJob(job shotJob) (string, error) {
	if err := w.scratch.CopyFrom(w.pool.base); err != nil {
		return "", err
	}

	basis, err := w.scratch.MeasureAll(newShotRand(w.pool.seed, job.Index))
	if err != nil {
		return "", err
	}

	c := w.pool.circuit
	return Bitstring(basis, c.ClassicalBits, c.MeasureMap), nil
}
