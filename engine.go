// engine.go
package qsim

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// EngineID names the dense state-vector engine in results and errors.
const EngineID = "statevector"

/*
Engine runs circuits against a dense state vector. It holds no per-run
state, so one Engine may serve concurrent runs; each run allocates its own
register and shot scratch space.

A run validates the circuit, resolves every operation to a kernel before any
memory is touched, applies the unitary part once, then replays the requested
shots against that base register.
*/
type Engine struct {
	cfg      *Config
	sweeper  *Sweeper
	governor *Governor
	metrics  *Metrics
	log      *log.Logger
}

// NewEngine builds an engine from cfg, or from NewConfig when cfg is nil.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = NewConfig()
	}

	metrics := NewMetrics()
	logger := cfg.logger()

	return &Engine{
		cfg:      cfg,
		sweeper:  NewSweeper(cfg, metrics),
		governor: NewGovernor(cfg.MemoryFraction, metrics, logger),
		metrics:  metrics,
		log:      logger,
	}
}

func (e *Engine) ID() string { return EngineID }

func (e *Engine) Metrics() *Metrics { return e.metrics }

func (e *Engine) Sweeper() *Sweeper { return e.sweeper }

func (e *Engine) Governor() *Governor { return e.governor }

// Run executes c for c.Shots shots, or a single shot when none are set.
func (e *Engine) Run(ctx context.Context, c *Circuit) (*Result, error) {
	if c == nil {
		return nil, validationError("circuit must not be nil")
	}

	shots := c.Shots
	if shots <= 0 {
		shots = 1
	}

	return e.RunShots(ctx, c, shots)
}

/*
RunShots executes c and samples it shots times. Circuits without any
measurement produce a single all-zero outcome carrying every shot.
*/
func (e *Engine) RunShots(ctx context.Context, c *Circuit, shots int) (res *Result, err error) {
	if c == nil {
		return nil, validationError("circuit must not be nil")
	}

	if shots <= 0 {
		return nil, validationError("shot count %d must be positive", shots)
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := e.log.With("run", runID)

	defer func() {
		e.metrics.recordRun(start, err == nil)
		if err != nil {
			logger.Error("run failed", "err", err)
		}
	}()

	logger.Info("run started", "qubits", c.Qubits, "ops", len(c.Ops), "shots", shots)

	store, workers, gates, err := e.evolve(ctx, c, e.cfg.shotWorkers(), logger)
	if err != nil {
		return nil, err
	}

	var counts map[string]int

	if c.HasMeasurements() {
		if counts, err = runShots(ctx, store, c, shots, workers, e.cfg.Seed, e.metrics); err != nil {
			return nil, err
		}
	} else {
		counts = map[string]int{Bitstring(0, c.ClassicalBits, nil): shots}
	}

	res = &Result{
		RunID:         runID,
		Engine:        EngineID,
		Qubits:        c.Qubits,
		ClassicalBits: c.ClassicalBits,
		Counts:        counts,
		Shots:         shots,
		GateCount:     gates,
	}

	if c.DumpState || e.cfg.IncludeState {
		res.Amplitudes = store.Amplitudes()
	}

	res.Elapsed = time.Since(start)
	logger.Info("run finished", "elapsed", res.Elapsed, "gates", gates, "outcomes", len(counts))

	return res, nil
}

// Probabilities applies the unitary part of c and returns the Born
// probability of every basis state without sampling.
func (e *Engine) Probabilities(ctx context.Context, c *Circuit) ([]float64, error) {
	if c == nil {
		return nil, validationError("circuit must not be nil")
	}

	store, _, _, err := e.evolve(ctx, c, 0, e.log)
	if err != nil {
		return nil, err
	}

	return store.Probabilities(), nil
}

/*
evolve validates c, admits it against memory, allocates the register and
applies every gate. It returns the register, the number of shot workers that
may run against it, and how many gates were applied.
*/
func (e *Engine) evolve(ctx context.Context, c *Circuit, workers int, logger *log.Logger) (*Store, int, int, error) {
	if err := c.Validate(); err != nil {
		return nil, 0, 0, err
	}

	kernels := make([]sliceKernel, 0, len(c.Ops))
	for i, op := range c.Ops {
		kernel, err := kernelFor(op)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("operation %d: %w", i, err)
		}
		if kernel != nil {
			kernels = append(kernels, kernel)
		}
	}

	if e.cfg.CheckMemory && c.Qubits <= MaxQubits {
		admitted, err := e.governor.Admit(c.Qubits, workers)
		if err != nil {
			return nil, 0, 0, err
		}
		workers = admitted
	}

	store, err := Allocate(c.Qubits)
	if err != nil {
		return nil, 0, 0, err
	}

	for i, kernel := range kernels {
		if err := e.apply(ctx, store, kernel); err != nil {
			return nil, 0, 0, fmt.Errorf("gate %d: %w", i, err)
		}

		e.metrics.recordGate()
		logger.Debug("gate applied", "gate", i, "of", len(kernels))
	}

	return store, workers, len(kernels), nil
}

func (e *Engine) apply(ctx context.Context, store *Store, kernel sliceKernel) error {
	re, im := store.PaddedReal(), store.PaddedImag()

	return e.sweeper.ForEachSlice(ctx, store, func(_ context.Context, s Slice) error {
		kernel(re, im, s)
		return nil
	})
}
