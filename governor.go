package qsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/mem"
)

/*
Governor keeps a run inside the memory the host can spare, the way an engine
governor caps power under load. It sizes the base register plus one scratch
register per shot worker against a fraction of available system memory.

A base register that does not fit is refused with ErrCapacity. Shot workers
that do not fit are shed down to one. When the probe itself fails the run is
allowed and the failure is logged.
*/
type Governor struct {
	mu sync.RWMutex

	maxMemoryFraction float64
	probe             func() (uint64, error)
	metrics           *Metrics
	log               *log.Logger

	available uint64
	lastCheck time.Time
}

func NewGovernor(maxMemoryFraction float64, metrics *Metrics, logger *log.Logger) *Governor {
	if maxMemoryFraction <= 0 || maxMemoryFraction > 1 {
		maxMemoryFraction = 0.8
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Governor{
		maxMemoryFraction: maxMemoryFraction,
		probe:             availableMemory,
		metrics:           metrics,
		log:               logger,
	}
}

func availableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}

	return vm.Available, nil
}

// StoreBytes is the footprint of one padded register of numQubits qubits.
func StoreBytes(numQubits int) uint64 {
	return 2 * 8 * uint64(roundUp(1<<numQubits, LaneWidth()))
}

// Observe refreshes the governor's view of available memory.
func (g *Governor) Observe() error {
	available, err := g.probe()
	if err != nil {
		return fmt.Errorf("probe memory: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.available = available
	g.lastCheck = time.Now()

	return nil
}

// Limit reports whether claiming bytes would exceed the budget.
func (g *Governor) Limit(bytes uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return float64(bytes) > g.budget()
}

func (g *Governor) budget() float64 {
	return g.maxMemoryFraction * float64(g.available)
}

/*
Admit checks a run of numQubits qubits with the requested shot workers and
returns how many workers may actually run.
*/
func (g *Governor) Admit(numQubits, workers int) (int, error) {
	workers = max(1, workers)

	if err := g.Observe(); err != nil {
		g.log.Warn("memory probe failed, admitting run", "qubits", numQubits, "err", err)
		return workers, nil
	}

	per := StoreBytes(numQubits)

	if g.Limit(per) {
		_, budget := g.GetResourceUsage()
		return 0, fmt.Errorf("%w: %d qubits need %d bytes, budget is %.0f bytes", ErrCapacity, numQubits, per, budget)
	}

	fit := workers
	for fit > 1 && g.Limit(per*uint64(1+fit)) {
		fit--
	}

	if fit < workers {
		g.log.Warn("shedding shot workers to fit memory", "qubits", numQubits, "requested", workers, "admitted", fit)
		g.metrics.recordDegraded(workers - fit)
	}

	return fit, nil
}

// GetResourceUsage returns the last observed available bytes and the budget derived from it.
func (g *Governor) GetResourceUsage() (available uint64, budget float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.available, g.budget()
}

// GetThresholds returns the fraction of available memory a run may claim.
func (g *Governor) GetThresholds() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maxMemoryFraction
}
