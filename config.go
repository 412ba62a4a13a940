package qsim

import (
	"os"
	"runtime"

	"github.com/charmbracelet/log"
)

/*
Config tunes the engine. The zero value is not useful; start from NewConfig
and override fields as needed.
*/
type Config struct {
	// ParallelThreshold is the smallest register, in qubits, that is swept in parallel.
	ParallelThreshold int
	// MinAmplitudesPerSlice keeps slices large enough to amortise a goroutine.
	MinAmplitudesPerSlice int
	// SliceAlignment is the preferred slice boundary multiple, a power of two.
	SliceAlignment int
	// ForceSerial disables parallel sweeps entirely.
	ForceSerial bool
	// ForceSlices overrides the slice decision when positive.
	ForceSlices int

	// ShotWorkers bounds the shot replay pool.
	ShotWorkers int
	// Seed feeds the per-shot generators.
	Seed uint64
	// IncludeState materialises amplitudes on every result.
	IncludeState bool

	// CheckMemory enables the memory governor.
	CheckMemory bool
	// MemoryFraction is the share of available memory a run may claim.
	MemoryFraction float64

	Logger *log.Logger
}

func NewConfig() *Config {
	return &Config{
		ParallelThreshold:     13,
		MinAmplitudesPerSlice: 1024,
		SliceAlignment:        8,
		ShotWorkers:           runtime.GOMAXPROCS(0),
		Seed:                  42,
		CheckMemory:           true,
		MemoryFraction:        0.8,
		Logger:                NewLogger(log.WarnLevel),
	}
}

// NewLogger builds the package's default stderr logger at level.
func NewLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "qsim",
		Level:           level,
		ReportTimestamp: true,
	})
}

func (c *Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}

	return c.Logger
}

func (c *Config) shotWorkers() int {
	if c.ShotWorkers > 0 {
		return c.ShotWorkers
	}

	return runtime.GOMAXPROCS(0)
}
