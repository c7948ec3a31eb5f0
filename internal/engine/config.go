package engine

import "time"

// Weights are the soft-constraint coefficients of the maximized objective.
// They are supplied by the caller; the objective compiler never hard-codes
// them.
type Weights struct {
	Block   float64 `json:"block"`
	Group   float64 `json:"group"`
	Gap     float64 `json:"gap"`
	Morning float64 `json:"morning"`
}

// DefaultWeights returns the documented default coefficients.
func DefaultWeights() Weights {
	return Weights{Block: 2, Group: 1, Gap: 3, Morning: 1}
}

// FallbackLevel names one rung of the retry ladder.
type FallbackLevel string

const (
	// FallbackDropSoft removes the lowest-priority soft terms from the
	// objective and re-runs with identical hard constraints.
	FallbackDropSoft FallbackLevel = "DROP_SOFT"
	// FallbackRelaxSoftHard demotes constraints tagged soft-hard to soft.
	FallbackRelaxSoftHard FallbackLevel = "RELAX_SOFT_HARD"
	// FallbackTruncate reduces the requirement list to a priority-ordered
	// subset guaranteed to fit slot capacity.
	FallbackTruncate FallbackLevel = "TRUNCATE"
)

// DefaultFallbackOrder is the documented ladder sequence. The order is
// configurable because the relative merit of dropping soft terms versus
// shrinking the problem depends on the institution.
func DefaultFallbackOrder() []FallbackLevel {
	return []FallbackLevel{FallbackDropSoft, FallbackRelaxSoftHard, FallbackTruncate}
}

// Config is the single configuration record of the engine. The engine never
// reads ambient process configuration; the composition root builds this from
// whatever source it likes.
type Config struct {
	Weights Weights
	Budget  time.Duration
	// Workers is the number of parallel search workers. Proven results
	// (OPTIMAL, INFEASIBLE) are reproducible for a fixed seed at any worker
	// count; a run cut off by the budget is only reproducible with a single
	// worker, since the workers race the deadline.
	Workers            int
	Seed               int64
	FallbackOrder      []FallbackLevel
	MorningPeriodLimit int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		Budget:             30 * time.Second,
		Workers:            4,
		Seed:               1,
		FallbackOrder:      DefaultFallbackOrder(),
		MorningPeriodLimit: 4,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = def.Weights
	}
	if c.Budget <= 0 {
		c.Budget = def.Budget
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if len(c.FallbackOrder) == 0 {
		c.FallbackOrder = def.FallbackOrder
	}
	if c.MorningPeriodLimit <= 0 {
		c.MorningPeriodLimit = def.MorningPeriodLimit
	}
	return c
}
