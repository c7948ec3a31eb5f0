package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

func TestShorterBudget(t *testing.T) {
	assert.Equal(t, 5*time.Second, shorterBudget(10*time.Second, 2))
	assert.Equal(t, 2500*time.Millisecond, shorterBudget(10*time.Second, 4))
	assert.Equal(t, time.Second, shorterBudget(3*time.Second, 4), "divided budgets floor at one second")
	assert.Equal(t, 500*time.Millisecond, shorterBudget(500*time.Millisecond, 2), "the floor never exceeds the original budget")
}

func TestTruncateToCapacityKeepsHighestPriority(t *testing.T) {
	a := course("a", "math", "t1", "c1", 3)
	a.Priority = 5
	b := course("b", "eng", "t2", "c1", 3)
	b.Priority = 1
	c := course("c", "bio", "t3", "c2", 2)

	truncated := truncateToCapacity(problem{
		courses: []models.CourseRequirement{a, b, c},
		slots:   gridSlots(1, 4),
	})

	require.Len(t, truncated.courses, 2)
	assert.Equal(t, "a", truncated.courses[0].ID)
	assert.Equal(t, "c", truncated.courses[1].ID)
}

func TestTruncateToCapacityIgnoresBreakSlots(t *testing.T) {
	slots := gridSlots(1, 4)
	slots[1].IsBreak = true

	a := course("a", "math", "t1", "c1", 3)
	a.Priority = 2
	b := course("b", "eng", "t2", "c1", 1)

	truncated := truncateToCapacity(problem{
		courses: []models.CourseRequirement{a, b},
		slots:   slots,
	})

	// Capacity is three teaching slots, so only the three-hour course fits.
	require.Len(t, truncated.courses, 1)
	assert.Equal(t, "a", truncated.courses[0].ID)
}

func TestFallbackLadderRunsConfiguredOrder(t *testing.T) {
	type call struct {
		budget   time.Duration
		weights  Weights
		softHard bool
		courses  int
	}
	var calls []call

	base := problem{
		courses: []models.CourseRequirement{course("r1", "math", "t1", "c1", 1)},
		slots:   gridSlots(1, 2),
	}
	f := &fallbackController{
		cfg: Config{
			Weights:       DefaultWeights(),
			Budget:        4 * time.Second,
			FallbackOrder: []FallbackLevel{FallbackTruncate, FallbackDropSoft},
		},
		logger: zap.NewNop(),
		attempt: func(_ context.Context, p problem, cfg Config, includeSoftHard bool, _ []models.CourseRequirement) attemptOutcome {
			calls = append(calls, call{budget: cfg.Budget, weights: cfg.Weights, softHard: includeSoftHard, courses: len(p.courses)})
			if len(calls) == 1 {
				return attemptOutcome{status: models.StatusInfeasible}
			}
			return attemptOutcome{
				status:      models.StatusOptimal,
				assignments: []models.Assignment{{RequirementID: "r1", SlotID: "d0p0"}},
			}
		},
	}

	outcome, level, ok := f.run(context.Background(), base)

	require.True(t, ok)
	assert.Equal(t, FallbackDropSoft, level)
	assert.Equal(t, models.StatusFeasible, outcome.status, "a fallback result never claims optimality")

	require.Len(t, calls, 2)
	assert.Equal(t, time.Second, calls[0].budget)
	assert.True(t, calls[0].softHard)
	assert.Equal(t, 2*time.Second, calls[1].budget)
	assert.Zero(t, calls[1].weights.Group)
	assert.Zero(t, calls[1].weights.Morning)
	assert.Equal(t, DefaultWeights().Block, calls[1].weights.Block)
}

func TestFallbackRelaxSoftHardDisablesSoftHard(t *testing.T) {
	var sawSoftHard []bool
	f := &fallbackController{
		cfg: Config{
			Weights:       DefaultWeights(),
			Budget:        2 * time.Second,
			FallbackOrder: []FallbackLevel{FallbackRelaxSoftHard},
		},
		logger: zap.NewNop(),
		attempt: func(_ context.Context, _ problem, _ Config, includeSoftHard bool, _ []models.CourseRequirement) attemptOutcome {
			sawSoftHard = append(sawSoftHard, includeSoftHard)
			return attemptOutcome{status: models.StatusInfeasible}
		},
	}

	_, level, ok := f.run(context.Background(), problem{})

	assert.False(t, ok)
	assert.Empty(t, string(level))
	require.Len(t, sawSoftHard, 1)
	assert.False(t, sawSoftHard[0])
}

func TestAttemptOutcomeUsable(t *testing.T) {
	assert.True(t, attemptOutcome{status: models.StatusOptimal}.usable())
	assert.True(t, attemptOutcome{status: models.StatusFeasible}.usable())
	assert.False(t, attemptOutcome{status: models.StatusTimeout}.usable())
	assert.True(t, attemptOutcome{
		status:      models.StatusTimeout,
		assignments: []models.Assignment{{RequirementID: "r1", SlotID: "d0p0"}},
	}.usable())
	assert.False(t, attemptOutcome{status: models.StatusInfeasible}.usable())
	assert.False(t, attemptOutcome{status: models.StatusError}.usable())
}
