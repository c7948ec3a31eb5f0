package engine

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
	"github.com/yossefc/school-scheduler-parallel-sub000/pkg/metrics"
)

// fallbackController orchestrates the bounded retry ladder when the advanced
// model fails to produce a usable solution. Every level runs at most once,
// always against a fresh copy of the inputs; the original problem is never
// mutated.
type fallbackController struct {
	cfg      Config
	logger   *zap.Logger
	recorder *metrics.Recorder
	attempt  func(ctx context.Context, p problem, cfg Config, includeSoftHard bool, metricCourses []models.CourseRequirement) attemptOutcome
}

// run walks the configured ladder in order and returns the first usable
// outcome along with the level that produced it.
func (f *fallbackController) run(ctx context.Context, base problem) (attemptOutcome, FallbackLevel, bool) {
	for _, level := range f.cfg.FallbackOrder {
		f.recorder.ObserveFallback(string(level))
		f.logger.Info("fallback level attempt", zap.String("level", string(level)))

		var outcome attemptOutcome
		switch level {
		case FallbackDropSoft:
			cfg := f.cfg
			cfg.Weights.Group = 0
			cfg.Weights.Morning = 0
			cfg.Budget = shorterBudget(f.cfg.Budget, 2)
			outcome = f.attempt(ctx, base.clone(), cfg, true, base.courses)
		case FallbackRelaxSoftHard:
			cfg := f.cfg
			cfg.Budget = shorterBudget(f.cfg.Budget, 2)
			outcome = f.attempt(ctx, base.clone(), cfg, false, base.courses)
		case FallbackTruncate:
			cfg := f.cfg
			cfg.Budget = shorterBudget(f.cfg.Budget, 4)
			truncated := truncateToCapacity(base.clone())
			outcome = f.attempt(ctx, truncated, cfg, true, base.courses)
		default:
			continue
		}

		if outcome.usable() {
			// A relaxed or truncated model cannot claim optimality for the
			// original problem.
			if outcome.status == models.StatusOptimal {
				outcome.status = models.StatusFeasible
			}
			return outcome, level, true
		}
	}
	return attemptOutcome{}, "", false
}

func shorterBudget(budget time.Duration, divisor int64) time.Duration {
	shorter := budget / time.Duration(divisor)
	if shorter < time.Second {
		shorter = time.Second
	}
	if shorter > budget {
		shorter = budget
	}
	return shorter
}

// truncateToCapacity reduces the requirement list to a priority-ordered
// subset whose per-class and per-teacher hour totals fit the available
// non-break slot capacity, guaranteeing the short re-run can answer.
func truncateToCapacity(p problem) problem {
	capacity := 0
	for _, slot := range p.slots {
		if !slot.IsBreak {
			capacity++
		}
	}

	ordered := append([]models.CourseRequirement(nil), p.courses...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority > ordered[j].Priority })

	used := make(map[string]int)
	kept := make([]models.CourseRequirement, 0, len(ordered))
	for _, course := range ordered {
		fits := true
		keys := append(append([]string(nil), course.ClassIDs...), course.TeacherIDs...)
		for _, key := range keys {
			if used[key]+course.WeeklyHours > capacity {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		for _, key := range keys {
			used[key] += course.WeeklyHours
		}
		kept = append(kept, course)
	}

	p.courses = kept
	return p
}
