package engine

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

func gridSlots(days, periods int) []models.TimeSlot {
	var slots []models.TimeSlot
	for d := 0; d < days; d++ {
		for p := 0; p < periods; p++ {
			slots = append(slots, models.TimeSlot{
				ID:     fmt.Sprintf("d%dp%d", d, p),
				Day:    d,
				Period: p,
			})
		}
	}
	return slots
}

func course(id, subject, teacher, class string, hours int) models.CourseRequirement {
	return models.CourseRequirement{
		ID:          id,
		Subject:     subject,
		TeacherIDs:  []string{teacher},
		ClassIDs:    []string{class},
		WeeklyHours: hours,
		Grade:       "g1",
	}
}

func newTestSolver(cfg Config) *Solver {
	return New(cfg, zap.NewNop(), nil)
}

func testSearchConfig(budget time.Duration, workers int) Config {
	cfg := DefaultConfig()
	cfg.Budget = budget
	cfg.Workers = workers
	return cfg
}

func slotsByRequirement(assignments []models.Assignment) map[string][]string {
	out := make(map[string][]string)
	for _, a := range assignments {
		out[a.RequirementID] = append(out[a.RequirementID], a.SlotID)
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out
}
