package engine

import (
	"sort"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

// evaluator computes the weighted maximized objective of a complete
// assignment. It reads the immutable model only, so one evaluator is shared
// safely across search workers.
type evaluator struct {
	m *compiledModel
}

// score sums the four weighted soft terms over the picks of every unit
// (block bonus, same-day grouping bonus, gap penalty and morning
// preference) minus the compiled soft-constraint penalties.
func (e *evaluator) score(picks [][]int) float64 {
	m := e.m
	chosen := make([]map[int]bool, len(m.units))
	for u, slots := range picks {
		chosen[u] = make(map[int]bool, len(slots))
		for _, idx := range slots {
			chosen[u][idx] = true
		}
	}

	total := 0.0

	// Block bonus: a true block variable for a unit with >=2 hours.
	for _, b := range m.blocks {
		if chosen[b.unit][b.a] && chosen[b.unit][b.b] {
			total += m.weights.Block
		}
	}

	// Grouping bonus and gap penalty need per-(class, day) occupancy.
	type classDay struct {
		class string
		day   int
	}
	occupancy := make(map[classDay][]int)
	subjectCount := make(map[classDay]map[string]int)
	for u, slots := range picks {
		unit := m.units[u]
		for _, idx := range slots {
			slot := m.slots[idx]
			if unit.demanding && slot.Period < m.morningLimit {
				total += m.weights.Morning
			}
			if unit.meeting {
				continue
			}
			for _, class := range unit.classes {
				key := classDay{class: class, day: slot.Day}
				occupancy[key] = append(occupancy[key], slot.Period)
				if subjectCount[key] == nil {
					subjectCount[key] = make(map[string]int)
				}
				subjectCount[key][unit.subject]++
			}
		}
	}

	for _, subjects := range subjectCount {
		for _, n := range subjects {
			if n > 1 {
				total += m.weights.Group * float64(n-1)
			}
		}
	}

	for key, periods := range occupancy {
		total -= m.weights.Gap * float64(e.gaps(key.day, periods))
	}

	return total - e.softPenalty(picks)
}

// softPenalty evaluates the compiled soft-constraint rules against a
// complete assignment.
func (e *evaluator) softPenalty(picks [][]int) float64 {
	penalty := 0.0
	for _, rule := range e.m.softRules {
		switch rule.kind {
		case models.ConstraintSlotRestriction, models.ConstraintMandatoryWindow:
			for u, slots := range picks {
				if !rule.units[u] {
					continue
				}
				for _, idx := range slots {
					if rule.slots[idx] {
						penalty += rule.weight
					}
				}
			}
		case models.ConstraintMaxConsecutive:
			for u, slots := range picks {
				if !rule.units[u] {
					continue
				}
				penalty += rule.weight * float64(e.excessRuns(slots, rule.maxRun))
			}
		case models.ConstraintMandatoryPresence:
			required := rule.fraction * float64(len(rule.teachers))
			present := 0
			for _, t := range rule.teachers {
				if e.teacherOnDay(picks, t, rule.day) {
					present++
				}
			}
			if float64(present) < required {
				penalty += rule.weight * (required - float64(present))
			}
		}
	}
	return penalty
}

// excessRuns counts the periods by which a unit's consecutive same-day runs
// exceed maxRun.
func (e *evaluator) excessRuns(slots []int, maxRun int) int {
	byDay := make(map[int][]int)
	for _, idx := range slots {
		slot := e.m.slots[idx]
		byDay[slot.Day] = append(byDay[slot.Day], slot.Period)
	}
	excess := 0
	for _, periods := range byDay {
		sort.Ints(periods)
		run := 1
		for i := 1; i <= len(periods); i++ {
			if i < len(periods) && periods[i] == periods[i-1]+1 {
				run++
				continue
			}
			if run > maxRun {
				excess += run - maxRun
			}
			run = 1
		}
	}
	return excess
}

func (e *evaluator) teacherOnDay(picks [][]int, teacher string, day int) bool {
	for _, u := range e.m.teacherUnits[teacher] {
		for _, idx := range picks[u] {
			if e.m.slots[idx].Day == day {
				return true
			}
		}
	}
	return false
}

// gaps counts empty non-break periods strictly between the first and last
// occupied period of one class day.
func (e *evaluator) gaps(day int, periods []int) int {
	if len(periods) < 2 {
		return 0
	}
	first, last := periods[0], periods[0]
	used := make(map[int]bool, len(periods))
	for _, p := range periods {
		used[p] = true
		if p < first {
			first = p
		}
		if p > last {
			last = p
		}
	}
	count := 0
	for _, idx := range e.m.byDay[day] {
		slot := e.m.slots[idx]
		if slot.Period <= first || slot.Period >= last {
			continue
		}
		if slot.IsBreak || used[slot.Period] {
			continue
		}
		count++
	}
	return count
}
