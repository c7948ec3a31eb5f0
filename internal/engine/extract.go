package engine

import (
	"fmt"
	"sort"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
	appErrors "github.com/yossefc/school-scheduler-parallel-sub000/pkg/errors"
)

// extractAssignments expands the true-valued unit variables into per-member
// assignments: a group variable yields one assignment per member for every
// chosen slot, so members share an identical slot set by construction.
func extractAssignments(m *compiledModel, picks [][]int) []models.Assignment {
	var out []models.Assignment
	for u, slots := range picks {
		unit := m.units[u]
		for _, member := range unit.members {
			for _, idx := range slots {
				out = append(out, models.Assignment{RequirementID: member, SlotID: m.slots[idx].ID})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequirementID != out[j].RequirementID {
			return out[i].RequirementID < out[j].RequirementID
		}
		a, b := m.slotIdx[out[i].SlotID], m.slotIdx[out[j].SlotID]
		return a < b
	})
	return out
}

// validateSolution re-verifies every invariant of a "solved" model: exact
// coverage per requirement, identical member slot sets per group, and no
// teacher or class double-booking. Any violation is a model-construction
// defect and is surfaced loudly, never silently corrected.
func validateSolution(m *compiledModel, picks [][]int) error {
	counted := make(map[string]int, len(m.reqHours))
	teacherSeen := make(map[string]map[int]string)
	classSeen := make(map[string]map[int]string)

	for u, slots := range picks {
		unit := m.units[u]
		if len(slots) != unit.hours {
			return appErrors.Clone(appErrors.ErrInvariant,
				fmt.Sprintf("unit %s has %d assigned slots, requires %d", unit.id, len(slots), unit.hours))
		}
		distinct := make(map[int]bool, len(slots))
		for _, idx := range slots {
			if distinct[idx] {
				return appErrors.Clone(appErrors.ErrInvariant,
					fmt.Sprintf("unit %s assigned slot %s twice", unit.id, m.slots[idx].ID))
			}
			distinct[idx] = true

			for _, t := range unit.teachers {
				if teacherSeen[t] == nil {
					teacherSeen[t] = make(map[int]string)
				}
				if other, busy := teacherSeen[t][idx]; busy {
					return appErrors.Clone(appErrors.ErrInvariant,
						fmt.Sprintf("teacher %s double-booked at slot %s by %s and %s", t, m.slots[idx].ID, other, unit.id))
				}
				teacherSeen[t][idx] = unit.id
			}
			if !unit.meeting {
				for _, c := range unit.classes {
					if classSeen[c] == nil {
						classSeen[c] = make(map[int]string)
					}
					if other, busy := classSeen[c][idx]; busy {
						return appErrors.Clone(appErrors.ErrInvariant,
							fmt.Sprintf("class %s double-booked at slot %s by %s and %s", c, m.slots[idx].ID, other, unit.id))
					}
					classSeen[c][idx] = unit.id
				}
			}
		}
		for _, member := range unit.members {
			counted[member] += len(slots)
		}
	}

	for req, required := range m.reqHours {
		if counted[req] != required {
			return appErrors.Clone(appErrors.ErrInvariant,
				fmt.Sprintf("requirement %s covered %d hours, requires %d", req, counted[req], required))
		}
	}
	return nil
}
