package engine

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

// structural hard constraints: exact coverage and no double-booking. They are
// always active, independent of data-driven records.
const structuralHardConstraints = 2

// applyConstraints compiles the data-driven institutional rules into the
// model. Hard constraints are enforced exactly; a violated rule makes the
// model infeasible rather than relaxed. Soft records become weighted penalty
// rules consumed by the objective and never touch eligibility. When
// includeSoftHard is false, records tagged soft-hard are skipped (the
// fallback controller's demotion level).
func applyConstraints(m *compiledModel, constraints []models.Constraint, includeSoftHard bool) {
	m.hardCount = structuralHardConstraints
	for _, c := range constraints {
		if !c.Hard {
			m.addSoftRule(c)
			continue
		}
		if c.SoftHard && !includeSoftHard {
			continue
		}
		switch c.Kind {
		case models.ConstraintSlotRestriction:
			m.applySlotRestriction(c)
		case models.ConstraintMandatoryWindow:
			m.applyMandatoryWindow(c)
		case models.ConstraintMaxConsecutive:
			if c.MaxRun > 0 {
				m.maxRuns = append(m.maxRuns, maxRunRule{
					subject: c.Subject,
					classes: lo.SliceToMap(c.ClassIDs, func(id string) (string, bool) { return id, true }),
					maxRun:  c.MaxRun,
				})
			}
		case models.ConstraintMandatoryPresence:
			m.presence = append(m.presence, presenceRule{
				day:      c.PresenceDay,
				teachers: c.TeacherIDs,
				fraction: c.PresenceFraction,
				classes:  c.ClassIDs,
				minLast:  c.MinLastPeriod,
			})
		default:
			continue
		}
		m.hardCount++
	}
	m.refreshEligibleSlots()
	m.detectConflicts()
}

// applySlotRestriction closes the listed slots for every unit in scope.
func (m *compiledModel) applySlotRestriction(c models.Constraint) {
	closed := m.slotIndexSet(c.SlotIDs)
	for _, u := range m.units {
		if !m.inScope(c, u) {
			continue
		}
		for idx := range closed {
			u.eligible[idx] = false
		}
	}
}

// applyMandatoryWindow confines matching units to the prescribed slot subset.
func (m *compiledModel) applyMandatoryWindow(c models.Constraint) {
	window := m.slotIndexSet(c.SlotIDs)
	for _, u := range m.units {
		if c.Subject != "" && u.subject != c.Subject {
			continue
		}
		if !m.inScope(c, u) {
			continue
		}
		for idx := range u.eligible {
			if u.eligible[idx] && !window[idx] {
				u.eligible[idx] = false
			}
		}
	}
}

// addSoftRule compiles one soft record into a weighted objective penalty.
// Slot restrictions penalize placements on the listed slots, mandatory
// windows penalize placements outside them, run limits penalize the excess
// consecutive periods and presence rules penalize each missing teacher.
// A non-positive weight makes the record a no-op.
func (m *compiledModel) addSoftRule(c models.Constraint) {
	if c.Weight <= 0 {
		return
	}
	rule := softRule{kind: c.Kind, weight: c.Weight, units: make([]bool, len(m.units))}
	for _, u := range m.units {
		rule.units[u.idx] = m.inScope(c, u)
	}
	switch c.Kind {
	case models.ConstraintSlotRestriction:
		rule.slots = m.slotIndexSet(c.SlotIDs)
	case models.ConstraintMandatoryWindow:
		window := m.slotIndexSet(c.SlotIDs)
		rule.slots = make(map[int]bool, len(m.slots))
		for i := range m.slots {
			if !window[i] {
				rule.slots[i] = true
			}
		}
	case models.ConstraintMaxConsecutive:
		if c.MaxRun <= 0 {
			return
		}
		rule.maxRun = c.MaxRun
	case models.ConstraintMandatoryPresence:
		rule.day = c.PresenceDay
		rule.teachers = c.TeacherIDs
		rule.fraction = c.PresenceFraction
	default:
		return
	}
	m.softRules = append(m.softRules, rule)
}

func (m *compiledModel) slotIndexSet(ids []string) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		if idx, ok := m.slotIdx[id]; ok {
			set[idx] = true
		}
	}
	return set
}

func (m *compiledModel) inScope(c models.Constraint, u *schedUnit) bool {
	switch c.Scope {
	case models.ScopeTeacher:
		return len(lo.Intersect(c.TeacherIDs, u.teachers)) > 0
	case models.ScopeClass:
		return len(lo.Intersect(c.ClassIDs, u.classes)) > 0 ||
			(len(c.Grades) > 0 && lo.Contains(c.Grades, u.grade))
	case models.ScopeGroup:
		return u.kind == unitGroup && (len(c.ClassIDs) == 0 || len(lo.Intersect(c.ClassIDs, u.classes)) > 0)
	default:
		// Subject-targeted records apply per subject even without a scope.
		if c.Subject != "" {
			return u.subject == c.Subject
		}
		return true
	}
}

// detectConflicts finds provable infeasibility before any search runs: a unit
// with fewer eligible slots than required hours, and class or teacher demand
// exceeding the capacity of the slot sets it is confined to.
func (m *compiledModel) detectConflicts() {
	m.conflicts = 0
	m.conflictNotes = m.conflictNotes[:0]

	for _, u := range m.units {
		if len(u.slots) < u.hours {
			m.addConflict(fmt.Sprintf("unit %s requires %d hours but only %d eligible slots remain", u.id, u.hours, len(u.slots)))
		}
	}

	m.detectCapacityConflicts(m.classUnits, func(u *schedUnit) bool { return !u.meeting }, "class")
	m.detectCapacityConflicts(m.teacherUnits, func(u *schedUnit) bool { return true }, "teacher")
}

// detectCapacityConflicts applies a pigeonhole argument per resource: for any
// eligible slot set S owned by one of the resource's units, the summed hours
// of units confined within S must not exceed |S|. This catches, for example,
// two morning-only subjects jointly overflowing the morning window.
func (m *compiledModel) detectCapacityConflicts(owners map[string][]int, counts func(*schedUnit) bool, label string) {
	names := lo.Keys(owners)
	sort.Strings(names)
	for _, name := range names {
		unitIdxs := owners[name]
		for _, outer := range unitIdxs {
			outerUnit := m.units[outer]
			if !counts(outerUnit) {
				continue
			}
			total := 0
			for _, inner := range unitIdxs {
				innerUnit := m.units[inner]
				if !counts(innerUnit) {
					continue
				}
				if subsetOf(innerUnit.slots, outerUnit.eligible) {
					total += innerUnit.hours
				}
			}
			if total > len(outerUnit.slots) {
				m.addConflict(fmt.Sprintf("%s %s needs %d hours inside a %d-slot window", label, name, total, len(outerUnit.slots)))
			}
		}
	}
}

func subsetOf(slots []int, eligible []bool) bool {
	for _, idx := range slots {
		if !eligible[idx] {
			return false
		}
	}
	return true
}

func (m *compiledModel) addConflict(note string) {
	if lo.Contains(m.conflictNotes, note) {
		return
	}
	m.conflicts++
	m.conflictNotes = append(m.conflictNotes, note)
}
