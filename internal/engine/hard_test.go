package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

func buildTestModel(courses []models.CourseRequirement, slots []models.TimeSlot) *compiledModel {
	return buildModel(synchronizeGroups(courses), slots, DefaultWeights(), 4)
}

func TestMandatoryWindowConfinesSubject(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 2),
		course("r2", "eng", "t2", "c1", 2),
	}, gridSlots(1, 4))

	applyConstraints(m, []models.Constraint{{
		ID:      "win-math",
		Kind:    models.ConstraintMandatoryWindow,
		Hard:    true,
		Subject: "math",
		SlotIDs: []string{"d0p0", "d0p1"},
	}}, true)

	assert.Equal(t, []int{0, 1}, m.units[0].slots)
	assert.Equal(t, []int{0, 1, 2, 3}, m.units[1].slots)
	assert.Equal(t, structuralHardConstraints+1, m.hardCount)
	assert.Zero(t, m.conflicts)
}

func TestSlotRestrictionHonoursTeacherScope(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 1),
		course("r2", "eng", "t2", "c2", 1),
	}, gridSlots(1, 3))

	applyConstraints(m, []models.Constraint{{
		ID:         "no-first-period",
		Kind:       models.ConstraintSlotRestriction,
		Hard:       true,
		Scope:      models.ScopeTeacher,
		TeacherIDs: []string{"t1"},
		SlotIDs:    []string{"d0p0"},
	}}, true)

	assert.Equal(t, []int{1, 2}, m.units[0].slots)
	assert.Equal(t, []int{0, 1, 2}, m.units[1].slots)
}

func TestSoftConstraintCompilesToPenaltyRule(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 1)}, gridSlots(1, 3))

	applyConstraints(m, []models.Constraint{{
		ID:      "soft-wish",
		Kind:    models.ConstraintSlotRestriction,
		Hard:    false,
		Weight:  1000,
		SlotIDs: []string{"d0p0"},
	}}, true)

	// A soft record never narrows eligibility and never counts as hard.
	assert.Equal(t, structuralHardConstraints, m.hardCount)
	assert.Equal(t, []int{0, 1, 2}, m.units[0].slots)

	require.Len(t, m.softRules, 1)
	e := &evaluator{m: m}
	assert.InDelta(t, -1000, e.score([][]int{{0}}), 1e-9)
	assert.InDelta(t, 0, e.score([][]int{{1}}), 1e-9)
}

func TestSoftConstraintWithoutWeightIsInert(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 1)}, gridSlots(1, 3))

	applyConstraints(m, []models.Constraint{{
		ID:      "weightless",
		Kind:    models.ConstraintSlotRestriction,
		Hard:    false,
		SlotIDs: []string{"d0p0"},
	}}, true)

	assert.Empty(t, m.softRules)
}

func TestSoftConstraintHonoursScope(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 1),
		course("r2", "eng", "t2", "c2", 1),
	}, gridSlots(1, 2))

	applyConstraints(m, []models.Constraint{{
		ID:         "soft-t1",
		Kind:       models.ConstraintSlotRestriction,
		Hard:       false,
		Weight:     10,
		Scope:      models.ScopeTeacher,
		TeacherIDs: []string{"t1"},
		SlotIDs:    []string{"d0p0"},
	}}, true)

	require.Len(t, m.softRules, 1)
	e := &evaluator{m: m}
	// Only the in-scope unit pays for the penalized slot.
	assert.InDelta(t, -10, e.score([][]int{{0}, {1}}), 1e-9)
	assert.InDelta(t, 0, e.score([][]int{{1}, {0}}), 1e-9)
}

func TestSoftHardConstraintSkippedWhenRelaxed(t *testing.T) {
	restriction := models.Constraint{
		ID:       "tight",
		Kind:     models.ConstraintSlotRestriction,
		Hard:     true,
		SoftHard: true,
		SlotIDs:  []string{"d0p0", "d0p1"},
	}

	strict := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 2)}, gridSlots(1, 2))
	applyConstraints(strict, []models.Constraint{restriction}, true)
	assert.Positive(t, strict.conflicts, "closing every slot must be a detected conflict")

	relaxed := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 2)}, gridSlots(1, 2))
	applyConstraints(relaxed, []models.Constraint{restriction}, false)
	assert.Zero(t, relaxed.conflicts)
	assert.Equal(t, []int{0, 1}, relaxed.units[0].slots)
}

func TestDetectConflictsUnitWithTooFewSlots(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 3)}, gridSlots(1, 2))
	applyConstraints(m, nil, true)

	require.Positive(t, m.conflicts)
	assert.Contains(t, m.conflictNotes[0], "r1")
}

func TestDetectConflictsWindowOverflow(t *testing.T) {
	// Two subjects of the same class confined to the same two-slot window
	// need four hours inside it. Each unit alone fits; only the pigeonhole
	// capacity check can prove the overflow.
	m := buildTestModel([]models.CourseRequirement{
		course("r1", "phys", "t1", "c1", 2),
		course("r2", "chem", "t2", "c1", 2),
	}, gridSlots(1, 4))

	window := []string{"d0p0", "d0p1"}
	applyConstraints(m, []models.Constraint{
		{ID: "win-phys", Kind: models.ConstraintMandatoryWindow, Hard: true, Subject: "phys", SlotIDs: window},
		{ID: "win-chem", Kind: models.ConstraintMandatoryWindow, Hard: true, Subject: "chem", SlotIDs: window},
	}, true)

	require.Positive(t, m.conflicts)
	assert.Contains(t, m.conflictNotes[0], "class c1")
}

func TestMaxConsecutiveCompilesToRunRule(t *testing.T) {
	m := buildTestModel([]models.CourseRequirement{course("r1", "math", "t1", "c1", 3)}, gridSlots(1, 5))

	applyConstraints(m, []models.Constraint{{
		ID:       "run-limit",
		Kind:     models.ConstraintMaxConsecutive,
		Hard:     true,
		Subject:  "math",
		ClassIDs: []string{"c1"},
		MaxRun:   2,
	}}, true)

	require.Len(t, m.maxRuns, 1)
	assert.Equal(t, 2, m.maxRunFor("math", "c1"))
	assert.Zero(t, m.maxRunFor("math", "c2"))
}
