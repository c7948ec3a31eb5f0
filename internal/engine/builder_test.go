package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

func TestBuildModelExcludesBreakAndRestrictedSlots(t *testing.T) {
	slots := gridSlots(1, 4)
	slots[1].IsBreak = true
	slots[3].RestrictedGrades = []string{"g1"}

	res := synchronizeGroups([]models.CourseRequirement{course("r1", "math", "t1", "c1", 2)})
	m := buildModel(res, slots, DefaultWeights(), 4)

	require.Len(t, m.units, 1)
	assert.Equal(t, []int{0, 2}, m.units[0].slots)
}

func TestBuildModelRestrictedClassClosesSlot(t *testing.T) {
	slots := gridSlots(1, 3)
	slots[0].RestrictedClasses = []string{"c1"}

	res := synchronizeGroups([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 1),
		course("r2", "eng", "t2", "c2", 1),
	})
	m := buildModel(res, slots, DefaultWeights(), 4)

	require.Len(t, m.units, 2)
	assert.Equal(t, []int{1, 2}, m.units[0].slots)
	assert.Equal(t, []int{0, 1, 2}, m.units[1].slots)
}

func TestBuildModelMeetingIgnoresClassRestrictions(t *testing.T) {
	slots := gridSlots(1, 2)
	slots[0].RestrictedClasses = []string{"c1"}

	meeting := course("r1", "staff", "t1", "c1", 1)
	meeting.IsMeeting = true
	res := synchronizeGroups([]models.CourseRequirement{meeting})
	m := buildModel(res, slots, DefaultWeights(), 4)

	require.Len(t, m.units, 1)
	assert.Equal(t, []int{0, 1}, m.units[0].slots)
}

func TestBuildModelParallelGroupIsOneUnit(t *testing.T) {
	res := synchronizeGroups([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 3),
		course("r2", "math", "t2", "c2", 3),
	})
	m := buildModel(res, gridSlots(1, 4), DefaultWeights(), 4)

	require.Len(t, m.units, 1)
	u := m.units[0]
	assert.Equal(t, unitGroup, u.kind)
	assert.ElementsMatch(t, []string{"t1", "t2"}, u.teachers)
	assert.ElementsMatch(t, []string{"c1", "c2"}, u.classes)
	assert.Equal(t, []string{"r1", "r2"}, u.members)
	assert.Equal(t, 3, u.hours)
	assert.Equal(t, 3, m.reqHours["r1"])
	assert.Equal(t, 3, m.reqHours["r2"])
}

func TestBuildModelEnumeratesBlockVariables(t *testing.T) {
	res := synchronizeGroups([]models.CourseRequirement{
		course("r1", "math", "t1", "c1", 2),
		course("r2", "eng", "t2", "c2", 1),
	})
	m := buildModel(res, gridSlots(1, 3), DefaultWeights(), 4)

	// Two consecutive pairs for the two-hour unit, none for the single hour.
	require.Len(t, m.blocks, 2)
	for _, b := range m.blocks {
		assert.Equal(t, 0, b.unit)
		assert.Equal(t, b.a+1, b.b)
	}
}

func TestMaxRunForPicksTightestRule(t *testing.T) {
	m := &compiledModel{maxRuns: []maxRunRule{
		{subject: "", classes: map[string]bool{}, maxRun: 3},
		{subject: "math", classes: map[string]bool{"c1": true}, maxRun: 2},
	}}

	assert.Equal(t, 2, m.maxRunFor("math", "c1"))
	assert.Equal(t, 3, m.maxRunFor("math", "c2"))
	assert.Equal(t, 3, m.maxRunFor("eng", "c1"))
}
