package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

type unitKind int

const (
	unitStandalone unitKind = iota
	unitGroup
)

// schedUnit is one decision column of the compiled model: either a standalone
// requirement or a whole parallel group. A group is a single variable per
// slot, so synchronization holds by construction and no per-member equality
// constraints exist.
type schedUnit struct {
	idx       int
	id        string
	kind      unitKind
	subject   string
	grade     string
	teachers  []string
	classes   []string
	members   []string
	hours     int
	priority  int
	demanding bool
	meeting   bool

	eligible []bool // indexed by slot
	slots    []int  // eligible slot indexes, ascending
}

// blockVar marks two-consecutive-period occupancy of one unit. Block
// variables feed only the objective, never a hard constraint.
type blockVar struct {
	unit  int
	day   int
	start int
	a, b  int // slot indexes of the consecutive pair
}

type maxRunRule struct {
	subject string
	classes map[string]bool // empty means every class
	maxRun  int
}

// softRule is one compiled soft constraint: a weighted penalty over the
// placements of in-scope units, consumed by the evaluator only.
type softRule struct {
	kind   models.ConstraintKind
	weight float64
	units  []bool // in-scope units, indexed by unit

	slots    map[int]bool // penalized slot indexes (restriction and window kinds)
	maxRun   int
	day      int
	teachers []string
	fraction float64
}

type presenceRule struct {
	day      int
	teachers []string
	fraction float64
	classes  []string
	minLast  int
}

// compiledModel is the immutable search input. Workers read it concurrently
// and never write to it.
type compiledModel struct {
	slots   []models.TimeSlot
	slotIdx map[string]int
	byDay   map[int][]int // slot indexes per day, ordered by period

	units  []*schedUnit
	blocks []blockVar

	weights      Weights
	morningLimit int

	maxRuns   []maxRunRule
	presence  []presenceRule
	softRules []softRule

	teacherUnits map[string][]int
	classUnits   map[string][]int
	reqHours     map[string]int // per requirement id, after sync and surplus split

	hardCount     int
	conflicts     int
	conflictNotes []string
}

// buildModel creates the decision variables for the reshaped requirement
// list: one boolean per eligible (unit, slot) pair plus the auxiliary block
// variables. Slot-level restrictions (breaks, grade/class tags) are applied
// here; data-driven constraint records are compiled afterwards.
func buildModel(res groupingResult, slots []models.TimeSlot, weights Weights, morningLimit int) *compiledModel {
	m := &compiledModel{
		slots:        slots,
		slotIdx:      make(map[string]int, len(slots)),
		byDay:        make(map[int][]int),
		weights:      weights,
		morningLimit: morningLimit,
		teacherUnits: make(map[string][]int),
		classUnits:   make(map[string][]int),
		reqHours:     make(map[string]int),
	}
	for i, slot := range slots {
		m.slotIdx[slot.ID] = i
		m.byDay[slot.Day] = append(m.byDay[slot.Day], i)
	}
	for day := range m.byDay {
		idxs := m.byDay[day]
		sort.Slice(idxs, func(i, j int) bool { return slots[idxs[i]].Period < slots[idxs[j]].Period })
	}

	for _, req := range res.standalone {
		m.addUnit(&schedUnit{
			id:        req.ID,
			kind:      unitStandalone,
			subject:   req.Subject,
			grade:     req.Grade,
			teachers:  req.TeacherIDs,
			classes:   req.ClassIDs,
			members:   []string{req.ID},
			hours:     req.WeeklyHours,
			priority:  req.Priority,
			demanding: req.Demanding,
			meeting:   req.IsMeeting,
		})
		m.reqHours[req.ID] += req.WeeklyHours
	}
	for _, group := range res.groups {
		members := res.byGroup[group.ID]
		u := &schedUnit{
			id:      group.ID,
			kind:    unitGroup,
			subject: group.Subject,
			grade:   group.Grade,
			hours:   group.Hours,
		}
		for _, member := range members {
			u.teachers = append(u.teachers, member.TeacherIDs...)
			u.classes = append(u.classes, member.ClassIDs...)
			u.members = append(u.members, member.ID)
			u.demanding = u.demanding || member.Demanding
			if member.Priority > u.priority {
				u.priority = member.Priority
			}
			m.reqHours[member.ID] += group.Hours
		}
		u.teachers = lo.Uniq(u.teachers)
		u.classes = lo.Uniq(u.classes)
		sort.Strings(u.members)
		m.addUnit(u)
	}

	for _, u := range m.units {
		u.eligible = make([]bool, len(slots))
		for i, slot := range slots {
			u.eligible[i] = slotOpenFor(slot, u)
		}
	}
	m.refreshEligibleSlots()
	return m
}

func (m *compiledModel) addUnit(u *schedUnit) {
	u.idx = len(m.units)
	m.units = append(m.units, u)
	for _, t := range u.teachers {
		m.teacherUnits[t] = append(m.teacherUnits[t], u.idx)
	}
	for _, c := range u.classes {
		m.classUnits[c] = append(m.classUnits[c], u.idx)
	}
}

// slotOpenFor applies the slot's own restrictions: break slots are never
// assignable, and tagged restrictions close the slot for matching grades or
// classes. Meetings occupy teachers only, so class tags do not apply.
func slotOpenFor(slot models.TimeSlot, u *schedUnit) bool {
	if slot.IsBreak {
		return false
	}
	if u.grade != "" && lo.Contains(slot.RestrictedGrades, u.grade) {
		return false
	}
	if !u.meeting {
		for _, class := range u.classes {
			if lo.Contains(slot.RestrictedClasses, class) {
				return false
			}
		}
	}
	return true
}

// refreshEligibleSlots recomputes the ascending eligible slot lists and the
// block variables after eligibility changed.
func (m *compiledModel) refreshEligibleSlots() {
	m.blocks = m.blocks[:0]
	for _, u := range m.units {
		u.slots = u.slots[:0]
		for i, ok := range u.eligible {
			if ok {
				u.slots = append(u.slots, i)
			}
		}
		if u.hours < 2 {
			continue
		}
		for day, idxs := range m.byDay {
			for k := 0; k+1 < len(idxs); k++ {
				a, b := idxs[k], idxs[k+1]
				if m.slots[b].Period != m.slots[a].Period+1 {
					continue
				}
				if u.eligible[a] && u.eligible[b] {
					m.blocks = append(m.blocks, blockVar{unit: u.idx, day: day, start: m.slots[a].Period, a: a, b: b})
				}
			}
		}
	}
}

// maxRunFor returns the tightest consecutive-period limit applying to a
// subject for a class, or 0 when unlimited.
func (m *compiledModel) maxRunFor(subject, class string) int {
	limit := 0
	for _, rule := range m.maxRuns {
		if rule.subject != "" && rule.subject != subject {
			continue
		}
		if len(rule.classes) > 0 && !rule.classes[class] {
			continue
		}
		if limit == 0 || rule.maxRun < limit {
			limit = rule.maxRun
		}
	}
	return limit
}
