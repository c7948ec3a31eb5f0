package models

// ConstraintKind identifies which compiler consumes a constraint record.
type ConstraintKind string

const (
	// ConstraintSlotRestriction closes a slot set globally or for tagged
	// grades/classes/teachers.
	ConstraintSlotRestriction ConstraintKind = "SLOT_RESTRICTION"
	// ConstraintMandatoryWindow confines a subject to a prescribed slot subset.
	ConstraintMandatoryWindow ConstraintKind = "MANDATORY_WINDOW"
	// ConstraintMaxConsecutive limits consecutive periods of the same subject.
	ConstraintMaxConsecutive ConstraintKind = "MAX_CONSECUTIVE"
	// ConstraintMandatoryPresence requires, on a designated weekday, that a
	// fraction of tagged teachers have at least one assignment and that tagged
	// classes are not fully scheduled before a configured period.
	ConstraintMandatoryPresence ConstraintKind = "MANDATORY_PRESENCE"
)

// ConstraintScope narrows which units a constraint applies to.
type ConstraintScope string

const (
	ScopeGlobal  ConstraintScope = "GLOBAL"
	ScopeTeacher ConstraintScope = "TEACHER"
	ScopeClass   ConstraintScope = "CLASS"
	ScopeGroup   ConstraintScope = "GROUP"
)

// Constraint is one institutional rule, hard or soft. Records are data-driven
// and provenance-free: manually entered and agent-authored constraints are
// structurally identical. A constraint is never mutated mid-solve.
type Constraint struct {
	ID       string          `json:"id" validate:"required"`
	Kind     ConstraintKind  `json:"kind" validate:"required"`
	Hard     bool            `json:"hard"`
	SoftHard bool            `json:"soft_hard,omitempty"`
	// Weight scales the objective penalty of a soft record (Hard false).
	// Hard records ignore it.
	Weight float64 `json:"weight,omitempty"`
	Priority int             `json:"priority,omitempty"`
	Scope    ConstraintScope `json:"scope,omitempty"`

	Subject    string   `json:"subject,omitempty"`
	TeacherIDs []string `json:"teacher_ids,omitempty"`
	ClassIDs   []string `json:"class_ids,omitempty"`
	Grades     []string `json:"grades,omitempty"`
	SlotIDs    []string `json:"slot_ids,omitempty"`

	MaxRun           int     `json:"max_run,omitempty"`
	PresenceDay      int     `json:"presence_day,omitempty"`
	PresenceFraction float64 `json:"presence_fraction,omitempty"`
	MinLastPeriod    int     `json:"min_last_period,omitempty"`
}
