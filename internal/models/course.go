package models

// CourseRequirement is one weekly teaching obligation: a subject taught by one
// or more teachers to one or more classes for a fixed number of weekly hours.
// Requirements are supplied once per solve and never mutated by the engine.
type CourseRequirement struct {
	ID              string   `json:"id" validate:"required"`
	Subject         string   `json:"subject" validate:"required"`
	TeacherIDs      []string `json:"teacher_ids" validate:"required,min=1,dive,required"`
	ClassIDs        []string `json:"class_ids" validate:"required,min=1,dive,required"`
	WeeklyHours     int      `json:"weekly_hours" validate:"required,gt=0"`
	Grade           string   `json:"grade"`
	ParallelGroupID string   `json:"parallel_group_id,omitempty"`
	IsMeeting       bool     `json:"is_meeting,omitempty"`
	Demanding       bool     `json:"demanding,omitempty"`
	Priority        int      `json:"priority,omitempty"`
}

// ParallelGroup is a set of requirements that must occupy identical time
// slots. The synchronized hour count is the minimum across members; surplus
// member hours are carved off into standalone requirements before solving.
type ParallelGroup struct {
	ID        string   `json:"id"`
	MemberIDs []string `json:"member_ids"`
	Subject   string   `json:"subject"`
	Grade     string   `json:"grade"`
	Hours     int      `json:"hours"`
}
