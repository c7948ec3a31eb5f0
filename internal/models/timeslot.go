package models

// TimeSlot is one schedulable period in the weekly grid. Break slots are
// never assignable; restriction tags close the slot for matching grades or
// classes only.
type TimeSlot struct {
	ID                string   `json:"id" validate:"required"`
	Day               int      `json:"day" validate:"min=0,max=5"`
	Period            int      `json:"period" validate:"min=0"`
	Start             string   `json:"start,omitempty"`
	End               string   `json:"end,omitempty"`
	IsBreak           bool     `json:"is_break,omitempty"`
	RestrictedGrades  []string `json:"restricted_grades,omitempty"`
	RestrictedClasses []string `json:"restricted_classes,omitempty"`
}
