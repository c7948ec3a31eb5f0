package dto

import "github.com/yossefc/school-scheduler-parallel-sub000/internal/models"

// SolveRequest is the full input of one solve invocation. All records are
// pre-validated upstream; the engine re-checks structure before building.
type SolveRequest struct {
	Courses     []models.CourseRequirement `json:"courses" validate:"required,min=1,dive"`
	Slots       []models.TimeSlot          `json:"slots" validate:"required,min=1,dive"`
	Constraints []models.Constraint        `json:"constraints" validate:"omitempty,dive"`
}

// AnalyzeRequest scores an arbitrary timetable without re-solving. Groups are
// optional: when present the analyzer re-checks member synchronization.
type AnalyzeRequest struct {
	Courses     []models.CourseRequirement `json:"courses" validate:"required,min=1,dive"`
	Slots       []models.TimeSlot          `json:"slots" validate:"required,min=1,dive"`
	Assignments []models.Assignment        `json:"assignments" validate:"required"`
	Groups      []models.ParallelGroup     `json:"groups,omitempty"`
}
