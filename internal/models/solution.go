package models

import "time"

// SolutionStatus is the terminal state of one solve invocation.
type SolutionStatus string

const (
	StatusOptimal    SolutionStatus = "OPTIMAL"
	StatusFeasible   SolutionStatus = "FEASIBLE"
	StatusInfeasible SolutionStatus = "INFEASIBLE"
	StatusTimeout    SolutionStatus = "TIMEOUT"
	StatusError      SolutionStatus = "ERROR"
)

// Assignment pairs one requirement (or parallel-group member) with one slot.
// Assignments are produced only by the engine and never partially written.
type Assignment struct {
	RequirementID string `json:"requirement_id"`
	SlotID        string `json:"slot_id"`
}

// SolutionMetrics summarises assignment quality.
type SolutionMetrics struct {
	Score         float64 `json:"score"`
	GapCount      int     `json:"gap_count"`
	BlockCount    int     `json:"block_count"`
	SyncOK        bool    `json:"sync_ok"`
	CoverageRatio float64 `json:"coverage_ratio"`
}

// SolveDiagnostics carries operator-triage counters, populated on every
// solve and mandatory when the fallback ladder is exhausted.
type SolveDiagnostics struct {
	HardConstraints int    `json:"hard_constraints"`
	Conflicts       int    `json:"conflicts"`
	NodesExplored   int64  `json:"nodes_explored"`
	FallbackLevel   string `json:"fallback_level,omitempty"`
}

// Solution is the result of one solve call. Assignments are empty exactly
// when the status is INFEASIBLE or ERROR.
type Solution struct {
	ID          string           `json:"id"`
	Status      SolutionStatus   `json:"status"`
	Assignments []Assignment     `json:"assignments"`
	Metrics     SolutionMetrics  `json:"metrics"`
	Diagnostics SolveDiagnostics `json:"diagnostics"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
}

// QualityReport is the objective-independent quality analysis of any
// timetable, solved or externally edited.
type QualityReport struct {
	Score              float64 `json:"score"`
	GapCount           int     `json:"gap_count"`
	AvgGapsPerClassDay float64 `json:"avg_gaps_per_class_day"`
	BlockCount         int     `json:"block_count"`
	CoverageRatio      float64 `json:"coverage_ratio"`
	SyncOK             bool    `json:"sync_ok"`
}
