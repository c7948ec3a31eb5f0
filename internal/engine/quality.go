package engine

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/dto"
	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
	appErrors "github.com/yossefc/school-scheduler-parallel-sub000/pkg/errors"
)

// Quality score constants. The formula is a pure function of the metrics:
// score = clamp(100 - gapWeight*avg_gaps_per_class_day + blockBonus*blocks - syncPenalty, 0, 100)
// where syncPenalty applies only when member synchronization is violated.
const (
	qualityGapWeight   = 5.0
	qualityBlockBonus  = 2.0
	qualitySyncPenalty = 40.0
)

// QualityAnalyzer computes objective-independent metrics for any timetable,
// whether produced by the engine or edited externally.
type QualityAnalyzer struct {
	logger *zap.Logger
}

func NewQualityAnalyzer(logger *zap.Logger) *QualityAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualityAnalyzer{logger: logger}
}

// Analyze reconstructs per-(class, day) occupancy from raw assignments and
// derives gaps, blocks, coverage ratio and the 0-100 score.
func (a *QualityAnalyzer) Analyze(req dto.AnalyzeRequest) (*models.QualityReport, error) {
	slotByID := lo.SliceToMap(req.Slots, func(s models.TimeSlot) (string, models.TimeSlot) { return s.ID, s })
	courseByID := lo.SliceToMap(req.Courses, func(c models.CourseRequirement) (string, models.CourseRequirement) { return c.ID, c })

	type classDay struct {
		class string
		day   int
	}
	occupied := make(map[classDay]map[int]string) // period -> subject
	assignedHours := make(map[string]int)

	for _, assignment := range req.Assignments {
		slot, ok := slotByID[assignment.SlotID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrData, fmt.Sprintf("assignment references unknown slot %s", assignment.SlotID))
		}
		course, ok := courseByID[assignment.RequirementID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrData, fmt.Sprintf("assignment references unknown requirement %s", assignment.RequirementID))
		}
		assignedHours[course.ID]++
		if course.IsMeeting {
			continue
		}
		for _, class := range course.ClassIDs {
			key := classDay{class: class, day: slot.Day}
			if occupied[key] == nil {
				occupied[key] = make(map[int]string)
			}
			occupied[key][slot.Period] = course.Subject
		}
	}

	breaks := breakPeriods(req.Slots)

	report := &models.QualityReport{SyncOK: true}
	classDays := 0
	for key, periods := range occupied {
		classDays++
		ordered := lo.Keys(periods)
		sort.Ints(ordered)
		report.GapCount += countGaps(ordered, breaks[key.day])
		report.BlockCount += countBlocks(ordered, periods)
	}
	if classDays > 0 {
		report.AvgGapsPerClassDay = float64(report.GapCount) / float64(classDays)
	}

	// Per-requirement hours are capped at the requirement's demand, so
	// over-assigned timetables never report coverage above one.
	covered := 0
	for _, c := range req.Courses {
		hours := assignedHours[c.ID]
		if hours > c.WeeklyHours {
			hours = c.WeeklyHours
		}
		covered += hours
	}
	required := lo.SumBy(req.Courses, func(c models.CourseRequirement) int { return c.WeeklyHours })
	if required > 0 {
		report.CoverageRatio = float64(covered) / float64(required)
	}

	report.SyncOK = groupsSynchronized(req)

	score := 100 - qualityGapWeight*report.AvgGapsPerClassDay + qualityBlockBonus*float64(report.BlockCount)
	if !report.SyncOK {
		score -= qualitySyncPenalty
	}
	report.Score = clamp(score, 0, 100)
	return report, nil
}

// groupsSynchronized checks that each group's members share at least the
// synchronized hour count of common slots. Surplus member hours legitimately
// fall outside the shared set, so only the common core is compared.
func groupsSynchronized(req dto.AnalyzeRequest) bool {
	if len(req.Groups) == 0 {
		return true
	}
	slotsByReq := make(map[string][]string)
	for _, assignment := range req.Assignments {
		slotsByReq[assignment.RequirementID] = append(slotsByReq[assignment.RequirementID], assignment.SlotID)
	}
	for _, group := range req.Groups {
		if len(group.MemberIDs) == 0 {
			continue
		}
		common := lo.Uniq(slotsByReq[group.MemberIDs[0]])
		for _, member := range group.MemberIDs[1:] {
			common = lo.Intersect(common, lo.Uniq(slotsByReq[member]))
		}
		if len(common) < group.Hours {
			return false
		}
	}
	return true
}

func breakPeriods(slots []models.TimeSlot) map[int]map[int]bool {
	out := make(map[int]map[int]bool)
	for _, slot := range slots {
		if !slot.IsBreak {
			continue
		}
		if out[slot.Day] == nil {
			out[slot.Day] = make(map[int]bool)
		}
		out[slot.Day][slot.Period] = true
	}
	return out
}

// countGaps counts empty non-break periods strictly between the first and
// last occupied period of a class day.
func countGaps(ordered []int, breaks map[int]bool) int {
	if len(ordered) < 2 {
		return 0
	}
	gaps := 0
	for i := 0; i < len(ordered)-1; i++ {
		for p := ordered[i] + 1; p < ordered[i+1]; p++ {
			if !breaks[p] {
				gaps++
			}
		}
	}
	return gaps
}

// countBlocks counts runs of two or more consecutive periods of the same
// subject; a run of length n contributes n-1 blocks.
func countBlocks(ordered []int, periods map[int]string) int {
	blocks := 0
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i+1] == ordered[i]+1 && periods[ordered[i]] == periods[ordered[i+1]] {
			blocks++
		}
	}
	return blocks
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
