package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/dto"
	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
	appErrors "github.com/yossefc/school-scheduler-parallel-sub000/pkg/errors"
	"github.com/yossefc/school-scheduler-parallel-sub000/pkg/metrics"
)

// problem is one immutable solve input. Fallback levels work on clones.
type problem struct {
	courses     []models.CourseRequirement
	slots       []models.TimeSlot
	constraints []models.Constraint
}

func (p problem) clone() problem {
	return problem{
		courses:     append([]models.CourseRequirement(nil), p.courses...),
		slots:       append([]models.TimeSlot(nil), p.slots...),
		constraints: append([]models.Constraint(nil), p.constraints...),
	}
}

// attemptOutcome is the result of compiling and searching one model.
type attemptOutcome struct {
	status      models.SolutionStatus
	assignments []models.Assignment
	metrics     models.SolutionMetrics
	nodes       int64
	model       *compiledModel
	err         error
}

// usable reports whether the outcome carries a complete assignment set.
func (o attemptOutcome) usable() bool {
	switch o.status {
	case models.StatusOptimal, models.StatusFeasible:
		return true
	case models.StatusTimeout:
		return len(o.assignments) > 0
	default:
		return false
	}
}

// Solver composes the whole scheduling pipeline behind a single solve entry
// point. It keeps no state between calls.
type Solver struct {
	cfg      Config
	validate *validator.Validate
	logger   *zap.Logger
	recorder *metrics.Recorder
	analyzer *QualityAnalyzer
}

// New wires the solver. Nil collaborators fall back to no-op defaults.
func New(cfg Config, logger *zap.Logger, recorder *metrics.Recorder) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{
		cfg:      cfg.withDefaults(),
		validate: validator.New(),
		logger:   logger,
		recorder: recorder,
		analyzer: NewQualityAnalyzer(logger),
	}
}

// Solve runs one full regeneration: group synchronization, model building,
// constraint compilation, bounded parallel search, extraction, validation and
// quality analysis, falling back through the retry ladder when the advanced
// model yields nothing usable. Infeasibility and timeouts are statuses, not
// errors; only malformed input and broken invariants return an error.
func (s *Solver) Solve(ctx context.Context, req dto.SolveRequest) (*models.Solution, error) {
	started := time.Now()

	if err := s.checkInput(req); err != nil {
		s.recorder.ObserveSolve(appErrors.ErrData.Code, time.Since(started))
		return nil, err
	}

	p := problem{courses: req.Courses, slots: req.Slots, constraints: req.Constraints}
	outcome := s.attempt(ctx, p, s.cfg, true, p.courses)

	fallbackLevel := FallbackLevel("")
	if !outcome.usable() && outcome.err == nil {
		s.logger.Warn("advanced model unusable, entering fallback ladder",
			zap.String("status", string(outcome.status)),
			zap.Int("conflicts", outcome.model.conflicts),
		)
		baseModel := outcome.model
		baseNodes := outcome.nodes
		fb := &fallbackController{cfg: s.cfg, logger: s.logger, recorder: s.recorder, attempt: s.attempt}
		if fbOutcome, level, ok := fb.run(ctx, p); ok {
			outcome = fbOutcome
			fallbackLevel = level
		} else {
			// Provable infeasibility survives the ladder as INFEASIBLE; any
			// other exhausted ladder is an ERROR. Both carry diagnostics.
			final := models.StatusError
			if outcome.status == models.StatusInfeasible {
				final = models.StatusInfeasible
			}
			outcome = attemptOutcome{status: final, model: baseModel, nodes: baseNodes}
		}
	}

	solution := s.finalize(outcome, fallbackLevel, started)
	s.recorder.ObserveSolve(string(solution.Status), solution.Elapsed)
	s.logger.Info("solve finished",
		zap.String("solution_id", solution.ID),
		zap.String("status", string(solution.Status)),
		zap.Float64("score", solution.Metrics.Score),
		zap.Duration("elapsed", solution.Elapsed),
	)
	if outcome.err != nil {
		return solution, outcome.err
	}
	return solution, nil
}

// AnalyzeQuality scores any timetable without re-solving.
func (s *Solver) AnalyzeQuality(req dto.AnalyzeRequest) (*models.QualityReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrData.Code, "invalid quality analysis payload")
	}
	return s.analyzer.Analyze(req)
}

// attempt compiles one model and searches it. metricCourses is the
// requirement list quality metrics are computed against; fallback truncation
// passes the original list so coverage reads as partial.
func (s *Solver) attempt(ctx context.Context, p problem, cfg Config, includeSoftHard bool, metricCourses []models.CourseRequirement) attemptOutcome {
	grouped := synchronizeGroups(p.courses)
	m := buildModel(grouped, p.slots, cfg.Weights, cfg.MorningPeriodLimit)
	applyConstraints(m, p.constraints, includeSoftHard)

	if m.conflicts > 0 {
		s.logger.Debug("model provably infeasible before search",
			zap.Int("conflicts", m.conflicts),
			zap.Strings("notes", m.conflictNotes),
		)
		return attemptOutcome{status: models.StatusInfeasible, model: m}
	}

	driver := newSearchDriver(m, cfg, s.logger)
	result := driver.run(ctx)
	outcome := attemptOutcome{status: result.status, model: m, nodes: result.nodes}
	if result.best == nil {
		return outcome
	}

	if err := validateSolution(m, result.best.picks); err != nil {
		outcome.status = models.StatusError
		outcome.err = err
		return outcome
	}

	outcome.assignments = extractAssignments(m, result.best.picks)
	report, err := s.analyzer.Analyze(dto.AnalyzeRequest{
		Courses:     metricCourses,
		Slots:       p.slots,
		Assignments: outcome.assignments,
		Groups:      grouped.groups,
	})
	if err != nil {
		outcome.status = models.StatusError
		outcome.err = appErrors.Wrap(err, appErrors.ErrInternal.Code, "quality analysis of solved model failed")
		outcome.assignments = nil
		return outcome
	}
	outcome.metrics = models.SolutionMetrics{
		Score:         report.Score,
		GapCount:      report.GapCount,
		BlockCount:    report.BlockCount,
		SyncOK:        report.SyncOK,
		CoverageRatio: report.CoverageRatio,
	}
	return outcome
}

func (s *Solver) finalize(outcome attemptOutcome, level FallbackLevel, started time.Time) *models.Solution {
	solution := &models.Solution{
		ID:      uuid.NewString(),
		Status:  outcome.status,
		Metrics: outcome.metrics,
		Elapsed: time.Since(started),
	}
	if outcome.model != nil {
		solution.Diagnostics = models.SolveDiagnostics{
			HardConstraints: outcome.model.hardCount,
			Conflicts:       outcome.model.conflicts,
			NodesExplored:   outcome.nodes,
		}
	}
	solution.Diagnostics.FallbackLevel = string(level)

	// Assignments are empty exactly when the run is infeasible or errored.
	switch solution.Status {
	case models.StatusInfeasible, models.StatusError:
		solution.Assignments = nil
	default:
		solution.Assignments = outcome.assignments
	}
	return solution
}

// checkInput rejects malformed input before any model is built.
func (s *Solver) checkInput(req dto.SolveRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrData.Code, "invalid solve payload")
	}
	seenCourses := make(map[string]bool, len(req.Courses))
	for _, course := range req.Courses {
		if seenCourses[course.ID] {
			return appErrors.Clone(appErrors.ErrData, fmt.Sprintf("duplicate requirement id %s", course.ID))
		}
		seenCourses[course.ID] = true
	}
	seenSlots := make(map[string]bool, len(req.Slots))
	for _, slot := range req.Slots {
		if seenSlots[slot.ID] {
			return appErrors.Clone(appErrors.ErrData, fmt.Sprintf("duplicate slot id %s", slot.ID))
		}
		seenSlots[slot.ID] = true
	}
	for _, constraint := range req.Constraints {
		for _, id := range constraint.SlotIDs {
			if !seenSlots[id] {
				return appErrors.Clone(appErrors.ErrData, fmt.Sprintf("constraint %s references unknown slot %s", constraint.ID, id))
			}
		}
	}
	return nil
}
