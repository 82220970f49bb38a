package audit

import (
	"math"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// Snapshot is everything one evaluation reads, loaded before the call.
type Snapshot struct {
	Plan    *plan.Plan
	Program *program.Program

	// Index holds the catalog courses reachable from the plan and the
	// program through equivalencies. May be nil.
	Index *catalog.Index
}

func (s Snapshot) validate() error {
	if s.Plan == nil {
		return shared.ErrPlanNotFound
	}
	if s.Program == nil {
		return shared.ErrNoTargetProgram
	}
	return nil
}

// Evaluator aggregates requirement matches and constraints into a report.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates an Evaluator with resolved options.
func NewEvaluator(opts Options) *Evaluator {
	if opts.UnknownConstraints == "" {
		opts.UnknownConstraints = FailOpen
	}
	return &Evaluator{opts: opts}
}

// Options returns the options the evaluator runs with.
func (e *Evaluator) Options() Options {
	return e.opts
}

// FullProgress evaluates every requirement of the target program in
// priority order.
func (e *Evaluator) FullProgress(s Snapshot, view View) (*Report, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	counted := view.Filter(s.Plan.Courses)
	matcher := NewMatcher(e.opts, s.Index)
	substitute := view.AllowsSubstitution()

	report := &Report{
		PlanCode:      s.Plan.Code,
		ProgramID:     s.Program.ID,
		ProgramName:   s.Program.Name,
		ProgramType:   s.Program.ProgramType,
		View:          view,
		GroupedStrict: e.opts.GroupedStrict,
		Requirements:  make([]RequirementResult, 0, len(s.Program.Requirements)),
	}

	for _, req := range s.Program.SortedRequirements() {
		result := e.evaluateRequirement(matcher, req, counted, substitute)
		report.Requirements = append(report.Requirements, result)

		report.TotalCreditsRequired += req.CreditsRequired
		report.TotalCreditsEarned += min(result.CreditsEarned, req.CreditsRequired)
	}

	report.RemainingCredits = remaining(report.TotalCreditsRequired, report.TotalCreditsEarned)
	report.CompletionPercentage = completion(report.TotalCreditsEarned, report.TotalCreditsRequired)
	return report, nil
}

func (e *Evaluator) evaluateRequirement(m *Matcher, req *program.Requirement, counted []*plan.PlannedCourse, substitute bool) RequirementResult {
	match := m.Match(req, counted, substitute)

	result := RequirementResult{
		RequirementID:        req.ID,
		Category:             req.Category,
		Description:          req.Description,
		Type:                 string(req.Type),
		PriorityOrder:        req.PriorityOrder,
		ConstraintsSatisfied: true,
		RequirementMatch:     match,
	}

	for _, use := range match.CoursesUsed {
		if use.Status == plan.StatusCompleted {
			result.CompletedCredits += use.Credits
		}
	}

	for _, c := range req.Constraints {
		cr := EvaluateConstraint(c, match.CoursesUsed, e.opts)
		result.Constraints = append(result.Constraints, cr)
		if !cr.Satisfied {
			result.ConstraintsSatisfied = false
		}
	}

	switch {
	case match.Satisfied && result.ConstraintsSatisfied:
		result.Status = StatusMet
	case match.CreditsEarned > 0 || match.Satisfied:
		result.Status = StatusPart
	default:
		result.Status = StatusNone
	}
	return result
}

// completion returns earned/required as a percentage clamped to [0, 100]
// and rounded to one decimal. Nothing required is complete.
func completion(earned, required int) float64 {
	if required <= 0 {
		return 100
	}
	pct := float64(earned) / float64(required) * 100
	pct = math.Max(0, math.Min(100, pct))
	return math.Round(pct*10) / 10
}
