package audit

import (
	"sort"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

// SuggestCourses proposes unused options of the unmet grouped requirements.
// Options already in the plan, directly or through an equivalency, are
// skipped regardless of status. Preferred options come first within a group.
func (e *Evaluator) SuggestCourses(s Snapshot, view View) ([]Suggestion, error) {
	report, err := e.FullProgress(s, view)
	if err != nil {
		return nil, err
	}

	inPlan := plannedClosure(s.Plan, s.Index)
	limit := e.opts.suggestionLimit()
	out := []Suggestion{}

	byID := make(map[string]*program.Requirement, len(s.Program.Requirements))
	for _, r := range s.Program.Requirements {
		byID[r.ID] = r
	}

	for _, rr := range report.Requirements {
		req := byID[rr.RequirementID]
		if rr.Met() || req == nil || !req.IsGrouped() {
			continue
		}
		failing := failingConstraints(req, rr)
		for i, g := range req.Groups {
			if !needsCourses(rr, i) {
				continue
			}
			out = append(out, suggestForGroup(req, g, s.Plan, s.Index, inPlan, failing, limit)...)
		}
	}
	return out, nil
}

// needsCourses reports whether group i should be offered. Unsatisfied groups
// always are; when every group is satisfied but credits fall short or a
// constraint fails, all are.
func needsCourses(rr RequirementResult, i int) bool {
	if i >= len(rr.Groups) {
		return false
	}
	g := rr.Groups[i]
	if g.Error != "" {
		return false
	}
	if !g.Satisfied {
		return true
	}
	for _, other := range rr.Groups {
		if !other.Satisfied && other.Error == "" {
			return false
		}
	}
	return rr.RemainingCredits > 0 || !rr.ConstraintsSatisfied
}

// suggestForGroup ranks options that fix a failing constraint first, then
// preferred options, then declaration order.
func suggestForGroup(req *program.Requirement, g *program.RequirementGroup, p *plan.Plan, ix *catalog.Index, inPlan catalog.IDSet, failing []*program.Constraint, limit int) []Suggestion {
	var candidates []Suggestion
	seen := make(map[string]struct{})
	for _, opt := range g.Options {
		code := catalog.NormalizeCode(opt.CourseCode)
		if _, dup := seen[code+"|"+string(opt.Institution)]; dup {
			continue
		}
		seen[code+"|"+string(opt.Institution)] = struct{}{}
		if optionInPlan(opt, p, ix, inPlan) {
			continue
		}
		sg := Suggestion{
			RequirementID: req.ID,
			Category:      req.Category,
			GroupID:       g.ID,
			GroupName:     g.Name,
			CourseCode:    code,
			Institution:   string(opt.Institution),
			IsPreferred:   opt.IsPreferred,
		}
		if courses := ix.ByCode(code, opt.Institution); len(courses) > 0 {
			sg.Title = courses[0].Title
			sg.Credits = courses[0].Credits
			for _, c := range failing {
				if helpsConstraint(c, courses[0]) {
					sg.FixesConstraints = append(sg.FixesConstraints, c.ID)
				}
			}
		}
		candidates = append(candidates, sg)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		fi, fj := len(candidates[i].FixesConstraints) > 0, len(candidates[j].FixesConstraints) > 0
		if fi != fj {
			return fi
		}
		return candidates[i].IsPreferred && !candidates[j].IsPreferred
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// failingConstraints returns the constraints of req that rr reports unmet.
func failingConstraints(req *program.Requirement, rr RequirementResult) []*program.Constraint {
	failed := make(map[string]struct{})
	for _, cr := range rr.Constraints {
		if !cr.Satisfied {
			failed[cr.ConstraintID] = struct{}{}
		}
	}
	var out []*program.Constraint
	for _, c := range req.Constraints {
		if _, ok := failed[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// helpsConstraint reports whether taking course moves a failing minimum
// constraint toward satisfaction. Adding courses never fixes a maximum.
func helpsConstraint(c *program.Constraint, course *catalog.Course) bool {
	if !c.Scope.Contains(course) {
		return false
	}
	switch rule := c.Rule.(type) {
	case program.MinLevelCredits:
		return course.Level() >= rule.LevelMin
	case program.MinTagCourses:
		return course.HasTag(rule.Tag)
	case program.MinCoursesAtLevel:
		return course.Level() == rule.Level
	default:
		return false
	}
}

// plannedClosure is the union of equivalency closures of every planned course.
func plannedClosure(p *plan.Plan, ix *catalog.Index) catalog.IDSet {
	set := catalog.IDSet{}
	for _, pc := range p.Courses {
		for id := range ix.Closure(pc.CourseID) {
			set[id] = struct{}{}
		}
	}
	return set
}

func optionInPlan(opt program.GroupCourseOption, p *plan.Plan, ix *catalog.Index, inPlan catalog.IDSet) bool {
	for _, pc := range p.Courses {
		if opt.Matches(pc.Course) {
			return true
		}
	}
	for _, c := range ix.ByCode(opt.CourseCode, opt.Institution) {
		if inPlan.Has(c.ID) {
			return true
		}
	}
	return false
}
