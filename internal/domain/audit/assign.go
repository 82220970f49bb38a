package audit

import (
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

// Assignment is the requirement group chosen for a newly added course.
type Assignment struct {
	RequirementID string `json:"requirement_id"`
	GroupID       string `json:"group_id"`
	Preferred     bool   `json:"preferred"`
}

// AssignGroup picks the best-fit group for course among the program's
// grouped requirements. Preferred options win, then the lowest requirement
// priority order, then declaration order. ok is false when no option
// names the course.
func AssignGroup(p *program.Program, course *catalog.Course) (Assignment, bool) {
	if p == nil || course == nil {
		return Assignment{}, false
	}

	var (
		best     Assignment
		bestPrio int
		found    bool
	)
	for _, req := range p.Requirements {
		if !req.IsGrouped() {
			continue
		}
		for _, g := range req.Groups {
			for _, opt := range g.Options {
				if !opt.Matches(course) {
					continue
				}
				candidate := Assignment{RequirementID: req.ID, GroupID: g.ID, Preferred: opt.IsPreferred}
				if !found || better(candidate, req.PriorityOrder, best, bestPrio) {
					best, bestPrio, found = candidate, req.PriorityOrder, true
				}
			}
		}
	}
	return best, found
}

// better reports whether a strictly beats b. Equal candidates keep b, so
// earlier declarations win.
func better(a Assignment, aPrio int, b Assignment, bPrio int) bool {
	if a.Preferred != b.Preferred {
		return a.Preferred
	}
	return aPrio < bPrio
}
