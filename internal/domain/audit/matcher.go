package audit

import (
	"sort"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

const errMalformedGroup = "group defines neither courses_required nor credits_required"

// Matcher selects which planned courses count toward a single requirement.
type Matcher struct {
	opts  Options
	index *catalog.Index
}

// NewMatcher creates a Matcher. index may be nil when no substitution is
// needed.
func NewMatcher(opts Options, index *catalog.Index) *Matcher {
	return &Matcher{opts: opts, index: index}
}

// Match evaluates req against courses, which must already be filtered to
// the statuses that count. substitute enables equivalency matching for
// group options.
func (m *Matcher) Match(req *program.Requirement, courses []*plan.PlannedCourse, substitute bool) RequirementMatch {
	if req.IsGrouped() {
		return m.matchGrouped(req, courses, substitute)
	}
	return m.matchSimple(req, courses)
}

// ─────────────────────────────────────────────────────────────────────────────
// Simple requirements
// ─────────────────────────────────────────────────────────────────────────────

func (m *Matcher) matchSimple(req *program.Requirement, courses []*plan.PlannedCourse) RequirementMatch {
	res := RequirementMatch{
		CreditsRequired: req.CreditsRequired,
		CoursesUsed:     []CourseUse{},
	}
	for _, pc := range courses {
		if !req.MatchesCategory(pc.RequirementCategory) {
			continue
		}
		use := newCourseUse(pc, nil)
		res.CoursesUsed = append(res.CoursesUsed, use)
		res.CreditsEarned += use.Credits
	}
	res.Satisfied = res.CreditsEarned >= req.CreditsRequired
	res.RemainingCredits = remaining(req.CreditsRequired, res.CreditsEarned)
	return res
}

// ─────────────────────────────────────────────────────────────────────────────
// Grouped requirements
// ─────────────────────────────────────────────────────────────────────────────

func (m *Matcher) matchGrouped(req *program.Requirement, courses []*plan.PlannedCourse, substitute bool) RequirementMatch {
	res := RequirementMatch{
		CreditsRequired: req.CreditsRequired,
		CoursesUsed:     []CourseUse{},
		Groups:          make([]GroupResult, 0, len(req.Groups)),
	}

	// A course counts once per requirement: the first group in declaration
	// order that uses it claims it.
	allGroups := true
	claimed := make(map[string]struct{})
	for _, g := range req.Groups {
		gr := m.matchGroup(req, g, courses, substitute, claimed)
		res.Groups = append(res.Groups, gr)
		res.CreditsEarned += gr.CreditsEarned
		if !gr.Satisfied {
			allGroups = false
		}
		for _, use := range gr.CoursesUsed {
			claimed[use.PlannedCourseID] = struct{}{}
			res.CoursesUsed = append(res.CoursesUsed, use)
		}
	}

	enough := res.CreditsEarned >= req.CreditsRequired
	if m.opts.GroupedStrict {
		res.Satisfied = allGroups && enough
	} else {
		res.Satisfied = enough
	}
	res.RemainingCredits = remaining(req.CreditsRequired, res.CreditsEarned)
	return res
}

// MatchGroup evaluates one group of req. Courses explicitly assigned to a
// different group of the same requirement are left to that group.
func (m *Matcher) MatchGroup(req *program.Requirement, g *program.RequirementGroup, courses []*plan.PlannedCourse, substitute bool) GroupResult {
	return m.matchGroup(req, g, courses, substitute, nil)
}

// matchGroup is MatchGroup ignoring courses already claimed by a sibling
// group.
func (m *Matcher) matchGroup(req *program.Requirement, g *program.RequirementGroup, courses []*plan.PlannedCourse, substitute bool, claimed map[string]struct{}) GroupResult {
	res := GroupResult{
		GroupID:     g.ID,
		Name:        g.Name,
		CoursesUsed: []CourseUse{},
	}
	if g.CoursesRequired != nil {
		res.CoursesRequired = *g.CoursesRequired
	}
	if g.CreditsRequired != nil {
		res.CreditsRequired = *g.CreditsRequired
	}

	policy := g.Policy()
	switch policy {
	case program.PolicyMalformed:
		res.Error = errMalformedGroup
		return res
	case program.PolicyEmpty:
		res.Satisfied = true
		return res
	}

	var matches []CourseUse
	for _, pc := range courses {
		if pc.Course == nil {
			continue
		}
		if _, taken := claimed[pc.ID]; taken {
			continue
		}
		if assigned := pc.GroupID(); assigned != "" && assigned != g.ID && ownsGroup(req, assigned) {
			continue
		}
		if !g.AcceptsCredits(pc.EffectiveCredits()) {
			continue
		}
		matchedAs, ok := m.matchOption(pc, g, substitute)
		if !ok {
			continue
		}
		matches = append(matches, newCourseUse(pc, matchedAs))
	}
	res.CoursesMatched = len(matches)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Credits > matches[j].Credits
	})

	switch policy {
	case program.PolicyCount:
		n := *g.CoursesRequired
		if n > len(matches) {
			n = len(matches)
		}
		for _, use := range matches[:n] {
			res.CoursesUsed = append(res.CoursesUsed, use)
			res.CreditsEarned += use.Credits
		}
		res.Satisfied = len(matches) >= *g.CoursesRequired

	case program.PolicyCredits:
		target := *g.CreditsRequired
		for _, use := range matches {
			if res.CreditsEarned >= target {
				break
			}
			res.CoursesUsed = append(res.CoursesUsed, use)
			res.CreditsEarned += use.Credits
		}
		res.Satisfied = res.CreditsEarned >= target
	}
	return res
}

// matchOption finds the catalog course through which pc satisfies one of
// g's options: pc's own course, or with substitution any equivalent course.
func (m *Matcher) matchOption(pc *plan.PlannedCourse, g *program.RequirementGroup, substitute bool) (*catalog.Course, bool) {
	if optionMatches(g, pc.Course) {
		return pc.Course, true
	}
	if !substitute {
		return nil, false
	}
	for _, id := range m.index.Closure(pc.CourseID).Sorted() {
		if id == pc.CourseID {
			continue
		}
		c, ok := m.index.Course(id)
		if !ok {
			continue
		}
		if optionMatches(g, c) {
			return c, true
		}
	}
	return nil, false
}

func optionMatches(g *program.RequirementGroup, c *catalog.Course) bool {
	for _, opt := range g.Options {
		if opt.Matches(c) {
			return true
		}
	}
	return false
}

func ownsGroup(req *program.Requirement, groupID string) bool {
	for _, g := range req.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

func remaining(required, earned int) int {
	if earned >= required {
		return 0
	}
	return required - earned
}
