package audit

import (
	"fmt"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

// EvaluateConstraint checks c against the courses a requirement matched.
// The scope narrows that subset; nothing outside it is considered.
func EvaluateConstraint(c *program.Constraint, used []CourseUse, opts Options) ConstraintResult {
	res := ConstraintResult{
		ConstraintID: c.ID,
		Type:         c.Type(),
		Description:  c.Description,
		Tally:        map[string]int{},
	}

	scoped := make([]CourseUse, 0, len(used))
	for _, use := range used {
		if c.Scope.Contains(use.Course) {
			scoped = append(scoped, use)
		}
	}
	res.Tally["scoped_courses"] = len(scoped)

	switch rule := c.Rule.(type) {
	case program.MinLevelCredits:
		credits := sumCredits(scoped, func(course *catalog.Course) bool {
			return course.Level() >= rule.LevelMin
		})
		res.Tally["credits"] = credits
		res.Tally["required"] = rule.Credits
		res.Satisfied = credits >= rule.Credits
		if !res.Satisfied {
			res.Reason = fmt.Sprintf("%d of %d credits at level %d or above", credits, rule.Credits, rule.LevelMin)
		}

	case program.MinTagCourses:
		count := countCourses(scoped, func(course *catalog.Course) bool {
			return course.HasTag(rule.Tag)
		})
		res.Tally["courses"] = count
		res.Tally["required"] = rule.Courses
		res.Satisfied = count >= rule.Courses
		if !res.Satisfied {
			res.Reason = fmt.Sprintf("%d of %d %s courses", count, rule.Courses, rule.Tag)
		}

	case program.MaxTagCredits:
		credits := sumCredits(scoped, func(course *catalog.Course) bool {
			if rule.Tag == string(catalog.TypeResearch) {
				return course.Type.IsResearchLike()
			}
			return course.HasTag(rule.Tag)
		})
		res.Tally["credits"] = credits
		res.Tally["max"] = rule.Credits
		res.Satisfied = credits <= rule.Credits
		if !res.Satisfied {
			res.Reason = fmt.Sprintf("%d %s credits exceed the maximum of %d", credits, rule.Tag, rule.Credits)
		}

	case program.MinCoursesAtLevel:
		count := countCourses(scoped, func(course *catalog.Course) bool {
			return course.Level() == rule.Level
		})
		res.Tally["courses"] = count
		res.Tally["required"] = rule.Courses
		res.Satisfied = count >= rule.Courses
		if !res.Satisfied {
			res.Reason = fmt.Sprintf("%d of %d courses at level %d", count, rule.Courses, rule.Level)
		}

	default:
		res.Satisfied = opts.UnknownConstraints != FailClosed
		res.Reason = unknownReason(c, opts)
	}
	return res
}

func unknownReason(c *program.Constraint, opts Options) string {
	name := c.Type()
	if name == "" {
		name = "unset"
	}
	detail := ""
	if u, ok := c.Rule.(program.UnknownRule); ok && u.Problem != "" {
		detail = " (" + u.Problem + ")"
	}
	if opts.UnknownConstraints == FailClosed {
		return fmt.Sprintf("constraint type %q cannot be evaluated%s; treated as unmet", name, detail)
	}
	return fmt.Sprintf("constraint type %q cannot be evaluated%s; not enforced", name, detail)
}

func sumCredits(uses []CourseUse, pred func(*catalog.Course) bool) int {
	total := 0
	for _, use := range uses {
		if use.Course != nil && pred(use.Course) {
			total += use.Credits
		}
	}
	return total
}

func countCourses(uses []CourseUse, pred func(*catalog.Course) bool) int {
	n := 0
	for _, use := range uses {
		if use.Course != nil && pred(use.Course) {
			n++
		}
	}
	return n
}
