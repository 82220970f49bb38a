package audit

import (
	"fmt"
	"strings"
)

// UnmetRequirements lists the requirements of the report that are not met.
func UnmetRequirements(r *Report) []Unmet {
	out := []Unmet{}
	if r == nil {
		return out
	}
	for _, req := range r.Requirements {
		if req.Met() {
			continue
		}
		u := Unmet{
			RequirementID: req.RequirementID,
			Category:      req.Category,
			CreditsNeeded: req.RemainingCredits,
		}
		for _, g := range req.Groups {
			switch {
			case g.Error != "":
				u.Reasons = append(u.Reasons, fmt.Sprintf("%s: %s", g.Name, g.Error))
			case !g.Satisfied:
				u.Reasons = append(u.Reasons, groupShortfall(g))
			}
		}
		for _, c := range req.Constraints {
			if !c.Satisfied {
				u.Reasons = append(u.Reasons, c.Reason)
			}
		}
		u.Description = describeUnmet(req, u)
		out = append(out, u)
	}
	return out
}

// UnmetRequirements evaluates the snapshot and lists what is not met.
func (e *Evaluator) UnmetRequirements(s Snapshot, view View) ([]Unmet, error) {
	report, err := e.FullProgress(s, view)
	if err != nil {
		return nil, err
	}
	return UnmetRequirements(report), nil
}

func groupShortfall(g GroupResult) string {
	if g.CoursesRequired > 0 {
		return fmt.Sprintf("%s: %d of %d courses", g.Name, min(g.CoursesMatched, g.CoursesRequired), g.CoursesRequired)
	}
	return fmt.Sprintf("%s: %d of %d credits", g.Name, g.CreditsEarned, g.CreditsRequired)
}

func describeUnmet(req RequirementResult, u Unmet) string {
	var b strings.Builder
	if u.CreditsNeeded > 0 {
		fmt.Fprintf(&b, "Need %d more credits in %s", u.CreditsNeeded, req.Category)
	} else {
		fmt.Fprintf(&b, "Credits complete in %s but rules not met", req.Category)
	}
	if req.Description != "" {
		b.WriteString(" (" + req.Description + ")")
	}
	return b.String()
}
