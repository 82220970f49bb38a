package audit

import (
	"regexp"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// prereqSeparator splits on commas, semicolons and the words "and"/"or".
// Both words are read as conjunction.
var prereqSeparator = regexp.MustCompile(`(?i)\s*(?:,|;|\band\b|\bor\b)\s*`)

const prereqTrim = " \t\r\n()[]{}.:"

// ParsePrerequisites extracts canonical course codes from a free-text
// prerequisite expression. Tokens that are not course codes are dropped.
func ParsePrerequisites(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var codes []string
	for _, token := range prereqSeparator.Split(text, -1) {
		subject, number, ok := catalog.ParseCode(strings.Trim(token, prereqTrim))
		if !ok {
			continue
		}
		code := catalog.FormatCode(subject, number)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// PrerequisiteReport tells whether a student may take a course.
type PrerequisiteReport struct {
	Course                 string   `json:"course"`
	CanTake                bool     `json:"can_take"`
	MissingPrerequisites   []string `json:"missing_prerequisites"`
	SatisfiedPrerequisites []string `json:"satisfied_prerequisites"`
	AllPrerequisites       []string `json:"all_prerequisites"`
}

// ValidatePrerequisites checks target's prerequisites against completed
// course codes. A prerequisite is satisfied by any completed course whose
// code is equivalent to it. A nil target is ErrCourseNotFound.
func ValidatePrerequisites(target *catalog.Course, completed []string, ix *catalog.Index, institution catalog.InstitutionID) (PrerequisiteReport, error) {
	if target == nil {
		return PrerequisiteReport{}, shared.ErrCourseNotFound
	}

	have := make(map[string]struct{}, len(completed))
	for _, code := range completed {
		have[catalog.NormalizeCode(code)] = struct{}{}
	}

	report := PrerequisiteReport{
		Course:                 target.Code(),
		MissingPrerequisites:   []string{},
		SatisfiedPrerequisites: []string{},
		AllPrerequisites:       ParsePrerequisites(target.Prerequisites),
	}
	if report.AllPrerequisites == nil {
		report.AllPrerequisites = []string{}
	}

	for _, prereq := range report.AllPrerequisites {
		if anyIn(ix.EquivalentCodes(prereq, institution), have) {
			report.SatisfiedPrerequisites = append(report.SatisfiedPrerequisites, prereq)
		} else {
			report.MissingPrerequisites = append(report.MissingPrerequisites, prereq)
		}
	}
	report.CanTake = len(report.MissingPrerequisites) == 0
	return report, nil
}

func anyIn(codes []string, set map[string]struct{}) bool {
	for _, c := range codes {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}

// PrerequisiteDetails lists a course's prerequisites with the codes that
// can stand in for each.
type PrerequisiteDetails struct {
	Course          string              `json:"course"`
	Title           string              `json:"title,omitempty"`
	Prerequisites   []string            `json:"prerequisites"`
	EquivalentCodes map[string][]string `json:"equivalent_codes"`
}

// DescribePrerequisites builds PrerequisiteDetails for target.
func DescribePrerequisites(target *catalog.Course, ix *catalog.Index, institution catalog.InstitutionID) (PrerequisiteDetails, error) {
	if target == nil {
		return PrerequisiteDetails{}, shared.ErrCourseNotFound
	}
	details := PrerequisiteDetails{
		Course:          target.Code(),
		Title:           target.Title,
		Prerequisites:   ParsePrerequisites(target.Prerequisites),
		EquivalentCodes: make(map[string][]string),
	}
	if details.Prerequisites == nil {
		details.Prerequisites = []string{}
	}
	for _, prereq := range details.Prerequisites {
		details.EquivalentCodes[prereq] = ix.EquivalentCodes(prereq, institution)
	}
	return details, nil
}
