package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

var (
	errInvalidCode    = shared.ErrInvalidCourseCode
	errInvalidCredits = shared.ErrInvalidCredits
)

// codePattern accepts "MATH101", "math 101", "MATH-101", "BIOS_3010L".
var codePattern = regexp.MustCompile(`^([A-Za-z]+)[\s\-_]*([0-9]+[A-Za-z]*)$`)

// ParseCode splits a course code into subject and number.
// ok is false when the token does not look like a course code.
func ParseCode(raw string) (subject, number string, ok bool) {
	m := codePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), strings.ToUpper(m[2]), true
}

// FormatCode joins subject and number into the canonical code.
func FormatCode(subject, number string) string {
	return strings.ToUpper(strings.TrimSpace(subject)) + " " + strings.ToUpper(strings.TrimSpace(number))
}

// NormalizeCode returns the canonical form of a code, or the trimmed
// upper-cased input when it does not parse.
func NormalizeCode(raw string) string {
	subject, number, ok := ParseCode(raw)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(raw))
	}
	return FormatCode(subject, number)
}

// LevelOf derives the academic level from a course number: the leading
// digits floored to the thousand for four-digit numbers (3150 -> 3000) and
// to the hundred for shorter ones (101 -> 100). Numbers without digits are level 0.
func LevelOf(number string) int {
	end := 0
	for end < len(number) && number[end] >= '0' && number[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(number[:end])
	if err != nil {
		return 0
	}
	if n >= 1000 {
		return n / 1000 * 1000
	}
	return n / 100 * 100
}
