package catalog

import "sort"

// Index is a flat table of loaded courses plus the equivalency graph over
// them. The engine resolves codes and closures through it without touching
// storage. A nil Index behaves as an empty one.
type Index struct {
	courses map[CourseID]*Course
	byCode  map[string][]CourseID
	graph   *Graph
}

// NewIndex indexes courses by ID and canonical code.
func NewIndex(courses []*Course, graph *Graph) *Index {
	ix := &Index{
		courses: make(map[CourseID]*Course, len(courses)),
		byCode:  make(map[string][]CourseID, len(courses)),
		graph:   graph,
	}
	for _, c := range courses {
		if c == nil {
			continue
		}
		if _, dup := ix.courses[c.ID]; dup {
			continue
		}
		ix.courses[c.ID] = c
		code := c.Code()
		ix.byCode[code] = append(ix.byCode[code], c.ID)
	}
	return ix
}

// Graph returns the underlying equivalency graph.
func (ix *Index) Graph() *Graph {
	if ix == nil {
		return nil
	}
	return ix.graph
}

// Course looks up a course by ID.
func (ix *Index) Course(id CourseID) (*Course, bool) {
	if ix == nil {
		return nil, false
	}
	c, ok := ix.courses[id]
	return c, ok
}

// Len returns the number of indexed courses.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.courses)
}

// ByCode returns the courses carrying code, restricted to institution when
// one is given.
func (ix *Index) ByCode(code string, institution InstitutionID) []*Course {
	if ix == nil {
		return nil
	}
	var out []*Course
	for _, id := range ix.byCode[NormalizeCode(code)] {
		c := ix.courses[id]
		if institution != "" && c.Institution != institution {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Closure returns the transitive equivalents of id.
func (ix *Index) Closure(id CourseID) IDSet {
	return ix.Graph().TransitiveEquivalents(id)
}

// EquivalentCodes returns the canonical code plus the codes of every course
// equivalent to a course carrying it, sorted.
func (ix *Index) EquivalentCodes(code string, institution InstitutionID) []string {
	code = NormalizeCode(code)
	seen := map[string]struct{}{code: {}}
	for _, c := range ix.ByCode(code, institution) {
		for _, other := range ix.Graph().EquivalentCodes(c.ID, ix.Course) {
			seen[other] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// IDs returns every indexed course ID.
func (ix *Index) IDs() []CourseID {
	if ix == nil {
		return nil
	}
	out := make([]CourseID, 0, len(ix.courses))
	for id := range ix.courses {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
