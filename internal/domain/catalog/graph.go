package catalog

import "sort"

// IDSet is an unordered set of course IDs.
type IDSet map[CourseID]struct{}

// Has reports membership.
func (s IDSet) Has(id CourseID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order, for stable output.
func (s IDSet) Sorted() []CourseID {
	out := make([]CourseID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Graph is the equivalency relation as an undirected adjacency map.
// A Graph is read-only after construction and safe for concurrent use.
type Graph struct {
	adj map[CourseID][]CourseID
}

// NewGraph builds the adjacency map from directed equivalency rows.
// Self-loops and duplicate edges are ignored.
func NewGraph(edges []Equivalency) *Graph {
	g := &Graph{adj: make(map[CourseID][]CourseID)}
	seen := make(map[[2]CourseID]struct{}, len(edges))
	for _, e := range edges {
		if e.CourseID == "" || e.EquivalentID == "" || e.CourseID == e.EquivalentID {
			continue
		}
		a, b := e.CourseID, e.EquivalentID
		if b < a {
			a, b = b, a
		}
		key := [2]CourseID{a, b}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.adj[a] = append(g.adj[a], b)
		g.adj[b] = append(g.adj[b], a)
	}
	return g
}

// Neighbors returns the direct equivalents of id.
func (g *Graph) Neighbors(id CourseID) []CourseID {
	if g == nil {
		return nil
	}
	return g.adj[id]
}

// TransitiveEquivalents returns every course reachable from id through
// equivalency edges, id included. A nil graph yields the singleton set.
func (g *Graph) TransitiveEquivalents(id CourseID) IDSet {
	visited := IDSet{id: {}}
	queue := []CourseID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Neighbors(cur) {
			if visited.Has(next) {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

// Equivalent reports whether a and b are in the same closure.
func (g *Graph) Equivalent(a, b CourseID) bool {
	if a == b {
		return true
	}
	return g.TransitiveEquivalents(a).Has(b)
}

// EquivalentCodes maps the closure of id to canonical course codes using
// lookup. IDs lookup cannot resolve are skipped.
func (g *Graph) EquivalentCodes(id CourseID, lookup func(CourseID) (*Course, bool)) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, member := range g.TransitiveEquivalents(id).Sorted() {
		c, ok := lookup(member)
		if !ok || c == nil {
			continue
		}
		code := c.Code()
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
