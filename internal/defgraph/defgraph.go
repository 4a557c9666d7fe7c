// Package defgraph tracks dependencies between declarations discovered
// during resolution and flags declarations that participate in recursion,
// per spec.md §4.3. Grounded on OAL's defgraph::DefGraph; in absence of a
// graph/SCC library anywhere in the corpus (the teacher's own petgraph
// dependency has no Go analogue in the examples), strongly connected
// components are computed with a hand-rolled Tarjan's algorithm rather than
// the teacher's Kosaraju, since both report the same partition and Tarjan
// needs no reverse graph.
package defgraph

import "github.com/oalang/apic/internal/syntax"

// Graph records edges from a currently-open declaration to every
// declaration reached through a Variable or Application reference while it
// is open.
type Graph struct {
	current  *syntax.External
	indexOf  map[string]int
	externs  []syntax.External
	edges    map[int]map[int]bool
	selfLoop map[int]bool
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		indexOf:  make(map[string]int),
		edges:    make(map[int]map[int]bool),
		selfLoop: make(map[int]bool),
	}
}

// insert keys on ext.String() rather than the External value itself: two
// Locators parsed from equal strings are not guaranteed identical pointers,
// so External is not safe to use directly as a map key (locator.Locator.Key
// documents the same caveat).
func (g *Graph) insert(ext syntax.External) int {
	key := ext.String()
	if i, ok := g.indexOf[key]; ok {
		return i
	}
	i := len(g.externs)
	g.externs = append(g.externs, ext)
	g.indexOf[key] = i
	g.edges[i] = make(map[int]bool)
	return i
}

// Open marks from as the currently-open declaration.
func (g *Graph) Open(from syntax.External) {
	e := from
	g.current = &e
	g.insert(from)
}

// Close clears the currently-open declaration.
func (g *Graph) Close() {
	g.current = nil
}

// Connect adds an edge from the currently-open declaration to to, a no-op
// if no declaration is currently open.
func (g *Graph) Connect(to syntax.External) {
	if g.current == nil {
		return
	}
	from := g.insert(*g.current)
	toIdx := g.insert(to)
	if from == toIdx {
		g.selfLoop[from] = true
	}
	g.edges[from][toIdx] = true
}

// tarjanState holds the working state of Tarjan's SCC algorithm.
type tarjanState struct {
	g        *Graph
	index    []int
	lowlink  []int
	onStack  []bool
	stack    []int
	counter  int
	sccs     [][]int
}

func (s *tarjanState) strongconnect(v int) {
	s.index[v] = s.counter
	s.lowlink[v] = s.counter
	s.counter++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	for w := range s.g.edges[v] {
		if s.index[w] == -1 {
			s.strongconnect(w)
			if s.lowlink[w] < s.lowlink[v] {
				s.lowlink[v] = s.lowlink[w]
			}
		} else if s.onStack[w] {
			if s.index[w] < s.lowlink[v] {
				s.lowlink[v] = s.index[w]
			}
		}
	}

	if s.lowlink[v] == s.index[v] {
		var component []int
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		s.sccs = append(s.sccs, component)
	}
}

// sccs returns the strongly connected components of the graph, in no
// particular order.
func (g *Graph) sccs() [][]int {
	n := len(g.externs)
	s := &tarjanState{
		g:       g,
		index:   make([]int, n),
		lowlink: make([]int, n),
		onStack: make([]bool, n),
	}
	for i := range s.index {
		s.index[i] = -1
	}
	for v := 0; v < n; v++ {
		if s.index[v] == -1 {
			s.strongconnect(v)
		}
	}
	return s.sccs
}

// Recursive is the set of declarations found to be self- or
// mutually-recursive, keyed on External.String() for the same reason
// Graph.insert is (Locator is not safely comparable with ==).
type Recursive struct {
	set map[string]bool
}

// Has reports whether ext was found to be self- or mutually-recursive.
func (r Recursive) Has(ext syntax.External) bool {
	return r.set[ext.String()]
}

// IdentifyRecursion partitions the graph into strongly connected components
// and reports every External lying in a non-trivial component (size > 1, or
// a single node with a self-loop).
func (g *Graph) IdentifyRecursion() Recursive {
	out := Recursive{set: make(map[string]bool)}
	for _, component := range g.sccs() {
		trivial := len(component) == 1 && !g.selfLoop[component[0]]
		if trivial {
			continue
		}
		for _, idx := range component {
			out.set[g.externs[idx].String()] = true
		}
	}
	return out
}
