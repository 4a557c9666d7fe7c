// Package loader discovers a compilation's module graph and orders it for
// compilation (spec.md §4.1). Grounded on the teacher's internal/module
// loader.go (BFS/cache discovery shape) and internal/link/topo.go (cycle
// detection), reworked from the teacher's DFS-stack cycle check into an
// explicit Kahn topological sort per the design's "Kahn/Tarjan" wording,
// and retargeted from AILANG's .ail/ast.File world onto locator.Locator and
// syntax.Tree.
package loader

import (
	"sort"

	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/syntax"
)

// TextSource loads the raw source text a locator identifies.
type TextSource func(loc locator.Locator) (string, error)

// Parser parses a module's source text into a syntax tree, the "parse"
// half of the design's Loader capability.
type Parser func(loc locator.Locator, text string) (*syntax.Tree, error)

// Loader discovers a module's transitive import graph starting from a base
// locator. Load/Parse are injected so the loader carries no compile-time
// dependency on a concrete lexer/parser -- exactly the separation the
// design's "Loader capability" describes.
type Loader struct {
	Load  TextSource
	Parse Parser
}

// New builds a Loader from the two capability functions.
func New(load TextSource, parse Parser) *Loader {
	return &Loader{Load: load, Parse: parse}
}

// importsOf returns every import path a parsed module's top-level Program
// declares, in source order -- the same convention resolve.resolveImport
// relies on (literal path string in an Import node's Token.Text).
func importsOf(tree *syntax.Tree) []string {
	var out []string
	for _, n := range tree.Root().Children {
		if n.Kind == syntax.Import {
			out = append(out, n.Token.Text)
		}
	}
	return out
}

// Discover performs a breadth-first walk from base, parsing every module it
// transitively imports exactly once (by locator key), and returns the
// resulting module set together with the import edges recorded along the
// way (locator key -> locator keys it imports), ready for TopoOrder.
func (l *Loader) Discover(base locator.Locator) (*modset.Set, map[string][]string, error) {
	text, err := l.Load(base)
	if err != nil {
		return nil, nil, errors.Wrap(errors.New(errors.ModuleNotFound, "loader", err.Error()).WithCode(errors.LDR001))
	}
	tree, err := l.Parse(base, text)
	if err != nil {
		return nil, nil, errors.Wrap(errors.New(errors.ParseFailed, "loader", err.Error()).WithCode(errors.LDR001))
	}

	baseMod := modset.NewModule(base, tree)
	set := modset.New(baseMod)
	edges := make(map[string][]string)

	queue := []locator.Locator{base}
	visited := map[string]bool{base.Key(): true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		curMod, _ := set.Get(cur)
		deps := importsOf(curMod.Tree)

		var depKeys []string
		for _, path := range deps {
			depLoc, err := base.Join(path)
			if err != nil {
				return nil, nil, errors.Wrap(errors.New(errors.InvalidUrl, "loader", err.Error()).WithCode(errors.LDR003))
			}
			depKeys = append(depKeys, depLoc.Key())

			if visited[depLoc.Key()] {
				continue
			}
			visited[depLoc.Key()] = true

			depText, err := l.Load(depLoc)
			if err != nil {
				return nil, nil, errors.Wrap(errors.New(errors.ModuleNotFound, "loader", err.Error()).
					WithCode(errors.LDR001).With("locator", depLoc.String()))
			}
			depTree, err := l.Parse(depLoc, depText)
			if err != nil {
				return nil, nil, errors.Wrap(errors.New(errors.ParseFailed, "loader", err.Error()).
					WithCode(errors.LDR001).With("locator", depLoc.String()))
			}
			set.Insert(modset.NewModule(depLoc, depTree))
			queue = append(queue, depLoc)
		}
		edges[cur.Key()] = depKeys
	}

	return set, edges, nil
}

// TopoOrder produces a leaves-first compilation order (imports before
// importers) over the edges Discover recorded, via Kahn's algorithm. Ties
// are broken by Locator.Less for a deterministic order. A non-empty cycle
// remainder after Kahn's algorithm terminates is reported as CycleDetected,
// naming one offending locator.
func TopoOrder(set *modset.Set, edges map[string][]string) ([]locator.Locator, error) {
	indegree := make(map[string]int)
	keyToLoc := make(map[string]locator.Locator)
	for _, loc := range set.Locators() {
		keyToLoc[loc.Key()] = loc
		if _, ok := indegree[loc.Key()]; !ok {
			indegree[loc.Key()] = 0
		}
	}
	// An edge from -> to (from imports to) means "to" must compile before
	// "from": indegree counts each module's unresolved dependencies.
	for from, deps := range edges {
		indegree[from] += len(deps)
	}

	// dependents[to] lists every "from" that imports "to", so finishing
	// "to" can decrement those entries.
	dependents := make(map[string][]string)
	for from, deps := range edges {
		for _, to := range deps {
			dependents[to] = append(dependents[to], from)
		}
	}

	var ready []string
	for key, deg := range indegree {
		if deg == 0 {
			ready = append(ready, key)
		}
	}

	var order []locator.Locator
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return keyToLoc[ready[i]].Less(keyToLoc[ready[j]]) })
		key := ready[0]
		ready = ready[1:]
		order = append(order, keyToLoc[key])

		for _, dep := range dependents[key] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(indegree) {
		var offender locator.Locator
		for key, deg := range indegree {
			if deg > 0 {
				offender = keyToLoc[key]
				break
			}
		}
		return nil, errors.Wrap(errors.New(errors.CycleDetected, "loader",
			"module graph has a cycle").WithCode(errors.LDR002).With("locator", offender.String()))
	}

	return order, nil
}
