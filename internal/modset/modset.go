// Package modset holds the set of all modules reachable from a compilation's
// base locator, mirroring OAL's rewrite::module::{Module,ModuleSet}.
package modset

import (
	"fmt"

	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/syntax"
)

// Module is one parsed, not-yet-linked source file.
type Module struct {
	Loc  locator.Locator
	Tree *syntax.Tree
}

// NewModule pairs a locator with its parsed tree.
func NewModule(loc locator.Locator, tree *syntax.Tree) *Module {
	return &Module{Loc: loc, Tree: tree}
}

// Set is the mapping from locator to parsed tree, plus a distinguished base
// locator identifying the module the compilation started from.
type Set struct {
	base locator.Locator
	mods map[string]*Module
}

// New creates a Set containing just the base module.
func New(base *Module) *Set {
	return &Set{
		base: base.Loc,
		mods: map[string]*Module{base.Loc.Key(): base},
	}
}

// Base returns the base locator.
func (s *Set) Base() locator.Locator {
	return s.base
}

// Main returns the base module, or nil if the set was constructed
// incorrectly; a well-formed Set always contains its base -- this
// mirrors ModuleSet::main in OAL, which makes the same assumption.
func (s *Set) Main() *Module {
	return s.mods[s.base.Key()]
}

// Insert adds or replaces a module in the set.
func (s *Set) Insert(m *Module) {
	s.mods[m.Loc.Key()] = m
}

// Get looks up a module by locator.
func (s *Set) Get(loc locator.Locator) (*Module, bool) {
	m, ok := s.mods[loc.Key()]
	return m, ok
}

// Len reports how many modules are in the set.
func (s *Set) Len() int {
	return len(s.mods)
}

// Locators returns every locator currently in the set, in no particular
// order.
func (s *Set) Locators() []locator.Locator {
	out := make([]locator.Locator, 0, len(s.mods))
	for _, m := range s.mods {
		out = append(out, m.Loc)
	}
	return out
}

// Resolve dereferences an External handle into the node it points at.
// Every External stored anywhere in the module set must resolve: the loader
// contract guarantees every locator referenced by an External is present.
func (s *Set) Resolve(ext syntax.External) (*syntax.Node, error) {
	m, ok := s.Get(ext.Loc)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", ext.Loc)
	}
	n := m.Tree.Node(ext.Index)
	if n == nil {
		return nil, fmt.Errorf("unknown node %d in module %s", ext.Index, ext.Loc)
	}
	return n, nil
}

// MakeExternal builds an External pointing at node within module m.
func MakeExternal(m *Module, node *syntax.Node) syntax.External {
	return syntax.External{Loc: m.Loc, Index: node.Idx}
}
