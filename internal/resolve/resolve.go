// Package resolve implements name resolution (spec.md §4.2) and threads the
// definition-dependency graph (spec.md §4.3) through the same traversal.
// Grounded on OAL's rewrite::resolve module, generalized to also populate a
// defgraph.Graph so recursion detection runs as a byproduct of the same
// walk rather than a second pass.
package resolve

import (
	"fmt"

	"github.com/oalang/apic/internal/defgraph"
	"github.com/oalang/apic/internal/env"
	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/stdlib"
	"github.com/oalang/apic/internal/syntax"
)

// declarationIdent returns a Declaration node's bound name.
func declarationIdent(n *syntax.Node) env.Ident {
	return env.Ident(n.Token.Text)
}

// declarationRHS returns a Declaration's right-hand-side expression, always
// its last child.
func declarationRHS(n *syntax.Node) *syntax.Node {
	return n.Children[len(n.Children)-1]
}

// declarationBindings returns a Declaration's Binding nodes, found inside
// its Bindings wrapper child if present.
func declarationBindings(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Children[:len(n.Children)-1] {
		if c.Kind == syntax.Bindings {
			out = append(out, c.Children...)
		}
	}
	return out
}

// qualifierOf returns the module alias a Variable or Application is
// qualified with, if any.
func qualifierOf(n *syntax.Node) (env.Ident, bool) {
	if len(n.Children) == 0 {
		return "", false
	}
	if n.Children[0].Kind != syntax.Qualifier {
		return "", false
	}
	return env.Ident(n.Children[0].Token.Text), true
}

// importAlias returns an Import's "as IDENT" alias, if present.
func importAlias(n *syntax.Node) (env.Ident, bool) {
	for _, c := range n.Children {
		if c.Kind == syntax.Qualifier {
			return env.Ident(c.Token.Text), true
		}
	}
	return "", false
}

// resolver holds the mutable state threaded through one module's
// traversal: the lexical scope stack, the alias table built from imports
// with "as", and the dependency graph being populated alongside.
type resolver struct {
	mods        *modset.Set
	cur         *modset.Module
	env         *env.Env
	aliases     map[env.Ident]locator.Locator
	graph       *defgraph.Graph
	currentDecl *syntax.External
}

// Resolve walks every module in the set -- not just the base one, since an
// imported module's own declarations may themselves reference other
// declarations -- binding every Variable and Application's Core.Definition.
// It returns the dependency graph recorded along the way (input to
// defgraph.Graph.IdentifyRecursion) plus the lookup table of internal
// (stdlib) definitions, available by name in every module's top-level
// scope before each walk begins.
func Resolve(mods *modset.Set) (*defgraph.Graph, map[string]stdlib.Internal, error) {
	internals, internalDecls := stdlib.Insert(mods)
	graph := defgraph.New()

	for _, loc := range mods.Locators() {
		if loc.Key() == stdlib.Loc.Key() {
			continue
		}
		m, _ := mods.Get(loc)

		r := &resolver{
			mods:    mods,
			cur:     m,
			env:     env.New(),
			aliases: make(map[env.Ident]locator.Locator),
			graph:   graph,
		}
		for ident, ext := range internalDecls {
			r.env.Declare(ident, ext)
		}

		var walkErr error
		m.Tree.Root().Traverse(func(ev syntax.CursorEvent) {
			if walkErr != nil {
				return
			}
			n := ev.Node
			if !ev.End {
				walkErr = r.onStart(n)
			} else {
				walkErr = r.onEnd(n)
			}
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}
	return graph, internals, nil
}

func (r *resolver) onStart(n *syntax.Node) error {
	switch n.Kind {
	case syntax.Import:
		return r.resolveImport(n)
	case syntax.Declaration:
		r.env.Open()
		declExt := modset.MakeExternal(r.cur, n)
		r.graph.Open(declExt)
		r.currentDecl = &declExt
		for _, binding := range declarationBindings(n) {
			ext := modset.MakeExternal(r.cur, binding)
			r.env.Declare(env.Ident(binding.Token.Text), ext)
		}
	case syntax.Recursion:
		return r.resolveRecursion(n)
	case syntax.Variable, syntax.Application:
		return r.define(n)
	}
	return nil
}

func (r *resolver) onEnd(n *syntax.Node) error {
	switch n.Kind {
	case syntax.Declaration:
		r.env.Close()
		r.graph.Close()
		r.currentDecl = nil
		ext := modset.MakeExternal(r.cur, n)
		r.env.Declare(declarationIdent(n), ext)
	case syntax.Recursion:
		r.env.Close()
	}
	return nil
}

// resolveRecursion opens a scope binding a `rec BINDING EXPR` marker's
// identifier to the enclosing declaration itself, so a Variable reference
// to it inside EXPR resolves straight back to that Declaration's External
// -- the only way a declaration's own name can be in scope within its own
// body (spec.md §4.2; ordinary self-reference is deliberately out of
// scope until onEnd declares the name into the outer scope).
func (r *resolver) resolveRecursion(n *syntax.Node) error {
	if r.currentDecl == nil {
		return errors.Wrap(errors.New(errors.NotInScope, "resolve",
			"rec used outside a declaration").At(n.Span))
	}
	if len(n.Children) == 0 {
		return fmt.Errorf("recursion node %d has no binding", n.Idx)
	}
	binding := n.Children[0]
	r.env.Open()
	r.env.Declare(env.Ident(binding.Token.Text), *r.currentDecl)
	return nil
}

func (r *resolver) resolveImport(n *syntax.Node) error {
	target, err := r.mods.Base().Join(n.Token.Text)
	if err != nil {
		return errors.Wrap(errors.New(errors.InvalidUrl, "resolve", err.Error()).At(n.Span))
	}
	imported, ok := r.mods.Get(target)
	if !ok {
		return fmt.Errorf("unknown module: %s", target)
	}
	if alias, ok := importAlias(n); ok {
		r.aliases[alias] = target
	}
	for _, decl := range imported.Tree.Root().Children {
		if decl.Kind != syntax.Declaration {
			continue
		}
		ext := modset.MakeExternal(imported, decl)
		r.env.Declare(declarationIdent(decl), ext)
	}
	return nil
}

// define resolves a Variable or Application's identifier -- qualified or
// not -- and writes the result into the node's Core.Definition, also
// recording the dependency edge in the definition graph.
func (r *resolver) define(n *syntax.Node) error {
	ident := env.Ident(n.Token.Text)

	var ext syntax.External
	if qualifier, ok := qualifierOf(n); ok {
		modLoc, ok := r.aliases[qualifier]
		if !ok {
			return errors.Wrap(errors.New(errors.NotInScope, "resolve",
				fmt.Sprintf("unknown module alias %q", qualifier)).At(n.Span))
		}
		target, ok := r.mods.Get(modLoc)
		if !ok {
			return fmt.Errorf("unknown module: %s", modLoc)
		}
		found := false
		for _, decl := range target.Tree.Root().Children {
			if decl.Kind == syntax.Declaration && declarationIdent(decl) == ident {
				ext = modset.MakeExternal(target, decl)
				found = true
				break
			}
		}
		if !found {
			return errors.Wrap(errors.New(errors.NotInScope, "resolve",
				fmt.Sprintf("%q not found in module %s", ident, modLoc)).At(n.Span))
		}
	} else {
		found, ok := r.env.Lookup(ident)
		if !ok {
			return errors.Wrap(errors.New(errors.NotInScope, "resolve",
				fmt.Sprintf("%q is not in scope", ident)).At(n.Span))
		}
		ext = found
	}

	n.Core.Definition = &ext
	r.graph.Connect(ext)
	return nil
}
