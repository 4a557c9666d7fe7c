// Package stdlib registers the small set of internal definitions available
// in every module before resolution begins (spec.md §4.8). The canonical
// member, concat, appends two URI templates. Grounded on OAL's stdlib.rs.
package stdlib

import (
	"fmt"

	"github.com/oalang/apic/internal/annotation"
	"github.com/oalang/apic/internal/env"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/types"
	"github.com/oalang/apic/internal/value"
)

// Loc is the synthetic locator internals live under; it never appears in
// the loader's module graph.
var Loc = mustLoc("stdlib:///internal")

func mustLoc(s string) locator.Locator {
	l, err := locator.New(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Internal is one registered internal definition.
type Internal struct {
	Name string
	Tag  types.Tag
	Eval func(args []value.Value, ann annotation.Annotation) (value.Value, error)
}

func concatTag() types.Tag {
	return types.TFunc([]types.Tag{types.TUri, types.TUri}, types.TUri)
}

func concatEval(args []value.Value, ann annotation.Annotation) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fmt.Errorf("concat: expected 2 arguments, got %d", len(args))
	}
	left := args[0].Uri
	left.Append(args[1].Uri)
	return value.Value{Kind: value.KindUri, Uri: left, Annotation: ann}, nil
}

// registry is the full list of internal definitions, in declaration order.
var registry = []Internal{
	{Name: "concat", Tag: concatTag(), Eval: concatEval},
}

// Module builds the synthetic module holding one Declaration node per
// internal, each with its Tag pre-set and no body -- these nodes are never
// passed through infer.Tag/Constrain/Substitute, only resolved into by
// Variable/Application lookups.
func Module() *modset.Module {
	tree := syntax.NewTree(Loc)
	var decls []*syntax.Node
	for _, in := range registry {
		bindings := tree.New(syntax.Bindings, locator.Span{}, syntax.Token{})
		decl := tree.New(syntax.Declaration, locator.Span{}, syntax.Token{Text: in.Name}, bindings)
		tag := in.Tag
		decl.Core.Tag = &tag
		decls = append(decls, decl)
	}
	prog := tree.New(syntax.Program, locator.Span{}, syntax.Token{}, decls...)
	tree.SetRoot(prog)
	return modset.NewModule(Loc, tree)
}

// byExternal maps a Declaration's External key to its Internal definition,
// built lazily against a concrete Module so indices match.
func byExternal(m *modset.Module) map[string]Internal {
	out := make(map[string]Internal, len(registry))
	for i, in := range registry {
		ext := modset.MakeExternal(m, m.Tree.Root().Children[i])
		out[ext.String()] = in
	}
	return out
}

// Insert adds the synthetic internals module into mods (once) and returns
// both the External-keyed lookup table internal/eval uses to dispatch
// calls, and the identifier-keyed table internal/resolve uses to seed
// every module's top-level scope before its own walk begins.
func Insert(mods *modset.Set) (lookup map[string]Internal, decls map[env.Ident]syntax.External) {
	m := Module()
	mods.Insert(m)
	lookup = byExternal(m)
	decls = make(map[env.Ident]syntax.External, len(registry))
	for i, in := range registry {
		decls[env.Ident(in.Name)] = modset.MakeExternal(m, m.Tree.Root().Children[i])
	}
	return lookup, decls
}

// Register inserts the internal module into mods and declares every
// internal name into e's current (top-level) scope, matching OAL's
// stdlib::import being run against the environment before resolve walks
// the tree.
func Register(mods *modset.Set, e *env.Env) map[string]Internal {
	lookup, decls := Insert(mods)
	for ident, ext := range decls {
		e.Declare(ident, ext)
	}
	return lookup
}
