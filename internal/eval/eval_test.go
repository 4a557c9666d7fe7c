package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/defgraph"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/stdlib"
	"github.com/oalang/apic/internal/syntax"
)

func mustLoc(t *testing.T, s string) locator.Locator {
	t.Helper()
	l, err := locator.New(s)
	require.NoError(t, err)
	return l
}

func noSpan() locator.Span { return locator.Span{} }

// link connects n's Core.Definition to def, already built in module m.
func link(n *syntax.Node, m *modset.Module, def *syntax.Node) {
	ext := modset.MakeExternal(m, def)
	n.Core.Definition = &ext
}

// TestEvaluateSimpleResource builds `res /pets on get -> <status: 200> :: str;`
// by hand and checks the resulting Spec carries exactly one relation
// keyed by the rendered URI pattern with a GET transfer.
func TestEvaluateSimpleResource(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	tree := syntax.NewTree(loc)

	path := tree.New(syntax.PathElement, noSpan(), syntax.Token{Text: "pets"})
	uriPath := tree.New(syntax.UriPath, noSpan(), syntax.Token{}, path)
	uri := tree.New(syntax.UriTemplate, noSpan(), syntax.Token{}, uriPath)

	method := tree.New(syntax.Method, noSpan(), syntax.Token{Text: "get"})
	methods := tree.New(syntax.XferMethods, noSpan(), syntax.Token{}, method)
	status := tree.New(syntax.Literal, noSpan(), syntax.Token{Kind: syntax.TokHttpStatus, Text: "200"})
	statusMeta := tree.New(syntax.ContentMeta, noSpan(), syntax.Token{Text: "status"}, status)
	metaList := tree.New(syntax.ContentMetaList, noSpan(), syntax.Token{}, statusMeta)
	statusContent := tree.New(syntax.Content, noSpan(), syntax.Token{}, metaList)
	prim := tree.New(syntax.Primitive, noSpan(), syntax.Token{Text: "str"})
	rangeOp := tree.New(syntax.VariadicOp, noSpan(), syntax.Token{Text: "::"}, statusContent, prim)
	xfer := tree.New(syntax.Transfer, noSpan(), syntax.Token{}, methods, rangeOp)

	rel := tree.New(syntax.Relation, noSpan(), syntax.Token{}, uri, xfer)
	resource := tree.New(syntax.Resource, noSpan(), syntax.Token{}, rel)

	prog := tree.New(syntax.Program, noSpan(), syntax.Token{}, resource)
	tree.SetRoot(prog)

	m := modset.NewModule(loc, tree)
	set := modset.New(m)

	spec, err := Evaluate(set, defgraph.Recursive{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, spec.Rels.Len())

	got, ok := spec.Rels.Get("/pets")
	require.True(t, ok)
	require.Contains(t, got.Xfers, atom.Get)
}

// TestEvaluateAliasInlinesDeclaration builds `let a = str; res /x on get
// -> a;` and checks the alias is inlined directly (no Reference, since `a`
// is not recursive).
func TestEvaluateAliasInlinesDeclaration(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	tree := syntax.NewTree(loc)

	prim := tree.New(syntax.Primitive, noSpan(), syntax.Token{Text: "str"})
	declA := tree.New(syntax.Declaration, noSpan(), syntax.Token{Text: "a"}, prim)

	path := tree.New(syntax.PathElement, noSpan(), syntax.Token{Text: "x"})
	uriPath := tree.New(syntax.UriPath, noSpan(), syntax.Token{}, path)
	uri := tree.New(syntax.UriTemplate, noSpan(), syntax.Token{}, uriPath)

	method := tree.New(syntax.Method, noSpan(), syntax.Token{Text: "get"})
	methods := tree.New(syntax.XferMethods, noSpan(), syntax.Token{}, method)
	varRef := tree.New(syntax.Variable, noSpan(), syntax.Token{Text: "a"})
	xfer := tree.New(syntax.Transfer, noSpan(), syntax.Token{}, methods, varRef)

	rel := tree.New(syntax.Relation, noSpan(), syntax.Token{}, uri, xfer)
	resource := tree.New(syntax.Resource, noSpan(), syntax.Token{}, rel)

	prog := tree.New(syntax.Program, noSpan(), syntax.Token{}, declA, resource)
	tree.SetRoot(prog)

	m := modset.NewModule(loc, tree)
	link(varRef, m, declA)
	set := modset.New(m)

	spec, err := Evaluate(set, defgraph.Recursive{}, nil)
	require.NoError(t, err)
	require.Equal(t, 0, spec.Refs.Len())

	got, ok := spec.Rels.Get("/x")
	require.True(t, ok)
	xferOut := got.Xfers[atom.Get]
	require.NotNil(t, xferOut)
}

// TestEvaluateRecursiveDeclarationProducesReference builds
// `let @node = object { next: node };` reached through a resource, flags
// `@node` recursive, and checks it reduces to a Reference while spec.Refs
// carries the real, once-unfolded schema.
func TestEvaluateRecursiveDeclarationProducesReference(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	tree := syntax.NewTree(loc)

	selfRef := tree.New(syntax.Variable, noSpan(), syntax.Token{Text: "node"})
	propName := tree.New(syntax.PropertyName, noSpan(), syntax.Token{Text: "next"})
	prop := tree.New(syntax.Property, noSpan(), syntax.Token{}, propName, selfRef)
	propList := tree.New(syntax.PropertyList, noSpan(), syntax.Token{}, prop)
	obj := tree.New(syntax.Object, noSpan(), syntax.Token{}, propList)
	declNode := tree.New(syntax.Declaration, noSpan(), syntax.Token{Text: "@node"}, obj)

	path := tree.New(syntax.PathElement, noSpan(), syntax.Token{Text: "tree"})
	uriPath := tree.New(syntax.UriPath, noSpan(), syntax.Token{}, path)
	uri := tree.New(syntax.UriTemplate, noSpan(), syntax.Token{}, uriPath)
	method := tree.New(syntax.Method, noSpan(), syntax.Token{Text: "get"})
	methods := tree.New(syntax.XferMethods, noSpan(), syntax.Token{}, method)
	varRef := tree.New(syntax.Variable, noSpan(), syntax.Token{Text: "@node"})
	xfer := tree.New(syntax.Transfer, noSpan(), syntax.Token{}, methods, varRef)
	rel := tree.New(syntax.Relation, noSpan(), syntax.Token{}, uri, xfer)
	resource := tree.New(syntax.Resource, noSpan(), syntax.Token{}, rel)

	prog := tree.New(syntax.Program, noSpan(), syntax.Token{}, declNode, resource)
	tree.SetRoot(prog)

	m := modset.NewModule(loc, tree)
	link(selfRef, m, declNode)
	link(varRef, m, declNode)
	set := modset.New(m)

	g := defgraph.New()
	nodeExt := modset.MakeExternal(m, declNode)
	g.Open(nodeExt)
	g.Connect(nodeExt)
	g.Close()
	recursive := g.IdentifyRecursion()
	require.True(t, recursive.Has(nodeExt))

	spec, err := Evaluate(set, recursive, nil)
	require.NoError(t, err)

	_, ok := spec.Refs.Get("node")
	require.True(t, ok)

	got, ok := spec.Rels.Get("/tree")
	require.True(t, ok)
	xferOut := got.Xfers[atom.Get]
	require.NotNil(t, xferOut)
	pair := xferOut.Ranges.Oldest()
	require.NotNil(t, pair)
	require.Equal(t, specmodel.ExprRef, pair.Value.Schema.Expr.Kind)
}

// TestEvaluateInternalConcat builds `res concat /a /b on get -> str;`
// style usage of the registered `concat` internal and checks its two URI
// arguments append correctly.
func TestEvaluateInternalConcat(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	tree := syntax.NewTree(loc)

	m := modset.NewModule(loc, tree)
	set := modset.New(m)
	internals, _ := stdlib.Insert(set)

	stdMod, _ := set.Get(stdlib.Loc)
	concatDecl := stdMod.Tree.Root().Children[0]
	concatExt := modset.MakeExternal(stdMod, concatDecl)

	leftPath := tree.New(syntax.PathElement, noSpan(), syntax.Token{Text: "a"})
	leftUriPath := tree.New(syntax.UriPath, noSpan(), syntax.Token{}, leftPath)
	leftUri := tree.New(syntax.UriTemplate, noSpan(), syntax.Token{}, leftUriPath)
	leftTerm := tree.New(syntax.Terminal, noSpan(), syntax.Token{}, leftUri)

	rightPath := tree.New(syntax.PathElement, noSpan(), syntax.Token{Text: "b"})
	rightUriPath := tree.New(syntax.UriPath, noSpan(), syntax.Token{}, rightPath)
	rightUri := tree.New(syntax.UriTemplate, noSpan(), syntax.Token{}, rightUriPath)
	rightTerm := tree.New(syntax.Terminal, noSpan(), syntax.Token{}, rightUri)

	calleeRef := tree.New(syntax.Variable, noSpan(), syntax.Token{Text: "concat"})
	calleeRef.Core.Definition = &concatExt
	app := tree.New(syntax.Application, noSpan(), syntax.Token{Text: "concat"}, calleeRef, leftTerm, rightTerm)
	app.Core.Definition = &concatExt

	method := tree.New(syntax.Method, noSpan(), syntax.Token{Text: "get"})
	methods := tree.New(syntax.XferMethods, noSpan(), syntax.Token{}, method)
	prim := tree.New(syntax.Primitive, noSpan(), syntax.Token{Text: "str"})
	xfer := tree.New(syntax.Transfer, noSpan(), syntax.Token{}, methods, prim)

	rel := tree.New(syntax.Relation, noSpan(), syntax.Token{}, app, xfer)
	resource := tree.New(syntax.Resource, noSpan(), syntax.Token{}, rel)

	prog := tree.New(syntax.Program, noSpan(), syntax.Token{}, resource)
	tree.SetRoot(prog)

	spec, err := Evaluate(set, defgraph.Recursive{}, internals)
	require.NoError(t, err)

	_, ok := spec.Rels.Get("/a/b")
	require.True(t, ok)
}
