package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/syntax"
)

func mustLoc(t *testing.T, s string) locator.Locator {
	t.Helper()
	l, err := locator.New(s)
	require.NoError(t, err)
	return l
}

func TestParseSimpleDeclarationAndResource(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let pet = { 'id num, 'name str };
res /pets on get -> <status: 200, headers: {}, [pet]>;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)

	root := tree.Root()
	require.Equal(t, syntax.Program, root.Kind)
	require.Len(t, root.Children, 2)

	decl := root.Children[0]
	require.Equal(t, syntax.Declaration, decl.Kind)
	require.Equal(t, "pet", decl.Token.Text)

	res := root.Children[1]
	require.Equal(t, syntax.Resource, res.Kind)
	require.Len(t, res.Children, 1)
	rel := res.Children[0]
	require.Equal(t, syntax.Relation, rel.Kind)
	require.Len(t, rel.Children, 2)

	uri := rel.Children[0]
	require.Equal(t, syntax.Terminal, uri.Kind)
	uriTemplate := uri.Children[0]
	require.Equal(t, syntax.UriTemplate, uriTemplate.Kind)

	transfer := rel.Children[1]
	require.Equal(t, syntax.Transfer, transfer.Kind)
}

func TestParseImportWithAlias(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `use "./shared.oal" as shared;
res shared.pet on get -> <>;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)

	root := tree.Root()
	require.Len(t, root.Children, 2)

	imp := root.Children[0]
	require.Equal(t, syntax.Import, imp.Kind)
	require.Equal(t, "./shared.oal", imp.Token.Text)
	require.Len(t, imp.Children, 1)
	require.Equal(t, syntax.Qualifier, imp.Children[0].Kind)
	require.Equal(t, "shared", imp.Children[0].Token.Text)

	res := root.Children[1]
	rel := res.Children[0]
	uriTerm := rel.Children[0].Children[0] // Terminal -> Variable
	require.Equal(t, syntax.Variable, uriTerm.Kind)
	require.Equal(t, "pet", uriTerm.Token.Text)
	require.Len(t, uriTerm.Children, 1)
	require.Equal(t, syntax.Qualifier, uriTerm.Children[0].Kind)
	require.Equal(t, "shared", uriTerm.Children[0].Token.Text)
}

func TestParseMultipleTransfersUseXferList(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `res /pets on get -> <>, put -> <>;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	rel := tree.Root().Children[0].Children[0]
	xferList := rel.Children[1]
	require.Equal(t, syntax.XferList, xferList.Kind)
	require.Len(t, xferList.Children, 2)
	for _, c := range xferList.Children {
		require.Equal(t, syntax.Transfer, c.Kind)
	}
}

func TestParseSingleTransferHasNoXferListWrapper(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `res /pets on get -> <>;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	rel := tree.Root().Children[0].Children[0]
	require.Equal(t, syntax.Transfer, rel.Children[1].Kind)
}

func TestParseVariadicOperatorChain(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let a = num | str ~ bool;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	sum := decl.Children[len(decl.Children)-1]
	require.Equal(t, syntax.VariadicOp, sum.Kind)
	require.Equal(t, "|", sum.Token.Text)
	require.Len(t, sum.Children, 2)
	require.Equal(t, syntax.VariadicOp, sum.Children[1].Kind)
	require.Equal(t, "~", sum.Children[1].Token.Text)
}

func TestParseSingleOperandCollapsesVariadicOp(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let a = num;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	rhs := decl.Children[len(decl.Children)-1]
	require.Equal(t, syntax.Terminal, rhs.Kind)
	require.Equal(t, syntax.Primitive, rhs.Children[0].Kind)
}

func TestParseApplication(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let f x = x;
let a = f num;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[1]
	app := decl.Children[len(decl.Children)-1] // application bypasses the Terminal wrap
	require.Equal(t, syntax.Application, app.Kind)
	require.Equal(t, "f", app.Token.Text)
	require.Len(t, app.Children, 2)
	require.Equal(t, syntax.Variable, app.Children[0].Kind)
	require.Equal(t, "f", app.Children[0].Token.Text)
}

func TestParseUriTemplateWithVariable(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `res /pets/{ 'id num } ?{ 'limit num } on get -> <>;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	rel := tree.Root().Children[0].Children[0]
	uriTemplate := rel.Children[0].Children[0]
	require.Equal(t, syntax.UriTemplate, uriTemplate.Kind)
	require.Len(t, uriTemplate.Children, 2)

	path := uriTemplate.Children[0]
	require.Equal(t, syntax.UriPath, path.Kind)
	require.Len(t, path.Children, 2)
	require.Equal(t, syntax.PathElement, path.Children[0].Kind)
	require.Equal(t, "/pets", path.Children[0].Token.Text)
	require.Equal(t, syntax.UriVariable, path.Children[1].Kind)
	require.Len(t, path.Children[1].Children, 1)
	require.Equal(t, syntax.Property, path.Children[1].Children[0].Kind)

	params := uriTemplate.Children[1]
	require.Equal(t, syntax.UriParams, params.Kind)
	require.Len(t, params.Children, 1)
	require.Equal(t, syntax.PropertyList, params.Children[0].Kind)
}

func TestParseBareUriPrimitiveBuildsEmptyUriTemplate(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let a = uri;
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	rhs := decl.Children[len(decl.Children)-1]
	uriTemplate := rhs.Children[0]
	require.Equal(t, syntax.UriTemplate, uriTemplate.Kind)
	require.Len(t, uriTemplate.Children, 1)
	require.Equal(t, syntax.UriPath, uriTemplate.Children[0].Kind)
	require.Empty(t, uriTemplate.Children[0].Children)
}

func TestParseRecursion(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := `let tree = rec self { 'value num, 'children [self] };
`
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	rhs := decl.Children[len(decl.Children)-1]
	require.Equal(t, syntax.Recursion, rhs.Kind)
	require.Len(t, rhs.Children, 2)
	require.Equal(t, syntax.Binding, rhs.Children[0].Kind)
	require.Equal(t, "self", rhs.Children[0].Token.Text)
}

func TestParseAnnotatedDeclaration(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := "# description: a pet\nlet pet = { 'id num };\n"
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	require.Equal(t, syntax.Declaration, decl.Kind)
	require.Equal(t, syntax.Annotations, decl.Children[0].Kind)
	require.Equal(t, "description: a pet", decl.Children[0].Token.Text)
}

func TestParseTerminalInlineAnnotation(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	src := "let a = num`media: text/plain`;\n"
	tree, err := Parse(loc, src)
	require.NoError(t, err)
	decl := tree.Root().Children[0]
	terminal := decl.Children[len(decl.Children)-1]
	require.Equal(t, syntax.Terminal, terminal.Kind)
	require.Len(t, terminal.Children, 2)
	require.Equal(t, syntax.Annotations, terminal.Children[1].Kind)
	require.Equal(t, "media: text/plain", terminal.Children[1].Token.Text)
}

func TestParseSyntaxErrorReportsParserPhase(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	_, err := Parse(loc, "let = num;\n")
	require.Error(t, err)
}
