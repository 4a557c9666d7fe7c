// Package syntax implements the immutable concrete syntax tree that the rest
// of the compiler walks: an arena of nodes tagged by SyntaxKind, with a
// mutable per-node "core" slot (definition link + inferred type tag) that is
// populated exactly once each by resolution and by inference, following the
// same "tree is immutable except for an interior-mutable core" design as
// AILANG's internal/core.Core and OAL's rewrite::tree::Core.
package syntax

import (
	"fmt"
	"strings"

	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/types"
)

// Kind identifies the syntactic category of a Node.
type Kind int

const (
	Program Kind = iota
	Declaration
	Import
	Resource
	Binding
	Bindings
	Variable
	Application
	Terminal
	SubExpression
	UriTemplate
	UriPath
	UriVariable
	UriParams
	Object
	PropertyList
	Property
	Array
	Content
	ContentMeta
	ContentMetaList
	ContentBody
	Transfer
	XferMethods
	XferParams
	XferDomain
	XferList
	Relation
	Recursion
	VariadicOp
	UnaryOp
	Annotations
	Literal
	Primitive
	PathElement
	PropertyName
	Method
	ContentTag
	Operator
	OptionMark
	Qualifier
)

var kindNames = map[Kind]string{
	Program: "Program", Declaration: "Declaration", Import: "Import",
	Resource: "Resource", Binding: "Binding", Bindings: "Bindings",
	Variable: "Variable", Application: "Application", Terminal: "Terminal",
	SubExpression: "SubExpression", UriTemplate: "UriTemplate", UriPath: "UriPath",
	UriVariable: "UriVariable", UriParams: "UriParams", Object: "Object",
	PropertyList: "PropertyList", Property: "Property", Array: "Array",
	Content: "Content", ContentMeta: "ContentMeta", ContentMetaList: "ContentMetaList",
	ContentBody: "ContentBody", Transfer: "Transfer", XferMethods: "XferMethods",
	XferParams: "XferParams", XferDomain: "XferDomain", XferList: "XferList",
	Relation: "Relation", Recursion: "Recursion", VariadicOp: "VariadicOp",
	UnaryOp: "UnaryOp", Annotations: "Annotations", Literal: "Literal",
	Primitive: "Primitive", PathElement: "PathElement", PropertyName: "PropertyName",
	Method: "Method", ContentTag: "ContentTag", Operator: "Operator",
	OptionMark: "OptionMark", Qualifier: "Qualifier",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TokenKind classifies the literal value carried by a terminal node.
type TokenKind int

const (
	TokNone TokenKind = iota
	TokHttpStatus
	TokNumber
	TokText
)

// Token is the scanned value backing a terminal node (Literal, Method,
// Operator, Qualifier, PropertyName, PathElement, OptionMark, ContentTag).
type Token struct {
	Kind TokenKind
	Text string // raw lexeme, also used for Method/Operator/Qualifier/etc. names
}

// External is a location-plus-index handle into another node, anywhere in
// the module set -- including the same tree. It intentionally does not hold
// a pointer to the owning Module so it stays valid independent of how the
// module set is stored.
type External struct {
	Loc   locator.Locator
	Index int
}

func (e External) String() string {
	return fmt.Sprintf("%s#%d", e.Loc, e.Index)
}

// Core is the per-node mutable slot: written once by the resolver (for
// Variable/Application nodes) and once by inference+substitution (for every
// expression node). The evaluator only ever reads it.
type Core struct {
	Definition *External
	Tag        *types.Tag
}

// Node is an entry in a Tree's arena. Child order is preserved from parsing.
type Node struct {
	tree     *Tree
	Idx      int
	Kind     Kind
	Span     locator.Span
	Children []*Node
	Parent   *Node
	Token    Token
	Core     Core
}

// Tree is a module's immutable syntax tree, rooted at a Program node.
type Tree struct {
	Loc   locator.Locator
	Nodes []*Node
	root  *Node
}

// NewTree creates an empty tree for the given locator.
func NewTree(loc locator.Locator) *Tree {
	return &Tree{Loc: loc}
}

// New allocates a node in the tree and returns it. Children must already be
// allocated in this tree.
func (t *Tree) New(kind Kind, span locator.Span, token Token, children ...*Node) *Node {
	n := &Node{tree: t, Idx: len(t.Nodes), Kind: kind, Span: span, Token: token, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	t.Nodes = append(t.Nodes, n)
	return n
}

// Root returns the tree's root node (the last one built in the usual
// bottom-up construction order, but callers should not rely on that; Root is
// set explicitly by the builder via SetRoot).
func (t *Tree) Root() *Node {
	return t.root
}

// SetRoot records the tree's root node.
func (t *Tree) SetRoot(n *Node) {
	t.root = n
}

// Node looks up a node by arena index.
func (t *Tree) Node(idx int) *Node {
	if idx < 0 || idx >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[idx]
}

// Resolve dereferences an External that points into this tree.
func (t *Tree) Resolve(idx int) *Node {
	return t.Node(idx)
}

// CursorEvent is one step of a pre-order traversal with explicit scope
// boundaries, mirroring oal_model::grammar::NodeCursor::{Start,End}.
type CursorEvent struct {
	Node *Node
	End  bool
}

// Traverse performs a pre-order depth-first walk emitting a Start event
// before descending into a node's children and an End event after.
func (n *Node) Traverse(visit func(CursorEvent)) {
	visit(CursorEvent{Node: n})
	for _, c := range n.Children {
		c.Traverse(visit)
	}
	visit(CursorEvent{Node: n, End: true})
}

// Descendants returns n and every node beneath it, in pre-order. Used by the
// passes (tag assignment, constraint generation, substitution, completeness
// check, type checking) that only need a flat walk, not scope boundaries.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(m *Node) {
		out = append(out, m)
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Text renders a path-like rendering of the subtree for diagnostics; it is
// not a faithful pretty-printer, only enough to identify a node in error
// messages.
func (n *Node) Text() string {
	if n.Token.Text != "" {
		return n.Token.Text
	}
	var parts []string
	for _, c := range n.Children {
		if s := c.Text(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
