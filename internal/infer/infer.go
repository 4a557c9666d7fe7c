// Package infer implements the four sequential stages of type-tag inference
// described in spec.md §4.4: Tag assigns an initial (possibly fresh) tag to
// every node, Constrain generates the equations those tags must satisfy,
// Unify (delegated to internal/types) solves them, and Substitute +
// CheckComplete write the solved tags back and reject leftover variables.
// Grounded on OAL's rewrite::infer module.
package infer

import (
	"fmt"

	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/types"
)

func span(n *syntax.Node) *locator.Span {
	s := n.Span
	return &s
}

func literalTag(n *syntax.Node) types.Tag {
	switch n.Token.Kind {
	case syntax.TokHttpStatus:
		return types.TStatus
	case syntax.TokNumber:
		return types.TNumber
	case syntax.TokText:
		return types.TText
	default:
		panic(fmt.Sprintf("unexpected token for literal: %v", n.Token))
	}
}

func getTag(n *syntax.Node) types.Tag {
	if n.Core.Tag == nil {
		panic(fmt.Sprintf("node %d (%s) has no tag yet", n.Idx, n.Kind))
	}
	return *n.Core.Tag
}

func setTag(n *syntax.Node, t types.Tag) {
	n.Core.Tag = &t
}

// variadicOperator is the VariadicOp child token's text, normalized.
type variadicOperator string

const (
	opJoin  variadicOperator = "&"
	opAny   variadicOperator = "~"
	opSum   variadicOperator = "|"
	opRange variadicOperator = "::"
)

func operatorOf(n *syntax.Node) variadicOperator {
	return variadicOperator(n.Token.Text)
}

// Tag walks every descendant of the module rooted at loc and assigns its
// initial tag (spec.md §4.4 "Tag assignment").
func Tag(mods *modset.Set, loc locator.Locator) error {
	m, ok := mods.Get(loc)
	if !ok {
		return fmt.Errorf("module not found: %s", loc)
	}
	seq := types.NewSeq(loc)

	for _, n := range m.Tree.Root().Descendants() {
		switch n.Kind {
		case syntax.Literal:
			setTag(n, literalTag(n))
		case syntax.Primitive:
			setTag(n, types.TPrimitive)
		case syntax.Relation:
			setTag(n, types.TRelation)
		case syntax.UriTemplate:
			setTag(n, types.TUri)
		case syntax.Object:
			setTag(n, types.TObject)
		case syntax.Content:
			setTag(n, types.TContent)
		case syntax.Transfer:
			setTag(n, types.TTransfer)
		case syntax.Array:
			setTag(n, types.TArray)
		case syntax.VariadicOp:
			switch operatorOf(n) {
			case opJoin:
				setTag(n, types.TObject)
			case opAny:
				setTag(n, types.TAny)
			case opSum:
				setTag(n, types.TVar(seq.Next()))
			case opRange:
				setTag(n, types.TContent)
			default:
				return fmt.Errorf("unknown variadic operator %q", n.Token.Text)
			}
		case syntax.Application, syntax.Variable, syntax.Binding, syntax.Terminal,
			syntax.SubExpression, syntax.Declaration, syntax.Property, syntax.Recursion:
			setTag(n, types.TVar(seq.Next()))
		case syntax.UriParams, syntax.XferParams:
			setTag(n, types.TObject)
		}
	}
	return nil
}

// Constrain walks every descendant and adds the equations its tag must
// satisfy to set (spec.md §4.4 "Equation generation").
func Constrain(mods *modset.Set, loc locator.Locator, set *types.EquationSet) error {
	m, ok := mods.Get(loc)
	if !ok {
		return fmt.Errorf("module not found: %s", loc)
	}

	for _, n := range m.Tree.Root().Descendants() {
		switch n.Kind {
		case syntax.Literal:
			set.Push(getTag(n), literalTag(n), span(n))

		case syntax.Primitive:
			set.Push(getTag(n), types.TPrimitive, span(n))

		case syntax.Relation:
			uri := n.Children[0]
			set.Push(getTag(uri), types.TUri, span(uri))
			for _, xfer := range xferListTransfers(n) {
				set.Push(getTag(xfer), types.TTransfer, span(xfer))
			}
			set.Push(getTag(n), types.TRelation, span(n))

		case syntax.UriTemplate:
			for _, child := range n.Children {
				if child.Kind == syntax.UriPath {
					for _, seg := range child.Children {
						if seg.Kind == syntax.UriVariable {
							inner := seg.Children[len(seg.Children)-1]
							set.Push(getTag(inner), types.TProperty(types.TPrimitive), span(inner))
						}
					}
				} else if child.Kind == syntax.UriParams {
					set.Push(getTag(child), types.TObject, span(child))
				}
			}
			set.Push(getTag(n), types.TUri, span(n))

		case syntax.Property:
			set.Push(getTag(n), types.TProperty(getTag(n.Children[len(n.Children)-1])), span(n))

		case syntax.Object:
			for _, list := range n.Children {
				if list.Kind != syntax.PropertyList {
					continue
				}
				for _, prop := range list.Children {
					set.Push(getTag(prop), types.TProperty(getTag(prop.Children[len(prop.Children)-1])), span(prop))
				}
			}
			set.Push(getTag(n), types.TObject, span(n))

		case syntax.Content:
			for _, child := range n.Children {
				if child.Kind != syntax.ContentMetaList {
					continue
				}
				for _, meta := range child.Children {
					rhs := meta.Children[len(meta.Children)-1]
					switch meta.Token.Text {
					case "headers":
						set.Push(getTag(rhs), types.TObject, span(rhs))
					case "media":
						set.Push(getTag(rhs), types.TText, span(rhs))
					case "status":
						// unconstrained here; checked by typecheck (is_status_like)
					}
				}
			}
			set.Push(getTag(n), types.TContent, span(n))

		case syntax.Transfer:
			for _, child := range n.Children {
				if child.Kind == syntax.XferParams {
					set.Push(getTag(child), types.TObject, span(child))
				}
			}
			set.Push(getTag(n), types.TTransfer, span(n))

		case syntax.Array:
			set.Push(getTag(n), types.TArray, span(n))

		case syntax.VariadicOp:
			op := operatorOf(n)
			for _, operand := range n.Children {
				switch op {
				case opRange, opAny:
					// unconstrained here
				case opJoin:
					set.Push(getTag(operand), types.TObject, span(operand))
				case opSum:
					set.Push(getTag(operand), getTag(n), span(operand))
				}
			}
			switch op {
			case opRange:
				set.Push(getTag(n), types.TContent, span(n))
			case opAny:
				set.Push(getTag(n), types.TAny, span(n))
			case opJoin:
				set.Push(getTag(n), types.TObject, span(n))
			case opSum:
				// unconstrained here
			}

		case syntax.Declaration:
			bindingsNode, rhs := declarationParts(n)
			var bindings []types.Tag
			for _, b := range bindingsNode {
				bindings = append(bindings, getTag(b))
			}
			var tag types.Tag
			if len(bindings) == 0 {
				tag = getTag(rhs)
			} else {
				tag = types.TFunc(bindings, getTag(rhs))
			}
			set.Push(getTag(n), tag, span(n))

		case syntax.Application:
			def, err := definitionOf(mods, n)
			if err != nil {
				return errors.Wrap(errors.New(errors.NotInScope, "infer", "function is not defined").At(*span(n)))
			}
			var bindings []types.Tag
			for _, arg := range applicationArgs(n) {
				bindings = append(bindings, getTag(arg))
			}
			result := getTag(n)
			set.Push(getTag(def), types.TFunc(bindings, result), span(n))

		case syntax.Variable:
			def, err := definitionOf(mods, n)
			if err != nil {
				return errors.Wrap(errors.New(errors.NotInScope, "infer", "variable is not defined").At(*span(n)))
			}
			set.Push(getTag(n), getTag(def), span(n))

		case syntax.Terminal:
			inner := n.Children[0]
			set.Push(getTag(n), getTag(inner), span(n))

		case syntax.SubExpression:
			inner := n.Children[0]
			set.Push(getTag(n), getTag(inner), span(n))

		case syntax.Recursion:
			inner := n.Children[len(n.Children)-1]
			set.Push(getTag(n), getTag(inner), span(n))
		}
	}
	return nil
}

// xferListTransfers returns a Relation's transfer nodes, found inside its
// second child's XferList wrapper.
func xferListTransfers(rel *syntax.Node) []*syntax.Node {
	if len(rel.Children) < 2 {
		return nil
	}
	list := rel.Children[1]
	if list.Kind != syntax.XferList {
		return []*syntax.Node{list}
	}
	return list.Children
}

// declarationParts splits a Declaration's children into its Bindings (if
// any) and its right-hand-side expression (always the last child).
func declarationParts(n *syntax.Node) (bindings []*syntax.Node, rhs *syntax.Node) {
	rhs = n.Children[len(n.Children)-1]
	for _, c := range n.Children[:len(n.Children)-1] {
		if c.Kind == syntax.Bindings {
			bindings = append(bindings, c.Children...)
		}
	}
	return bindings, rhs
}

// applicationArgs returns an Application node's argument nodes: every
// child after its first, which is always the callee reference (a Variable,
// itself carrying the same Core.Definition as the Application node).
func applicationArgs(n *syntax.Node) []*syntax.Node {
	if len(n.Children) <= 1 {
		return nil
	}
	return n.Children[1:]
}

func definitionOf(mods *modset.Set, n *syntax.Node) (*syntax.Node, error) {
	if n.Core.Definition == nil {
		return nil, fmt.Errorf("node %d has no definition", n.Idx)
	}
	return mods.Resolve(*n.Core.Definition)
}

// Substitute replaces every node's tag with its union-find representative,
// recursing through Func and Property to normalize compound tags.
func Substitute(mods *modset.Set, loc locator.Locator, u *types.UnionFind) error {
	m, ok := mods.Get(loc)
	if !ok {
		return fmt.Errorf("module not found: %s", loc)
	}
	for _, n := range m.Tree.Root().Descendants() {
		if n.Core.Tag != nil {
			reduced := types.Reduce(u, *n.Core.Tag)
			n.Core.Tag = &reduced
		}
	}
	return nil
}

// hasVariable reports whether t contains a free type variable anywhere in
// its structure, recursing through Func and Property the same way
// types.Reduce does -- a flat Kind == VarKind check misses a compound tag
// like Func{bindings:[Var], range:Number} (an unapplied function whose
// binding was never constrained), which is itself not a Var but still
// incomplete. Mirrors OAL's has_variable
// (oal-compiler/src/inference/mod.rs).
func hasVariable(t types.Tag) bool {
	switch t.Kind {
	case types.VarKind:
		return true
	case types.PropertyKind:
		return t.Property != nil && hasVariable(*t.Property)
	case types.Func:
		if t.Func == nil {
			return false
		}
		for _, b := range t.Func.Bindings {
			if hasVariable(b) {
				return true
			}
		}
		return t.Func.Range != nil && hasVariable(*t.Func.Range)
	default:
		return false
	}
}

// CheckComplete fails if any node's tag still contains a free variable
// after substitution, including one nested inside a Func or Property
// (spec.md §4.4 "Completeness").
func CheckComplete(mods *modset.Set, loc locator.Locator) error {
	m, ok := mods.Get(loc)
	if !ok {
		return fmt.Errorf("module not found: %s", loc)
	}
	for _, n := range m.Tree.Root().Descendants() {
		if n.Core.Tag != nil && hasVariable(*n.Core.Tag) {
			return errors.Wrap(errors.New(errors.InvalidType, "infer", "incomplete type inference").At(*span(n)))
		}
	}
	return nil
}
