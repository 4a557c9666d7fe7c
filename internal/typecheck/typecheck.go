// Package typecheck enforces the kind-level well-formedness rules from
// spec.md §4.5, run after inference has given every node a concrete tag.
// Grounded on OAL's rewrite::typecheck module.
package typecheck

import (
	"fmt"

	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/types"
)

func tagOf(n *syntax.Node) types.Tag {
	if n.Core.Tag == nil {
		panic(fmt.Sprintf("node %d (%s) untagged at typecheck time", n.Idx, n.Kind))
	}
	return *n.Core.Tag
}

func fail(message string, n *syntax.Node) error {
	s := n.Span
	return errors.Wrap(errors.New(errors.InvalidType, "typecheck", message).At(s))
}

func operandsOf(n *syntax.Node) []*syntax.Node {
	return n.Children
}

func checkOperation(n *syntax.Node) error {
	switch n.Token.Text {
	case "&":
		for _, o := range operandsOf(n) {
			if tagOf(o).Kind != types.Object {
				return fail("ill-formed join", n)
			}
		}
	case "~", "|":
		for _, o := range operandsOf(n) {
			if !tagOf(o).IsSchema() {
				return fail("ill-formed alternative", n)
			}
		}
	case "::":
		for _, o := range operandsOf(n) {
			if !tagOf(o).IsSchemaLike() {
				return fail("ill-formed ranges", n)
			}
		}
	default:
		return fmt.Errorf("unknown variadic operator %q", n.Token.Text)
	}
	return nil
}

func checkContent(n *syntax.Node) error {
	for _, child := range n.Children {
		if child.Kind != syntax.ContentMetaList {
			continue
		}
		for _, meta := range child.Children {
			rhs := meta.Children[len(meta.Children)-1]
			switch meta.Token.Text {
			case "media":
				if tagOf(rhs).Kind != types.Text {
					return fail("ill-formed media", meta)
				}
			case "headers":
				if !tagOf(rhs).IsSchema() {
					return fail("ill-formed headers", meta)
				}
			case "status":
				if !tagOf(rhs).IsStatusLike() {
					return fail("ill-formed status", meta)
				}
			}
		}
	}
	for _, child := range n.Children {
		if child.Kind == syntax.ContentBody && len(child.Children) > 0 {
			body := child.Children[0]
			if !tagOf(body).IsSchema() {
				return fail("ill-formed body", n)
			}
		}
	}
	return nil
}

func checkTransfer(n *syntax.Node) error {
	for _, child := range n.Children {
		if child.Kind == syntax.XferDomain && len(child.Children) > 0 {
			domain := child.Children[0]
			if !tagOf(domain).IsSchemaLike() {
				return fail("ill-formed domain", child)
			}
		}
	}
	rng := n.Children[len(n.Children)-1]
	if !tagOf(rng).IsSchemaLike() {
		return fail("ill-formed range", rng)
	}
	return nil
}

func checkRelation(n *syntax.Node) error {
	uri := n.Children[0]
	if tagOf(uri).Kind != types.Uri {
		return fail("ill-formed uri", uri)
	}
	for _, xfer := range xferListTransfers(n) {
		if tagOf(xfer).Kind != types.Transfer {
			return fail("ill-formed transfers", n)
		}
	}
	return nil
}

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

func checkUri(n *syntax.Node) error {
	for _, child := range n.Children {
		if child.Kind != syntax.UriPath {
			continue
		}
		for _, seg := range child.Children {
			if seg.Kind != syntax.UriVariable {
				continue
			}
			inner := seg.Children[len(seg.Children)-1]
			t := tagOf(inner)
			if t.Kind != types.PropertyKind || t.Property.Kind != types.Primitive {
				return fail("ill-formed uri", n)
			}
		}
	}
	return nil
}

func checkArray(n *syntax.Node) error {
	inner := n.Children[0]
	if !tagOf(inner).IsSchema() {
		return fail("ill-formed array", n)
	}
	return nil
}

func checkProperty(n *syntax.Node) error {
	rhs := n.Children[len(n.Children)-1]
	if !tagOf(rhs).IsSchema() {
		return fail("ill-formed property", n)
	}
	return nil
}

func checkObject(n *syntax.Node) error {
	for _, list := range n.Children {
		if list.Kind != syntax.PropertyList {
			continue
		}
		for _, prop := range list.Children {
			if tagOf(prop).Kind != types.PropertyKind {
				return fail("ill-formed object", n)
			}
		}
	}
	return nil
}

// isReferenceIdent reports whether a Declaration's identifier begins with
// '@', marking it as a reference identifier (spec.md GLOSSARY).
func isReferenceIdent(n *syntax.Node) bool {
	return n.Token.Text != "" && n.Token.Text[0] == '@'
}

func checkDeclaration(n *syntax.Node) error {
	if !isReferenceIdent(n) {
		return nil
	}
	rhs := n.Children[len(n.Children)-1]
	if !tagOf(rhs).IsSchema() {
		return fail("ill-formed reference", n)
	}
	return nil
}

func checkResource(n *syntax.Node) error {
	rel := n.Children[0]
	if !tagOf(rel).IsRelationLike() {
		return fail("ill-formed resource", n)
	}
	return nil
}

// Check runs every well-formedness rule against the module at loc, failing
// on the first violation encountered in a pre-order walk.
func Check(mods *modset.Set, loc locator.Locator) error {
	m, ok := mods.Get(loc)
	if !ok {
		return fmt.Errorf("module not found: %s", loc)
	}
	for _, n := range m.Tree.Root().Descendants() {
		var err error
		switch n.Kind {
		case syntax.VariadicOp:
			err = checkOperation(n)
		case syntax.Content:
			err = checkContent(n)
		case syntax.Transfer:
			err = checkTransfer(n)
		case syntax.Relation:
			err = checkRelation(n)
		case syntax.UriTemplate:
			err = checkUri(n)
		case syntax.Array:
			err = checkArray(n)
		case syntax.Property:
			err = checkProperty(n)
		case syntax.Object:
			err = checkObject(n)
		case syntax.Declaration:
			err = checkDeclaration(n)
		case syntax.Resource:
			err = checkResource(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
