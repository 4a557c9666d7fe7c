package eval

import (
	"fmt"

	"github.com/oalang/apic/internal/annotation"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

// definitionNode resolves a Variable or Application's Core.Definition,
// written by internal/resolve, to the node it points at -- a Binding (a
// function parameter), a Declaration (a user definition, possibly flagged
// recursive), or one of internal/stdlib's synthetic Declarations.
func (e *evaluator) definitionNode(n *syntax.Node) (*syntax.Node, error) {
	if n.Core.Definition == nil {
		return nil, fmt.Errorf("eval: node %d has no resolved definition", n.Idx)
	}
	def, err := e.mods.Resolve(*n.Core.Definition)
	if err != nil {
		return nil, err
	}
	return def, nil
}

// declIdent strips a declaration's leading '@' marker, if any, producing
// the bare identifier used as its $ref key in the Spec (spec.md §4.7: a
// recursive declaration's identifier is its own ref name).
func declIdent(n *syntax.Node) string {
	name := n.Token.Text
	if len(name) > 0 && name[0] == '@' {
		return name[1:]
	}
	return name
}

// evalVariable evaluates a bare Variable reference: a parameter binding is
// looked up in the current call's argScope, a declaration is evaluated (or,
// if flagged recursive, short-circuited into a Reference -- spec.md §4.7).
func (e *evaluator) evalVariable(n *syntax.Node, args argScope) (value.Value, error) {
	def, err := e.definitionNode(n)
	if err != nil {
		return value.Value{}, err
	}
	switch def.Kind {
	case syntax.Binding:
		key := n.Core.Definition.String()
		v, ok := args[key]
		if !ok {
			return value.Value{}, fmt.Errorf("eval: unbound parameter %q", def.Token.Text)
		}
		return v, nil
	case syntax.Declaration:
		return e.evalDeclarationRef(def, *n.Core.Definition)
	default:
		return value.Value{}, fmt.Errorf("eval: variable resolves to unexpected node kind %s", def.Kind)
	}
}

// evalDeclarationRef evaluates a reference to a Declaration node. A
// non-recursive declaration is inlined directly. A recursive one (self- or
// mutually-referential per defgraph.IdentifyRecursion) is memoized into
// spec.Refs the first time it is reached and, for every reference
// including the one that triggers the memoization, reduces to a bare
// Reference value -- breaking the structural cycle the same way an
// OpenAPI $ref does.
func (e *evaluator) evalDeclarationRef(def *syntax.Node, ext syntax.External) (value.Value, error) {
	if !e.recursive.Has(ext) {
		return e.evalDeclarationBody(def, nil)
	}

	ident := declIdent(def)
	ref := value.Value{Kind: value.KindReference, Reference: ident, Annotation: annotation.Empty()}

	if _, done := e.spec.Refs.Get(ident); done {
		return ref, nil
	}
	if e.inProgress == nil {
		e.inProgress = make(map[string]bool)
	}
	key := ext.String()
	if e.inProgress[key] {
		// A reference back to a declaration still being evaluated: the
		// cycle closes here instead of recursing further.
		return ref, nil
	}
	e.inProgress[key] = true
	defer delete(e.inProgress, key)

	v, err := e.evalDeclarationBody(def, nil)
	if err != nil {
		return value.Value{}, err
	}
	schema, err := value.ToSchema(v)
	if err != nil {
		return value.Value{}, err
	}
	e.spec.Refs.Set(ident, specmodel.Reference{Schema: schema})
	return ref, nil
}

// evalRecursion evaluates a `rec BINDING EXPR` marker: the binding exists
// only so the resolver can point self-references inside EXPR back at the
// enclosing declaration (internal/resolve's resolveRecursion); at eval time
// the marker itself is transparent, and any self-reference inside EXPR is
// handled by evalDeclarationRef's recursive short-circuit.
func (e *evaluator) evalRecursion(n *syntax.Node, args argScope) (value.Value, error) {
	expr := n.Children[len(n.Children)-1]
	return e.eval(expr, args)
}
