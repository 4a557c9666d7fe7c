// Package eval implements the evaluator (spec.md §4.7): a tree walk over
// the tagged, resolved, type-checked syntax forest that normalizes it into
// a specmodel.Spec. It is a straight recursive descent keyed on
// syntax.Kind, in the same shape as the teacher's eval_core.go tree walk,
// but producing Spec/Schema values instead of AILANG runtime Values.
// Grounded on OAL's rewrite::eval (the older, complete eval.rs algorithm
// shape) combined with spec.rs's fuller target model, per SPEC_FULL.md's
// SUPPLEMENTED FEATURES section.
package eval

import (
	"fmt"

	"github.com/oalang/apic/internal/defgraph"
	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/modset"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/stdlib"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

// evaluator holds the state threaded through one evaluation run: the
// module set being walked, which declarations were flagged recursive by
// defgraph, the registered internals, and the Spec being built.
type evaluator struct {
	mods      *modset.Set
	recursive defgraph.Recursive
	internals map[string]stdlib.Internal
	spec      *specmodel.Spec

	// inProgress tracks recursive declarations currently being evaluated,
	// keyed by External.String(), so a reference back to one still being
	// built closes the cycle with a Reference instead of recursing
	// forever (see evalDeclarationRef in eval_variable.go).
	inProgress map[string]bool
}

// argScope binds an Application's parameter nodes to their call-by-value
// argument Values. Keyed by External.String() since Binding nodes may
// belong to a different module than the call site.
type argScope map[string]value.Value

// Evaluate walks the main module's Program node and normalizes every
// top-level Resource into spec.spec.md's Spec uniqueness property: two
// resources sharing a URI pattern fail with RelationConflict.
func Evaluate(mods *modset.Set, recursive defgraph.Recursive, internals map[string]stdlib.Internal) (*specmodel.Spec, error) {
	e := &evaluator{
		mods:      mods,
		recursive: recursive,
		internals: internals,
		spec:      specmodel.New(),
	}

	main := mods.Main()
	for _, n := range main.Tree.Root().Children {
		if n.Kind != syntax.Resource {
			continue
		}
		if err := e.evalResource(n); err != nil {
			return nil, err
		}
	}
	return e.spec, nil
}

func (e *evaluator) evalResource(n *syntax.Node) error {
	v, err := e.eval(n.Children[0], nil)
	if err != nil {
		return err
	}
	if v.Kind != value.KindRelation {
		return errors.Wrap(errors.New(errors.UnknownInvariant, "eval",
			"resource did not evaluate to a relation").WithCode(errors.EVA003).At(n.Span))
	}
	pattern := v.Relation.Uri.Pattern()
	if _, exists := e.spec.Rels.Get(pattern); exists {
		return errors.Wrap(errors.New(errors.RelationConfl, "eval",
			fmt.Sprintf("relation conflict on %q", pattern)).WithCode(errors.EVA002).At(n.Span).
			With("pattern", pattern))
	}
	e.spec.Rels.Set(pattern, v.Relation)
	return nil
}

// eval dispatches on n's Kind, evaluating it (and its annotation chain) to
// a Value. args is the current call's parameter bindings, nil outside any
// Application.
func (e *evaluator) eval(n *syntax.Node, args argScope) (value.Value, error) {
	switch n.Kind {
	case syntax.Literal:
		return e.evalLiteral(n), nil
	case syntax.Primitive:
		return e.evalPrimitive(n), nil
	case syntax.UriTemplate:
		return e.evalUriTemplate(n, args)
	case syntax.Object:
		return e.evalObject(n, args)
	case syntax.Property:
		return e.evalProperty(n, args)
	case syntax.Array:
		return e.evalArray(n, args)
	case syntax.Content:
		return e.evalContent(n, args)
	case syntax.Transfer:
		return e.evalTransfer(n, args)
	case syntax.Relation:
		return e.evalRelation(n, args)
	case syntax.VariadicOp:
		return e.evalVariadicOp(n, args)
	case syntax.Recursion:
		return e.evalRecursion(n, args)
	case syntax.Variable:
		return e.evalVariable(n, args)
	case syntax.Application:
		return e.evalApplication(n, args)
	case syntax.Terminal:
		return e.evalTerminal(n, args)
	case syntax.SubExpression:
		return e.eval(n.Children[0], args)
	default:
		return value.Value{}, fmt.Errorf("eval: unhandled node kind %s", n.Kind)
	}
}

func (e *evaluator) evalLiteral(n *syntax.Node) value.Value {
	switch n.Token.Kind {
	case syntax.TokNumber:
		var f float64
		fmt.Sscanf(n.Token.Text, "%g", &f)
		return value.Value{Kind: value.KindLiteralNumber, LiteralNumber: f}
	case syntax.TokHttpStatus:
		var code int
		fmt.Sscanf(n.Token.Text, "%d", &code)
		return value.Value{Kind: value.KindLiteralStatus, LiteralStatus: statusOf(code)}
	default:
		return value.Value{Kind: value.KindLiteralText, LiteralText: n.Token.Text}
	}
}

func (e *evaluator) evalTerminal(n *syntax.Node, args argScope) (value.Value, error) {
	v, err := e.eval(n.Children[0], args)
	if err != nil {
		return value.Value{}, err
	}
	if ann, ok := inlineAnnotation(n); ok {
		v.Annotation.Extend(ann)
	}
	return v, nil
}
