package eval

import (
	"fmt"

	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

// declarationBindings returns a Declaration's Binding nodes, found inside
// its Bindings wrapper child if present (mirroring internal/resolve's
// helper of the same name).
func declarationBindings(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.Children[:len(n.Children)-1] {
		if c.Kind == syntax.Bindings {
			out = append(out, c.Children...)
		}
	}
	return out
}

// applicationArgs returns an Application node's argument nodes: every
// child after its first, which is always the callee reference, mirroring
// internal/infer's helper of the same name.
func applicationArgs(n *syntax.Node) []*syntax.Node {
	if len(n.Children) <= 1 {
		return nil
	}
	return n.Children[1:]
}

// evalDeclarationBody evaluates a Declaration's right-hand-side expression
// with the given parameter bindings in scope, then extends the result's
// annotation with the declaration's own annotation lines underneath
// whatever the expression already accumulated (spec.md §4.6: a
// declaration's own lines are the base, a terminal's inline annotation
// overrides).
func (e *evaluator) evalDeclarationBody(def *syntax.Node, args argScope) (value.Value, error) {
	rhs := def.Children[len(def.Children)-1]
	v, err := e.eval(rhs, args)
	if err != nil {
		return value.Value{}, err
	}
	own, err := gatherAnnotations(def)
	if err != nil {
		return value.Value{}, err
	}
	own.Extend(v.Annotation)
	v.Annotation = own
	return v, nil
}

// evalApplication evaluates a call: its arguments eagerly, in the caller's
// scope (call-by-value, spec.md §4.7), then either hands them to a
// registered internal/stdlib definition or evaluates the callee
// declaration's body in a fresh scope binding its parameters to those
// values.
func (e *evaluator) evalApplication(n *syntax.Node, args argScope) (value.Value, error) {
	if n.Core.Definition == nil {
		return value.Value{}, fmt.Errorf("eval: application node %d has no resolved definition", n.Idx)
	}
	argNodes := applicationArgs(n)
	argVals := make([]value.Value, len(argNodes))
	for i, argNode := range argNodes {
		v, err := e.eval(argNode, args)
		if err != nil {
			return value.Value{}, err
		}
		argVals[i] = v
	}

	// internal/stdlib definitions carry their arity in their Tag, not in
	// real Binding nodes -- dispatch to them before inspecting def's
	// (nonexistent) bindings.
	if in, ok := e.internals[n.Core.Definition.String()]; ok {
		ann, err := gatherAnnotations(n)
		if err != nil {
			return value.Value{}, err
		}
		return in.Eval(argVals, ann)
	}

	def, err := e.definitionNode(n)
	if err != nil {
		return value.Value{}, err
	}
	if def.Kind != syntax.Declaration {
		return value.Value{}, fmt.Errorf("eval: application callee resolves to unexpected node kind %s", def.Kind)
	}

	bindings := declarationBindings(def)
	if len(argNodes) != len(bindings) {
		return value.Value{}, fmt.Errorf("eval: %q called with %d argument(s), expected %d",
			def.Token.Text, len(argNodes), len(bindings))
	}

	callScope := make(argScope, len(bindings))
	for i, binding := range bindings {
		key := syntax.External{Loc: n.Core.Definition.Loc, Index: binding.Idx}.String()
		callScope[key] = argVals[i]
	}
	return e.evalDeclarationBody(def, callScope)
}
