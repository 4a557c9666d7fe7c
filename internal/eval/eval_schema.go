package eval

import (
	"fmt"

	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

func statusOf(code int) atom.HttpStatus {
	return atom.StatusCode(code)
}

func primitiveOf(name string) (atom.Primitive, error) {
	switch name {
	case "num":
		return atom.Number, nil
	case "str":
		return atom.String, nil
	case "bool":
		return atom.Boolean, nil
	case "int":
		return atom.Integer, nil
	default:
		return 0, fmt.Errorf("unknown primitive %q", name)
	}
}

func (e *evaluator) evalPrimitive(n *syntax.Node) value.Value {
	p, err := primitiveOf(n.Token.Text)
	if err != nil {
		p = atom.String
	}
	return value.Value{Kind: value.KindPrim, Prim: p}
}

func (e *evaluator) evalArray(n *syntax.Node, args argScope) (value.Value, error) {
	inner, err := e.eval(n.Children[0], args)
	if err != nil {
		return value.Value{}, err
	}
	schema, err := value.ToSchema(inner)
	if err != nil {
		return value.Value{}, err
	}
	return value.Value{Kind: value.KindArray, Array: specmodel.Array{Item: schema}}, nil
}

// propertyList finds a node's PropertyList child, if any (shared shape of
// Object, UriParams and XferParams: zero or one PropertyList wrapping
// Property children).
func propertyList(n *syntax.Node) *syntax.Node {
	for _, c := range n.Children {
		if c.Kind == syntax.PropertyList {
			return c
		}
	}
	return nil
}

func (e *evaluator) evalObjectLike(n *syntax.Node, args argScope) (specmodel.Object, error) {
	list := propertyList(n)
	if list == nil {
		return specmodel.Object{}, nil
	}
	var props []specmodel.Property
	for _, propNode := range list.Children {
		v, err := e.eval(propNode, args)
		if err != nil {
			return specmodel.Object{}, err
		}
		if v.Kind != value.KindProperty {
			return specmodel.Object{}, fmt.Errorf("object member did not evaluate to a property")
		}
		props = append(props, v.Property)
	}
	return specmodel.Object{Props: props}, nil
}

func (e *evaluator) evalObject(n *syntax.Node, args argScope) (value.Value, error) {
	obj, err := e.evalObjectLike(n, args)
	if err != nil {
		return value.Value{}, err
	}
	return value.Value{Kind: value.KindObject, Object: obj}, nil
}

// propertyName returns a Property node's declared name from its
// PropertyName child.
func propertyName(n *syntax.Node) string {
	for _, c := range n.Children {
		if c.Kind == syntax.PropertyName {
			return c.Token.Text
		}
	}
	return ""
}

// propertyOptionMark returns the explicit `!`/`?` suffix on a Property, if
// present: true for required (`!`), false for optional (`?`).
func propertyOptionMark(n *syntax.Node) (bool, bool) {
	for _, c := range n.Children {
		if c.Kind == syntax.OptionMark {
			return c.Token.Text == "!", true
		}
	}
	return false, false
}

func (e *evaluator) evalProperty(n *syntax.Node, args argScope) (value.Value, error) {
	rhs := n.Children[len(n.Children)-1]
	v, err := e.eval(rhs, args)
	if err != nil {
		return value.Value{}, err
	}
	schema, err := value.ToSchema(v)
	if err != nil {
		return value.Value{}, err
	}

	required := schema.Required
	if explicit, ok := propertyOptionMark(n); ok {
		required = &explicit
	}

	prop := specmodel.Property{
		Name:     propertyName(n),
		Schema:   schema,
		Desc:     schema.Desc,
		Required: required,
	}
	return value.Value{Kind: value.KindProperty, Property: prop, Annotation: v.Annotation}, nil
}

func operatorOf(n *syntax.Node) atom.Operator {
	switch n.Token.Text {
	case "&":
		return atom.Join
	case "~":
		return atom.Any
	case "|":
		return atom.Sum
	case "::":
		return atom.Range
	default:
		return atom.Join
	}
}

func (e *evaluator) evalVariadicOp(n *syntax.Node, args argScope) (value.Value, error) {
	op := operatorOf(n)
	if op == atom.Range {
		// A range combinator only ever appears directly in a transfer's
		// domain/range position (spec.md §4.5: Content is schema-like but
		// not a schema, so it cannot nest under Array/Object/Property,
		// which require IsSchema). evalTransfer extracts its operands via
		// rangeContents before generic eval ever sees this node.
		return value.Value{}, fmt.Errorf("eval: range combinator used outside a transfer's domain or range")
	}

	var schemas []specmodel.Schema
	for _, operand := range n.Children {
		v, err := e.eval(operand, args)
		if err != nil {
			return value.Value{}, err
		}
		s, err := value.ToSchema(v)
		if err != nil {
			return value.Value{}, err
		}
		schemas = append(schemas, s)
	}
	return value.Value{Kind: value.KindOp, Op: specmodel.VariadicOp{Op: op, Schemas: schemas}}, nil
}

