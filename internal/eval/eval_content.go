package eval

import (
	"fmt"

	"github.com/oalang/apic/internal/annotation"
	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

// toContent reduces a schema-like Value down to a specmodel.Content: a
// Content value carries its own envelope fields directly, anything else
// (a bare Prim/Uri/Array/Object/Op/Reference) is wrapped via
// specmodel.ContentFromSchema.
func (e *evaluator) toContent(v value.Value) (specmodel.Content, error) {
	if v.Kind == value.KindContent {
		return v.Content, nil
	}
	schema, err := value.ToSchema(v)
	if err != nil {
		return specmodel.Content{}, fmt.Errorf("value is not schema-like: %w", err)
	}
	return specmodel.ContentFromSchema(schema), nil
}

// rangeContents evaluates a transfer's domain or range expression into one
// or more Contents: a `::` VariadicOp lists several side by side, anything
// else evaluates to exactly one.
func (e *evaluator) rangeContents(n *syntax.Node, args argScope) ([]specmodel.Content, error) {
	if n.Kind == syntax.VariadicOp && operatorOf(n) == atom.Range {
		var out []specmodel.Content
		for _, operand := range n.Children {
			v, err := e.eval(operand, args)
			if err != nil {
				return nil, err
			}
			c, err := e.toContent(v)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}
	v, err := e.eval(n, args)
	if err != nil {
		return nil, err
	}
	c, err := e.toContent(v)
	if err != nil {
		return nil, err
	}
	return []specmodel.Content{c}, nil
}

// contentMetaRHS finds the first meta entry with the given key
// (headers/media/status) in a Content node's ContentMetaList child and
// returns that entry's right-hand side, if any.
func contentMetaRHS(n *syntax.Node, key string) (*syntax.Node, bool) {
	for _, child := range n.Children {
		if child.Kind != syntax.ContentMetaList {
			continue
		}
		for _, meta := range child.Children {
			if meta.Token.Text == key {
				return meta.Children[len(meta.Children)-1], true
			}
		}
	}
	return nil, false
}

func contentBody(n *syntax.Node) (*syntax.Node, bool) {
	for _, child := range n.Children {
		if child.Kind == syntax.ContentBody && len(child.Children) > 0 {
			return child.Children[0], true
		}
	}
	return nil, false
}

func (e *evaluator) evalContent(n *syntax.Node, args argScope) (value.Value, error) {
	c := specmodel.Content{}

	if mediaNode, ok := contentMetaRHS(n, "media"); ok {
		v, err := e.eval(mediaNode, args)
		if err != nil {
			return value.Value{}, err
		}
		c.Media = v.LiteralText
	}
	if statusNode, ok := contentMetaRHS(n, "status"); ok {
		v, err := e.eval(statusNode, args)
		if err != nil {
			return value.Value{}, err
		}
		s := statusFromValue(v)
		c.Status = &s
	}
	if headersNode, ok := contentMetaRHS(n, "headers"); ok {
		v, err := e.eval(headersNode, args)
		if err != nil {
			return value.Value{}, err
		}
		if v.Kind != value.KindObject {
			return value.Value{}, fmt.Errorf("content headers did not evaluate to an object")
		}
		obj := v.Object
		c.Headers = &obj
	}
	if bodyNode, ok := contentBody(n); ok {
		v, err := e.eval(bodyNode, args)
		if err != nil {
			return value.Value{}, err
		}
		schema, err := value.ToSchema(v)
		if err != nil {
			return value.Value{}, err
		}
		c.Schema = &schema
		c.Desc = schema.Desc
		c.Examples = schema.Examples
	}

	ann := annotation.Empty()
	if inline, ok := inlineAnnotation(n); ok {
		ann.Extend(inline)
	}
	if d, ok := ann.GetStr("description"); ok {
		c.Desc = d
	}

	return value.Value{Kind: value.KindContent, Content: c, Annotation: ann}, nil
}

func statusFromValue(v value.Value) atom.HttpStatus {
	switch v.Kind {
	case value.KindLiteralStatus:
		return v.LiteralStatus
	case value.KindLiteralNumber:
		return atom.StatusCode(int(v.LiteralNumber))
	default:
		return atom.HttpStatus{}
	}
}
