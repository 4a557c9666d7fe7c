// Package openapi renders a fully evaluated specmodel.Spec as an OpenAPI 3
// document (spec.md §4.7's "OpenAPI 3 target"). It builds the document as a
// gopkg.in/yaml.v3 node tree rather than marshaling a Go struct, the same
// convention internal/annotation uses to keep mapping key order under
// explicit control -- OpenAPI tooling (and readers) expect `paths` and
// `responses` keys in declaration order, which yaml.v3's map[string]any
// marshaling cannot guarantee. Schema-example synthesis is grounded on
// pb33f/libopenapi's renderer/example_renderer.go (DiveIntoSchema), reusing
// its format-name switch and its github.com/lucasjones/reggen fallback for
// pattern-constrained strings with no declared example.
package openapi

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/specmodel"
)

const version = "3.0.3"

// Info is the document's top-level `info` object.
type Info struct {
	Title   string
	Version string
}

// Render builds the OpenAPI document for spec as a yaml.v3 node tree.
func Render(spec *specmodel.Spec, info Info) (*yaml.Node, error) {
	paths, err := pathsNode(spec.Rels)
	if err != nil {
		return nil, err
	}

	pairs := []*yaml.Node{
		str("openapi"), str(version),
		str("info"), mapping(
			str("title"), str(info.Title),
			str("version"), str(info.Version),
		),
		str("paths"), paths,
	}

	if spec.Refs.Len() > 0 {
		schemas, err := refsNode(spec.Refs)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("components"), mapping(str("schemas"), schemas))
	}

	return mapping(pairs...), nil
}

// Marshal renders spec and encodes it as OpenAPI 3 YAML.
func Marshal(spec *specmodel.Spec, info Info) ([]byte, error) {
	doc, err := Render(spec, info)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func refsNode(refs specmodel.References) (*yaml.Node, error) {
	var pairs []*yaml.Node
	for p := refs.Oldest(); p != nil; p = p.Next() {
		s, err := schemaNode(p.Value.Schema)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str(p.Key), s)
	}
	return mapping(pairs...), nil
}

func pathsNode(rels specmodel.Relations) (*yaml.Node, error) {
	var pairs []*yaml.Node
	for p := rels.Oldest(); p != nil; p = p.Next() {
		item, err := pathItemNode(p.Value)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", p.Key, err)
		}
		pairs = append(pairs, str(p.Key), item)
	}
	return mapping(pairs...), nil
}

func pathItemNode(rel specmodel.Relation) (*yaml.Node, error) {
	var pairs []*yaml.Node
	for _, m := range atom.Methods {
		xfer, ok := rel.Xfers[m]
		if !ok || xfer == nil {
			continue
		}
		op, err := operationNode(m, xfer, rel.Uri)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		pairs = append(pairs, str(m.String()), op)
	}
	return mapping(pairs...), nil
}

func operationNode(m atom.Method, xfer *specmodel.Transfer, uri specmodel.Uri) (*yaml.Node, error) {
	var pairs []*yaml.Node
	if xfer.ID != "" {
		pairs = append(pairs, str("operationId"), str(xfer.ID))
	}
	if xfer.Summary != "" {
		pairs = append(pairs, str("summary"), str(xfer.Summary))
	}
	if xfer.Desc != "" {
		pairs = append(pairs, str("description"), str(xfer.Desc))
	}
	if len(xfer.Tags) > 0 {
		var tags []*yaml.Node
		for _, t := range xfer.Tags {
			tags = append(tags, str(t))
		}
		pairs = append(pairs, str("tags"), sequence(tags...))
	}

	params, err := parametersNode(uri, xfer.Params)
	if err != nil {
		return nil, err
	}
	if params != nil {
		pairs = append(pairs, str("parameters"), params)
	}

	if bodyAllowed(m) && xfer.Domain.Schema != nil {
		body, err := requestBodyNode(xfer.Domain)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("requestBody"), body)
	}

	responses, err := responsesNode(xfer.Ranges)
	if err != nil {
		return nil, err
	}
	pairs = append(pairs, str("responses"), responses)

	return mapping(pairs...), nil
}

// bodyAllowed reports whether method m's transfer domain becomes a
// requestBody; for the other methods the domain is not rendered and is not
// turned into parameters either (RFC 9110 leaves GET/
// HEAD/DELETE/OPTIONS request bodies undefined; OAL's own transfer grammar
// treats those as parameter-only methods).
func bodyAllowed(m atom.Method) bool {
	switch m {
	case atom.Put, atom.Post, atom.Patch:
		return true
	default:
		return false
	}
}

func parametersNode(uri specmodel.Uri, headers *specmodel.Object) (*yaml.Node, error) {
	var items []*yaml.Node
	for _, seg := range uri.Path {
		if seg.Variable == nil {
			continue
		}
		p, err := parameterNode(*seg.Variable, "path", true)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if uri.Params != nil {
		for _, prop := range uri.Params.Props {
			p, err := parameterNode(prop, "query", required(prop.Required))
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
	}
	if headers != nil {
		for _, prop := range headers.Props {
			p, err := parameterNode(prop, "header", required(prop.Required))
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return sequence(items...), nil
}

func parameterNode(prop specmodel.Property, in string, req bool) (*yaml.Node, error) {
	schema, err := schemaNode(prop.Schema)
	if err != nil {
		return nil, err
	}
	pairs := []*yaml.Node{
		str("name"), str(prop.Name),
		str("in"), str(in),
		str("required"), boolean(req),
	}
	if prop.Desc != "" {
		pairs = append(pairs, str("description"), str(prop.Desc))
	}
	pairs = append(pairs, str("schema"), schema)
	return mapping(pairs...), nil
}

func required(r *bool) bool { return r != nil && *r }

func requestBodyNode(content specmodel.Content) (*yaml.Node, error) {
	inner, err := contentNode(content)
	if err != nil {
		return nil, err
	}
	pairs := []*yaml.Node{str("content"), inner}
	if content.Desc != "" {
		pairs = append([]*yaml.Node{str("description"), str(content.Desc)}, pairs...)
	}
	pairs = append(pairs, str("required"), boolean(true))
	return mapping(pairs...), nil
}

func contentNode(content specmodel.Content) (*yaml.Node, error) {
	media := content.Media
	if media == "" {
		media = "application/json"
	}
	mt, err := mediaTypeNode(content)
	if err != nil {
		return nil, err
	}
	return mapping(str(media), mt), nil
}

func mediaTypeNode(content specmodel.Content) (*yaml.Node, error) {
	var pairs []*yaml.Node
	if content.Schema != nil {
		s, err := schemaNode(*content.Schema)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("schema"), s)

		if ex, ok := exampleFor(*content.Schema); ok {
			pairs = append(pairs, str("example"), str(ex))
		}
	}
	if len(content.Examples) > 0 {
		exNode, err := namedExamplesNode(content.Examples)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("examples"), exNode)
	}
	return mapping(pairs...), nil
}

func namedExamplesNode(examples map[string]string) (*yaml.Node, error) {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	var pairs []*yaml.Node
	for _, name := range names {
		pairs = append(pairs, str(name), mapping(str("value"), str(examples[name])))
	}
	return mapping(pairs...), nil
}

func responsesNode(ranges specmodel.Ranges) (*yaml.Node, error) {
	if ranges == nil || ranges.Len() == 0 {
		return mapping(str("default"), mapping(str("description"), str(""))), nil
	}

	byStatus := make(map[string][]specmodel.Content)
	var order []string
	for p := ranges.Oldest(); p != nil; p = p.Next() {
		key := statusKey(p.Key.Status)
		if _, ok := byStatus[key]; !ok {
			order = append(order, key)
		}
		byStatus[key] = append(byStatus[key], p.Value)
	}

	var pairs []*yaml.Node
	for _, status := range order {
		contents := byStatus[status]
		resp, err := responseNode(contents)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str(status), resp)
	}
	return mapping(pairs...), nil
}

func statusKey(s *atom.HttpStatus) string {
	if s == nil {
		return "default"
	}
	if s.IsRange {
		switch s.Range {
		case atom.Info:
			return "1XX"
		case atom.Success:
			return "2XX"
		case atom.Redirect:
			return "3XX"
		case atom.ClientError:
			return "4XX"
		default:
			return "5XX"
		}
	}
	return fmt.Sprintf("%d", s.Code)
}

func responseNode(contents []specmodel.Content) (*yaml.Node, error) {
	desc := ""
	var mediaPairs []*yaml.Node
	for _, c := range contents {
		if c.Desc != "" {
			desc = c.Desc
		}
		media := c.Media
		if media == "" {
			media = "application/json"
		}
		mt, err := mediaTypeNode(c)
		if err != nil {
			return nil, err
		}
		mediaPairs = append(mediaPairs, str(media), mt)
	}

	pairs := []*yaml.Node{str("description"), str(desc)}
	if len(mediaPairs) > 0 {
		pairs = append(pairs, str("content"), mapping(mediaPairs...))
	}
	return mapping(pairs...), nil
}

// schemaNode converts a specmodel.Schema into an OpenAPI schema object node.
func schemaNode(s specmodel.Schema) (*yaml.Node, error) {
	var pairs []*yaml.Node

	switch s.Expr.Kind {
	case specmodel.ExprNum:
		pairs = append(pairs, str("type"), str("number"))
		pairs = append(pairs, numericConstraints(s.Expr.Num.Minimum, s.Expr.Num.Maximum, s.Expr.Num.MultipleOf)...)
	case specmodel.ExprInt:
		pairs = append(pairs, str("type"), str("integer"))
		pairs = append(pairs, intConstraints(s.Expr.Int.Minimum, s.Expr.Int.Maximum, s.Expr.Int.MultipleOf)...)
	case specmodel.ExprBool:
		pairs = append(pairs, str("type"), str("boolean"))
	case specmodel.ExprStr:
		pairs = append(pairs, str("type"), str("string"))
		if s.Expr.Str.Format != "" {
			pairs = append(pairs, str("format"), str(s.Expr.Str.Format))
		}
		if s.Expr.Str.Pattern != "" {
			pairs = append(pairs, str("pattern"), str(s.Expr.Str.Pattern))
		}
		if len(s.Expr.Str.Enumeration) > 0 {
			var items []*yaml.Node
			for _, e := range s.Expr.Str.Enumeration {
				items = append(items, str(e))
			}
			pairs = append(pairs, str("enum"), sequence(items...))
		}
	case specmodel.ExprArray:
		item, err := schemaNode(s.Expr.Array.Item)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, str("type"), str("array"), str("items"), item)
	case specmodel.ExprObject:
		obj, err := objectNode(s.Expr.Object)
		if err != nil {
			return nil, err
		}
		pairs = obj
	case specmodel.ExprOp:
		op, err := operatorNode(s.Expr.Op)
		if err != nil {
			return nil, err
		}
		return op, nil
	case specmodel.ExprRef:
		return mapping(str("$ref"), str("#/components/schemas/"+s.Expr.Ref)), nil
	case specmodel.ExprRel:
		pairs = append(pairs, str("type"), str("object"),
			str("description"), str("relation at "+s.Expr.Rel.Uri.Pattern()))
	case specmodel.ExprUri:
		pairs = append(pairs, str("type"), str("string"),
			str("format"), str("uri"),
			str("pattern"), str(s.Expr.Uri.Pattern()))
	default:
		return nil, errors.Wrap(errors.New(errors.UnknownInvariant, "openapi",
			fmt.Sprintf("unhandled schema kind %d", s.Expr.Kind)).WithCode(errors.GEN001))
	}

	if s.Title != "" {
		pairs = append(pairs, str("title"), str(s.Title))
	}
	if s.Desc != "" {
		pairs = append(pairs, str("description"), str(s.Desc))
	}
	if len(s.Examples) > 0 {
		names := make([]string, 0, len(s.Examples))
		for name := range s.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) == 1 {
			pairs = append(pairs, str("example"), str(s.Examples[names[0]]))
		}
	}

	return mapping(pairs...), nil
}

func numericConstraints(min, max, multipleOf *float64) []*yaml.Node {
	var out []*yaml.Node
	if min != nil {
		out = append(out, str("minimum"), float(*min))
	}
	if max != nil {
		out = append(out, str("maximum"), float(*max))
	}
	if multipleOf != nil {
		out = append(out, str("multipleOf"), float(*multipleOf))
	}
	return out
}

func intConstraints(min, max, multipleOf *int64) []*yaml.Node {
	var out []*yaml.Node
	if min != nil {
		out = append(out, str("minimum"), integer(*min))
	}
	if max != nil {
		out = append(out, str("maximum"), integer(*max))
	}
	if multipleOf != nil {
		out = append(out, str("multipleOf"), integer(*multipleOf))
	}
	return out
}

func objectNode(obj specmodel.Object) ([]*yaml.Node, error) {
	var propPairs []*yaml.Node
	var required []*yaml.Node
	for _, prop := range obj.Props {
		s, err := schemaNode(prop.Schema)
		if err != nil {
			return nil, err
		}
		propPairs = append(propPairs, str(prop.Name), s)
		if prop.Required != nil && *prop.Required {
			required = append(required, str(prop.Name))
		}
	}
	pairs := []*yaml.Node{str("type"), str("object")}
	if len(propPairs) > 0 {
		pairs = append(pairs, str("properties"), mapping(propPairs...))
	}
	if len(required) > 0 {
		pairs = append(pairs, str("required"), sequence(required...))
	}
	return pairs, nil
}

// operatorNode renders a VariadicOp: `&` (join) flattens into one object
// schema's properties, `|`/`::` (alternative/range) become oneOf, `~` (any)
// becomes anyOf -- OpenAPI has no direct equivalent of OAL's "any" combinator
// so anyOf is the closest faithful rendering.
func operatorNode(op specmodel.VariadicOp) (*yaml.Node, error) {
	if op.Op == atom.Join {
		merged := specmodel.Object{}
		for _, s := range op.Schemas {
			if s.Expr.Kind == specmodel.ExprObject {
				merged.Props = append(merged.Props, s.Expr.Object.Props...)
			}
		}
		pairs, err := objectNode(merged)
		if err != nil {
			return nil, err
		}
		return mapping(pairs...), nil
	}

	key := "anyOf"
	if op.Op == atom.Sum || op.Op == atom.Range {
		key = "oneOf"
	}
	var items []*yaml.Node
	for _, s := range op.Schemas {
		n, err := schemaNode(s)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return mapping(str(key), sequence(items...)), nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolean(b bool) *yaml.Node {
	v := "false"
	if b {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}

func float(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%g", f)}
}

func integer(i int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", i)}
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}
