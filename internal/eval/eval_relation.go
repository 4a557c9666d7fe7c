package eval

import (
	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/specmodel"
	"github.com/oalang/apic/internal/syntax"
	"github.com/oalang/apic/internal/value"
)

func methodOf(name string) (atom.Method, bool) {
	switch name {
	case "get":
		return atom.Get, true
	case "put":
		return atom.Put, true
	case "post":
		return atom.Post, true
	case "patch":
		return atom.Patch, true
	case "delete":
		return atom.Delete, true
	case "options":
		return atom.Options, true
	case "head":
		return atom.Head, true
	default:
		return 0, false
	}
}

func methodsOf(n *syntax.Node) []atom.Method {
	var out []atom.Method
	for _, c := range n.Children {
		if c.Kind != syntax.Method {
			continue
		}
		if m, ok := methodOf(c.Token.Text); ok {
			out = append(out, m)
		}
	}
	return out
}

func xferChild(n *syntax.Node, kind syntax.Kind) (*syntax.Node, bool) {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c, true
		}
	}
	return nil, false
}

func (e *evaluator) evalTransfer(n *syntax.Node, args argScope) (value.Value, error) {
	methodsNode, ok := xferChild(n, syntax.XferMethods)
	if !ok {
		return value.Value{}, nil
	}
	methods := methodsOf(methodsNode)

	xfer := &specmodel.Transfer{
		Methods: make(map[atom.Method]bool, len(methods)),
		Domain:  specmodel.Content{},
		Ranges:  specmodel.NewRanges(),
	}
	for _, m := range methods {
		xfer.Methods[m] = true
	}

	if paramsNode, ok := xferChild(n, syntax.XferParams); ok {
		obj, err := e.evalObjectLike(paramsNode, args)
		if err != nil {
			return value.Value{}, err
		}
		xfer.Params = &obj
	}

	if domainNode, ok := xferChild(n, syntax.XferDomain); ok && len(domainNode.Children) > 0 {
		domainContents, err := e.rangeContents(domainNode.Children[0], args)
		if err != nil {
			return value.Value{}, err
		}
		if len(domainContents) > 0 {
			xfer.Domain = domainContents[0]
		}
	}

	rangeNode := n.Children[len(n.Children)-1]
	contents, err := e.rangeContents(rangeNode, args)
	if err != nil {
		return value.Value{}, err
	}
	for _, c := range contents {
		key := specmodel.RangeKey{Status: c.Status, Media: c.Media}
		xfer.Ranges.Set(key, c)
	}

	ann, err := gatherAnnotations(n)
	if err != nil {
		return value.Value{}, err
	}
	if d, ok := ann.GetStr("description"); ok {
		xfer.Desc = d
	}
	if s, ok := ann.GetStr("summary"); ok {
		xfer.Summary = s
	}
	if tags, ok := ann.GetEnum("tags"); ok {
		xfer.Tags = tags
	}
	if id, ok := ann.GetStr("operationId"); ok {
		xfer.ID = id
	}

	return value.Value{Kind: value.KindTransfer, Transfer: *xfer, Annotation: ann}, nil
}

// xferListTransfers returns a Relation's transfer nodes, found inside its
// second child's XferList wrapper (matching infer.go and typecheck.go's
// helper of the same name).
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

func (e *evaluator) evalRelation(n *syntax.Node, args argScope) (value.Value, error) {
	uriVal, err := e.eval(n.Children[0], args)
	if err != nil {
		return value.Value{}, err
	}
	if uriVal.Kind != value.KindUri {
		return value.Value{}, nil
	}
	rel := specmodel.RelationFromUri(uriVal.Uri)

	for _, xferNode := range xferListTransfers(n) {
		v, err := e.eval(xferNode, args)
		if err != nil {
			return value.Value{}, err
		}
		if v.Kind != value.KindTransfer {
			continue
		}
		for m := range v.Transfer.Methods {
			xfer := v.Transfer
			rel.Xfers[m] = &xfer
		}
	}

	return value.Value{Kind: value.KindRelation, Relation: rel, Annotation: uriVal.Annotation}, nil
}

func uriPath(n *syntax.Node) (*syntax.Node, bool) {
	return xferChild(n, syntax.UriPath)
}

func uriParams(n *syntax.Node) (*syntax.Node, bool) {
	return xferChild(n, syntax.UriParams)
}

func (e *evaluator) evalUriTemplate(n *syntax.Node, args argScope) (value.Value, error) {
	uri := specmodel.Uri{}

	if pathNode, ok := uriPath(n); ok {
		for _, seg := range pathNode.Children {
			switch seg.Kind {
			case syntax.PathElement:
				// The parser keeps the segment's leading '/' ("/pets", or "/"
				// for a bare root); Pattern adds the separators itself.
				lit := seg.Token.Text
				if len(lit) > 0 && lit[0] == '/' {
					lit = lit[1:]
				}
				uri.Path = append(uri.Path, specmodel.UriSegment{Literal: lit})
			case syntax.UriVariable:
				propNode := seg.Children[len(seg.Children)-1]
				v, err := e.eval(propNode, args)
				if err != nil {
					return value.Value{}, err
				}
				if v.Kind != value.KindProperty {
					return value.Value{}, nil
				}
				prop := v.Property
				uri.Path = append(uri.Path, specmodel.UriSegment{Variable: &prop})
			}
		}
	}

	if paramsNode, ok := uriParams(n); ok {
		obj, err := e.evalObjectLike(paramsNode, args)
		if err != nil {
			return value.Value{}, err
		}
		uri.Params = &obj
	}

	ann, err := gatherAnnotations(n)
	if err != nil {
		return value.Value{}, err
	}
	if ex, ok := ann.GetStr("example"); ok {
		uri.Example = ex
	}

	return value.Value{Kind: value.KindUri, Uri: uri, Annotation: ann}, nil
}
