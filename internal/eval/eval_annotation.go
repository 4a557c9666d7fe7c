package eval

import (
	"github.com/oalang/apic/internal/annotation"
	"github.com/oalang/apic/internal/syntax"
)

// gatherAnnotations accumulates a node's own annotation lines, in source
// order, via deep_extend (spec.md §4.6). Annotations attach as zero or more
// Annotations-kind children alongside a node's other children (a
// Declaration's Bindings wrapper and rhs, or a Transfer/UriTemplate's other
// parts).
func gatherAnnotations(n *syntax.Node) (annotation.Annotation, error) {
	out := annotation.Empty()
	for _, c := range n.Children {
		if c.Kind != syntax.Annotations {
			continue
		}
		a, err := annotation.ParseFrom(c.Token.Text)
		if err != nil {
			return annotation.Annotation{}, err
		}
		out.Extend(a)
	}
	return out, nil
}

// inlineAnnotation returns a Terminal's trailing inline annotation, if any
// (spec.md §4.6: "plus an optional inline annotation on a Terminal").
func inlineAnnotation(n *syntax.Node) (annotation.Annotation, bool) {
	if len(n.Children) < 2 {
		return annotation.Annotation{}, false
	}
	last := n.Children[len(n.Children)-1]
	if last.Kind != syntax.Annotations {
		return annotation.Annotation{}, false
	}
	a, err := annotation.ParseFrom(last.Token.Text)
	if err != nil {
		return annotation.Annotation{}, false
	}
	return a, true
}
