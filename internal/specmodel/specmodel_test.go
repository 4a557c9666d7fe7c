package specmodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestUriAppendSuppressesTrailingEmptySegment exercises the stdlib concat
// internal's underlying primitive: appending a Uri onto another drops the
// left operand's trailing empty placeholder segment and takes the right
// operand's params, per spec.md §4.8 and oal-compiler/src/spec.rs's
// Uri::append. go-cmp gives a readable structural diff on mismatch instead
// of a single "not equal" line, which matters here since a mismatch is
// almost always an off-by-one in which segment got dropped.
func TestUriAppendSuppressesTrailingEmptySegment(t *testing.T) {
	left := Uri{Path: []UriSegment{{Literal: "pets"}, {Literal: ""}}}
	idProp := Property{Name: "id"}
	right := Uri{Path: []UriSegment{{Variable: &idProp}}}

	left.Append(right)

	want := Uri{Path: []UriSegment{{Literal: "pets"}, {Variable: &idProp}}}
	if diff := cmp.Diff(want, left); diff != "" {
		t.Errorf("Append result mismatch (-want +got):\n%s", diff)
	}
}

// TestUriAppendKeepsNonEmptyTrailingSegment checks the suppression is
// specific to an empty trailing literal, not a blanket drop of the left
// operand's last segment.
func TestUriAppendKeepsNonEmptyTrailingSegment(t *testing.T) {
	left := Uri{Path: []UriSegment{{Literal: "pets"}}}
	right := Uri{Path: []UriSegment{{Literal: "owners"}}}

	left.Append(right)

	want := Uri{Path: []UriSegment{{Literal: "pets"}, {Literal: "owners"}}}
	if diff := cmp.Diff(want, left); diff != "" {
		t.Errorf("Append result mismatch (-want +got):\n%s", diff)
	}
}

func TestUriPatternRendersVariablesAsBraces(t *testing.T) {
	idProp := Property{Name: "id"}
	u := Uri{Path: []UriSegment{{Literal: "pets"}, {Variable: &idProp}}}
	if got, want := u.Pattern(), "/pets/{id}"; got != want {
		t.Errorf("Pattern() = %q, want %q", got, want)
	}
}
