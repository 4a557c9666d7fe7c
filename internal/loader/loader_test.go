package loader

import (
	"fmt"
	"testing"

	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/syntax"
)

// fakeFS maps a locator string to source text; the "parse" step below reads
// import declarations from a tiny hand-built line format ("use <path>")
// rather than exercising a real lexer/parser, keeping this test independent
// of internal/lexer and internal/parser.
type fakeFS map[string][]string

func (fs fakeFS) load(loc locator.Locator) (string, error) {
	lines, ok := fs[loc.String()]
	if !ok {
		return "", fmt.Errorf("no such module: %s", loc)
	}
	text := ""
	for _, l := range lines {
		text += l + "\n"
	}
	return text, nil
}

func (fs fakeFS) parse(loc locator.Locator, text string) (*syntax.Tree, error) {
	tree := syntax.NewTree(loc)
	var children []*syntax.Node
	for _, line := range fs[loc.String()] {
		children = append(children, tree.New(syntax.Import, locator.Span{}, syntax.Token{Text: line}))
	}
	root := tree.New(syntax.Program, locator.Span{}, syntax.Token{}, children...)
	tree.SetRoot(root)
	return tree, nil
}

func mustLoc(t *testing.T, s string) locator.Locator {
	t.Helper()
	l, err := locator.New(s)
	if err != nil {
		t.Fatalf("locator.New(%q): %v", s, err)
	}
	return l
}

func TestDiscoverFollowsTransitiveImports(t *testing.T) {
	fs := fakeFS{
		"file:///a.oal": {"b.oal", "c.oal"},
		"file:///b.oal": {"c.oal"},
		"file:///c.oal": nil,
	}
	l := New(fs.load, fs.parse)

	set, edges, err := l.Discover(mustLoc(t, "file:///a.oal"))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 modules, got %d", set.Len())
	}
	if len(edges["file:///a.oal"]) != 2 {
		t.Errorf("expected a.oal to have 2 edges, got %d", len(edges["file:///a.oal"]))
	}

	order, err := TopoOrder(set, edges)
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	pos := make(map[string]int)
	for i, loc := range order {
		pos[loc.String()] = i
	}
	if pos["file:///c.oal"] > pos["file:///b.oal"] || pos["file:///b.oal"] > pos["file:///a.oal"] {
		t.Errorf("expected order c, b, a; got %v", order)
	}
}

// TestDiscoverResolvesTransitiveImportsAgainstBase puts b.oal in a
// subdirectory of the base module and has it import a sibling "c.oal" by a
// path relative to the base locator (spec.md §4.1: "resolve each import's
// relative path against the base locator (never the importing module)").
// Resolving "c.oal" against b.oal's own directory instead of the base would
// look for it at file:///sub/c.oal, which doesn't exist in this fixture.
func TestDiscoverResolvesTransitiveImportsAgainstBase(t *testing.T) {
	fs := fakeFS{
		"file:///a.oal":     {"sub/b.oal"},
		"file:///sub/b.oal": {"c.oal"},
		"file:///c.oal":     nil,
	}
	l := New(fs.load, fs.parse)

	set, _, err := l.Discover(mustLoc(t, "file:///a.oal"))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 modules, got %d", set.Len())
	}
	if _, ok := set.Get(mustLoc(t, "file:///c.oal")); !ok {
		t.Errorf("expected c.oal to be resolved against the base locator, not sub/b.oal's directory")
	}
}

func TestDiscoverMissingModule(t *testing.T) {
	fs := fakeFS{"file:///a.oal": {"missing.oal"}}
	l := New(fs.load, fs.parse)

	_, _, err := l.Discover(mustLoc(t, "file:///a.oal"))
	if err == nil {
		t.Fatal("expected an error for a missing dependency")
	}
	if kind, ok := errors.KindOf(err); !ok || kind != errors.ModuleNotFound {
		t.Errorf("expected ModuleNotFound, got %v (ok=%v)", kind, ok)
	}
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	fs := fakeFS{
		"file:///a.oal": {"b.oal"},
		"file:///b.oal": {"a.oal"},
	}
	l := New(fs.load, fs.parse)

	set, edges, err := l.Discover(mustLoc(t, "file:///a.oal"))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	_, err = TopoOrder(set, edges)
	if err == nil {
		t.Fatal("expected CycleDetected")
	}
	if kind, ok := errors.KindOf(err); !ok || kind != errors.CycleDetected {
		t.Errorf("expected CycleDetected, got %v (ok=%v)", kind, ok)
	}
}
