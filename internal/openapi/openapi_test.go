package openapi

import (
	"strings"
	"testing"

	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/specmodel"
)

func ptrBool(b bool) *bool { return &b }

func strSchema(pattern string) specmodel.Schema {
	return specmodel.Schema{Expr: specmodel.SchemaExpr{Kind: specmodel.ExprStr, Str: specmodel.PrimString{Pattern: pattern}}}
}

func objSchema(props ...specmodel.Property) specmodel.Schema {
	return specmodel.Schema{Expr: specmodel.SchemaExpr{Kind: specmodel.ExprObject, Object: specmodel.Object{Props: props}}}
}

func buildSpec() *specmodel.Spec {
	spec := specmodel.New()

	idProp := specmodel.Property{Name: "id", Schema: strSchema("^[a-z]{3}$"), Required: ptrBool(true)}
	uri := specmodel.Uri{
		Path: []specmodel.UriSegment{
			{Literal: "pets"},
			{Variable: &idProp},
		},
	}

	getXfer := &specmodel.Transfer{
		Methods: map[atom.Method]bool{atom.Get: true},
		ID:      "getPet",
		Ranges:  specmodel.NewRanges(),
	}
	status := atom.StatusCode(200)
	getXfer.Ranges.Set(specmodel.RangeKey{Status: &status, Media: "application/json"}, specmodel.Content{
		Schema: ref(objSchema(specmodel.Property{Name: "name", Schema: strSchema("")})),
		Media:  "application/json",
		Status: &status,
	})

	rel := specmodel.RelationFromUri(uri)
	rel.Xfers[atom.Get] = getXfer
	spec.Rels.Set(uri.Pattern(), rel)

	return spec
}

func ref(s specmodel.Schema) *specmodel.Schema { return &s }

func TestRenderProducesPathsAndOperations(t *testing.T) {
	spec := buildSpec()
	out, err := Marshal(spec, Info{Title: "Pets", Version: "1.0.0"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc := string(out)

	for _, want := range []string{"openapi: 3.0.3", "/pets/{id}", "get:", "operationId: getPet", "responses:", "\"200\":"} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected document to contain %q, got:\n%s", want, doc)
		}
	}
}

func TestSchemaNodeObjectWithRequired(t *testing.T) {
	s := objSchema(specmodel.Property{Name: "id", Schema: strSchema(""), Required: ptrBool(true)})
	n, err := schemaNode(s)
	if err != nil {
		t.Fatalf("schemaNode: %v", err)
	}
	if len(n.Content) == 0 {
		t.Fatalf("expected a populated mapping node")
	}
}

func TestExampleForUsesPatternFallback(t *testing.T) {
	s := strSchema("^[a-z]{5}$")
	ex, ok := exampleFor(s)
	if !ok {
		t.Fatal("expected a pattern-derived example")
	}
	if len(ex) != 5 {
		t.Errorf("expected a 5-character example for ^[a-z]{5}$, got %q", ex)
	}
}

func TestExampleForPrefersExplicitExample(t *testing.T) {
	s := specmodel.Schema{
		Expr:     specmodel.SchemaExpr{Kind: specmodel.ExprStr, Str: specmodel.PrimString{Pattern: "^[a-z]{5}$"}},
		Examples: map[string]string{"default": "hello"},
	}
	ex, ok := exampleFor(s)
	if !ok || ex != "hello" {
		t.Errorf("expected explicit example %q, got %q (ok=%v)", "hello", ex, ok)
	}
}

func TestOperatorNodeJoinMergesProperties(t *testing.T) {
	a := objSchema(specmodel.Property{Name: "a", Schema: strSchema("")})
	b := objSchema(specmodel.Property{Name: "b", Schema: strSchema("")})
	n, err := operatorNode(specmodel.VariadicOp{Op: atom.Join, Schemas: []specmodel.Schema{a, b}})
	if err != nil {
		t.Fatalf("operatorNode: %v", err)
	}
	found := false
	for i := 0; i+1 < len(n.Content); i++ {
		if n.Content[i].Value == "properties" {
			found = true
		}
	}
	if !found {
		t.Error("expected a merged properties key")
	}
}
