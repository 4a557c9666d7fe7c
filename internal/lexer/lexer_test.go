package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := "let f x = res /pets on get -> <status: 200> str;\n" +
		"# description: a resource\n" +
		"use \"./other.oal\" as other;\n" +
		"rec self @node { 'id num }`media: text/plain`\n"

	tests := []struct {
		kind Kind
		text string
	}{
		{KeywordLet, "let"},
		{Ident, "f"},
		{Ident, "x"},
		{Equal, "="},
		{KeywordRes, "res"},
		{PathSegment, "/pets"},
		{KeywordOn, "on"},
		{MethodGet, "get"},
		{Arrow, "->"},
		{ChevronLeft, "<"},
		{ContentStatus, "status"},
		{Colon, ":"},
		{Number, "200"},
		{ChevronRight, ">"},
		{PrimitiveStr, "str"},
		{Semicolon, ";"},
		{AnnotationLine, "description: a resource"},
		{KeywordUse, "use"},
		{String, "./other.oal"},
		{KeywordAs, "as"},
		{Ident, "other"},
		{Semicolon, ";"},
		{KeywordRec, "rec"},
		{Ident, "self"},
		{IdentReference, "@node"},
		{BraceLeft, "{"},
		{Property, "id"},
		{PrimitiveNum, "num"},
		{BraceRight, "}"},
		{AnnotationInline, "media: text/plain"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("token %d: kind = %s, want %s (text %q)", i, tok.Kind, tt.kind, tok.Text)
		}
		if tok.Text != tt.text {
			t.Fatalf("token %d: text = %q, want %q", i, tok.Text, tt.text)
		}
	}
}

func TestHttpStatusVsNumber(t *testing.T) {
	l := New("4XX 42 5XXX")
	if tok := l.NextToken(); tok.Kind != HttpStatus || tok.Text != "4XX" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if tok := l.NextToken(); tok.Kind != Number || tok.Text != "42" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	// "5XXX" lexes as the status "5XX" followed by a dangling identifier "X".
	if tok := l.NextToken(); tok.Kind != HttpStatus || tok.Text != "5XX" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if tok := l.NextToken(); tok.Kind != Ident || tok.Text != "X" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
}

func TestPathRootAlone(t *testing.T) {
	l := New("/ /a/b")
	if tok := l.NextToken(); tok.Kind != PathRoot {
		t.Fatalf("got %v", tok.Kind)
	}
	if tok := l.NextToken(); tok.Kind != PathSegment || tok.Text != "/a" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
	if tok := l.NextToken(); tok.Kind != PathSegment || tok.Text != "/b" {
		t.Fatalf("got %v %q", tok.Kind, tok.Text)
	}
}

func TestComments(t *testing.T) {
	l := New("let // trailing\nx /* block\ncomment */ = 1")
	want := []Kind{KeywordLet, Ident, Equal, Number, EOF}
	for i, k := range want {
		tok := l.NextToken()
		if tok.Kind != k {
			t.Fatalf("token %d: got %v, want %v", i, tok.Kind, k)
		}
	}
}
