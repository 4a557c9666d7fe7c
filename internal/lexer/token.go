package lexer

import "fmt"

// Kind classifies a lexeme. Grounded on OAL's lexer.rs TokenKind enum,
// minus the trivia variants (Space/CommentLine/CommentBlock), which this
// lexer skips internally instead of surfacing to the parser.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident          // value
	IdentReference // @value
	Property       // 'value
	Number         // 123
	String         // "..."
	HttpStatus     // 4XX
	PathRoot       // /
	PathSegment    // /abc

	PrimitiveNum
	PrimitiveStr
	PrimitiveUri
	PrimitiveBool
	PrimitiveInt

	MethodGet
	MethodPut
	MethodPost
	MethodPatch
	MethodDelete
	MethodOptions
	MethodHead

	ContentMedia
	ContentHeaders
	ContentStatus

	KeywordLet
	KeywordRes
	KeywordUse
	KeywordAs
	KeywordOn
	KeywordRec

	BraceLeft
	BraceRight
	ParenLeft
	ParenRight
	BracketLeft
	BracketRight
	ChevronLeft
	ChevronRight
	Semicolon
	FullStop
	Comma

	Bang
	Question
	Ampersand
	Tilde
	VerticalBar
	Equal
	Colon
	DoubleColon
	Arrow

	AnnotationLine
	AnnotationInline
)

var kindNames = map[Kind]string{
	EOF: "eof", Illegal: "illegal",
	Ident: "identifier", IdentReference: "identifier reference", Property: "property",
	Number: "number", String: "string", HttpStatus: "http status",
	PathRoot: "/", PathSegment: "path segment",
	PrimitiveNum: "num", PrimitiveStr: "str", PrimitiveUri: "uri", PrimitiveBool: "bool", PrimitiveInt: "int",
	MethodGet: "get", MethodPut: "put", MethodPost: "post", MethodPatch: "patch",
	MethodDelete: "delete", MethodOptions: "options", MethodHead: "head",
	ContentMedia: "media", ContentHeaders: "headers", ContentStatus: "status",
	KeywordLet: "let", KeywordRes: "res", KeywordUse: "use", KeywordAs: "as", KeywordOn: "on", KeywordRec: "rec",
	BraceLeft: "{", BraceRight: "}", ParenLeft: "(", ParenRight: ")",
	BracketLeft: "[", BracketRight: "]", ChevronLeft: "<", ChevronRight: ">",
	Semicolon: ";", FullStop: ".", Comma: ",",
	Bang: "!", Question: "?", Ampersand: "&", Tilde: "~", VerticalBar: "|",
	Equal: "=", Colon: ":", DoubleColon: "::", Arrow: "->",
	AnnotationLine: "annotation", AnnotationInline: "inline annotation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps every reserved word, including the primitive, method and
// content-tag names, to its Kind. Anything not in this table lexes as a
// plain Ident.
var keywords = map[string]Kind{
	"let": KeywordLet, "res": KeywordRes, "use": KeywordUse,
	"as": KeywordAs, "on": KeywordOn, "rec": KeywordRec,
	"num": PrimitiveNum, "str": PrimitiveStr, "uri": PrimitiveUri,
	"bool": PrimitiveBool, "int": PrimitiveInt,
	"get": MethodGet, "put": MethodPut, "post": MethodPost, "patch": MethodPatch,
	"delete": MethodDelete, "options": MethodOptions, "head": MethodHead,
	"media": ContentMedia, "headers": ContentHeaders, "status": ContentStatus,
}

// Token is one lexeme: its kind, the literal text it matched (stripped of
// any surrounding delimiter for Property/IdentReference/String/
// AnnotationInline), and the byte/line/column range it occupies.
type Token struct {
	Kind       Kind
	Text       string
	Start, End Pos
}

// Pos is a position within the source text being lexed, independent of
// locator.Pos so this package has no dependency on internal/locator --
// the parser converts to locator.Pos once it knows which file it's
// attributing spans to.
type Pos struct {
	Line   int
	Column int
	Offset int
}
