// Package specmodel is the normalized output of evaluation (spec.md §4.6):
// a full Spec value with relations keyed by URI pattern, references keyed
// by identifier, and the recursive Schema/SchemaExpr tree describing every
// body, parameter and header object in the API description. Grounded on
// OAL's spec.rs, translating its IndexMap/EnumMap usage into
// wk8/go-ordered-map/v2 and a plain Method-keyed map respectively (no
// enum-map library exists anywhere in the corpus, and Method is a 7-value
// closed set, so a map is the narrowest faithful substitute).
package specmodel

import (
	"fmt"
	"strings"

	om "github.com/wk8/go-ordered-map/v2"

	"github.com/oalang/apic/internal/atom"
)

// UriSegment is one element of a Uri's path: either a literal path element
// or a variable bound to a Property.
type UriSegment struct {
	Literal  string
	Variable *Property
}

// IsEmpty reports whether the segment is an empty literal (a trailing
// slash placeholder).
func (s UriSegment) IsEmpty() bool {
	return s.Variable == nil && s.Literal == ""
}

// Uri is a URI template: a sequence of path segments plus optional query
// parameters.
type Uri struct {
	Path    []UriSegment
	Params  *Object
	Example string
}

// Append moves other's path segments onto the end of u, replacing u's
// params with other's and clearing any example (OAL's Uri::append).
func (u *Uri) Append(other Uri) {
	if n := len(u.Path); n > 0 && u.Path[n-1].IsEmpty() {
		u.Path = u.Path[:n-1]
	}
	u.Path = append(u.Path, other.Path...)
	u.Params = other.Params
	u.Example = ""
}

// Pattern renders the URI template using `{name}` placeholders for every
// variable segment.
func (u Uri) Pattern() string {
	return u.PatternWith(func(p *Property) string {
		return "{" + p.Name + "}"
	})
}

// PatternWith renders the URI template, formatting each variable segment
// with f.
func (u Uri) PatternWith(f func(*Property) string) string {
	var b strings.Builder
	for _, seg := range u.Path {
		b.WriteByte('/')
		if seg.Variable != nil {
			b.WriteString(f(seg.Variable))
		} else {
			b.WriteString(seg.Literal)
		}
	}
	return b.String()
}

// Array is a homogeneous list schema.
type Array struct {
	Item Schema
}

// VariadicOp is a join, alternative, or range combination of schemas.
type VariadicOp struct {
	Op      atom.Operator
	Schemas []Schema
}

// Schema wraps a SchemaExpr with the descriptive metadata every schema
// position can carry.
type Schema struct {
	Expr     SchemaExpr
	Desc     string
	Title    string
	Required *bool
	Examples map[string]string
}

// PrimNumber is a constrained numeric primitive.
type PrimNumber struct {
	Minimum, Maximum, MultipleOf, Example *float64
}

// PrimString is a constrained string primitive.
type PrimString struct {
	Pattern     string
	Enumeration []string
	Format      string
	Example     string
}

// PrimBoolean is the boolean primitive; it carries no constraints.
type PrimBoolean struct{}

// PrimInteger is a constrained integer primitive.
type PrimInteger struct {
	Minimum, Maximum, MultipleOf, Example *int64
}

// SchemaExprKind discriminates SchemaExpr's variants.
type SchemaExprKind int

const (
	ExprNum SchemaExprKind = iota
	ExprStr
	ExprBool
	ExprInt
	ExprRel
	ExprUri
	ExprArray
	ExprObject
	ExprOp
	ExprRef
)

// SchemaExpr is the recursive body of a Schema: exactly one field is
// meaningful, selected by Kind.
type SchemaExpr struct {
	Kind   SchemaExprKind
	Num    PrimNumber
	Str    PrimString
	Bool   PrimBoolean
	Int    PrimInteger
	Rel    *Relation
	Uri    Uri
	Array  *Array
	Object Object
	Op     VariadicOp
	Ref    string
}

// Property is one named member of an Object.
type Property struct {
	Name     string
	Schema   Schema
	Desc     string
	Required *bool
}

// Object is an unordered-by-spec, insertion-ordered-in-practice set of
// named properties.
type Object struct {
	Props []Property
}

// MediaType is a MIME type string, e.g. "application/json".
type MediaType = string

// Content is one labeled body: an optional schema plus the status, media
// type and headers it is associated with in a transfer's range.
type Content struct {
	Schema   *Schema
	Status   *atom.HttpStatus
	Media    string
	Headers  *Object
	Desc     string
	Examples map[string]string
}

// ContentFromSchema builds a bare Content wrapping a Schema, as happens
// when a transfer's domain or range is given directly as a schema
// expression rather than an explicit content block.
func ContentFromSchema(s Schema) Content {
	return Content{Schema: &s, Desc: s.Desc}
}

// RangeKey is a Ranges key: the (status, media type) pair a Content is
// filed under.
type RangeKey struct {
	Status *atom.HttpStatus
	Media  string
}

// Ranges is the ordered map from (status, media) to Content, preserving
// declaration order the way OAL's IndexMap does.
type Ranges = *om.OrderedMap[RangeKey, Content]

// NewRanges creates an empty Ranges map.
func NewRanges() Ranges { return om.New[RangeKey, Content]() }

// Transfer is one HTTP method's handling of a relation: its parameter,
// domain and range schemas plus descriptive metadata.
type Transfer struct {
	Methods map[atom.Method]bool
	Domain  Content
	Ranges  Ranges
	Params  *Object
	Desc    string
	Summary string
	Tags    []string
	ID      string
}

// Transfers maps each HTTP method to the Transfer handling it, absent for
// methods the relation does not support.
type Transfers map[atom.Method]*Transfer

// NewTransfers creates an empty Transfers map.
func NewTransfers() Transfers { return make(Transfers) }

// Relation pairs a URI template with the transfers available on it.
type Relation struct {
	Uri   Uri
	Xfers Transfers
}

// RelationFromUri builds a bare Relation with no transfers yet, as happens
// when a URI template is evaluated standalone before resources attach
// transfers to it.
func RelationFromUri(uri Uri) Relation {
	return Relation{Uri: uri, Xfers: NewTransfers()}
}

// Reference is a named, reusable schema exposed at the top level of a
// Spec, derived from a `@`-prefixed declaration.
type Reference struct {
	Schema Schema
}

// PathPattern is a Relations key: a Uri's rendered pattern string.
type PathPattern = string

// Relations is the ordered map from path pattern to Relation.
type Relations = *om.OrderedMap[PathPattern, Relation]

// NewRelations creates an empty Relations map.
func NewRelations() Relations { return om.New[PathPattern, Relation]() }

// References is the ordered map from identifier to Reference.
type References = *om.OrderedMap[string, Reference]

// NewReferences creates an empty References map.
func NewReferences() References { return om.New[string, Reference]() }

// Spec is the fully evaluated, normalized API description: every resource
// merged into its Relations entry, keyed by rendered URI pattern, plus
// every top-level schema reference.
type Spec struct {
	Rels Relations
	Refs References
}

// New creates an empty Spec.
func New() *Spec {
	return &Spec{Rels: NewRelations(), Refs: NewReferences()}
}

func (k RangeKey) String() string {
	status := "*"
	if k.Status != nil {
		status = k.Status.String()
	}
	media := k.Media
	if media == "" {
		media = "*"
	}
	return fmt.Sprintf("(%s, %s)", status, media)
}
