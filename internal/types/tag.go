// Package types implements the Tag lattice used for inference: a closed set
// of structural kinds (no user-level polymorphism beyond the fixed shapes
// the source language allows), unified via a union-find over Tag values,
// following the same design as the teacher's internal/types unification
// package and OAL's inference::{tag,union,unify} modules.
package types

import (
	"fmt"
	"strings"

	"github.com/oalang/apic/internal/locator"
)

// Kind distinguishes the non-parametric Tag variants.
type Kind int

const (
	Text Kind = iota
	Number
	Status
	Primitive
	Relation
	Object
	Content
	Transfer
	Array
	Uri
	Any
	PropertyKind
	Func
	VarKind
)

// TagID identifies a fresh type variable. Its Loc makes variables allocated
// in distinct modules distinguishable even if their sequence numbers
// collide, mirroring OAL's per-module Seq.
type TagID struct {
	Loc locator.Locator
	N   int
}

func (t TagID) String() string {
	return fmt.Sprintf("%s$%d", t.Loc, t.N)
}

// FuncTag is the shape of a Func tag: positional parameter tags plus a
// result tag.
type FuncTag struct {
	Bindings []Tag
	Range    *Tag
}

// Tag is the inferred kind of an expression node. Exactly one of the fields
// below is meaningful, selected by Kind.
type Tag struct {
	Kind     Kind
	Property *Tag     // valid when Kind == PropertyKind
	Func     *FuncTag // valid when Kind == Func
	Var      TagID    // valid when Kind == VarKind
}

// Constructors for the non-parametric tags, reused across the compiler so
// nobody constructs a stray Tag{Kind: X} with a spurious Property/Func/Var
// side filled in by accident.
var (
	TText      = Tag{Kind: Text}
	TNumber    = Tag{Kind: Number}
	TStatus    = Tag{Kind: Status}
	TPrimitive = Tag{Kind: Primitive}
	TRelation  = Tag{Kind: Relation}
	TObject    = Tag{Kind: Object}
	TContent   = Tag{Kind: Content}
	TTransfer  = Tag{Kind: Transfer}
	TArray     = Tag{Kind: Array}
	TUri       = Tag{Kind: Uri}
	TAny       = Tag{Kind: Any}
)

// TProperty builds a Property(inner) tag.
func TProperty(inner Tag) Tag {
	return Tag{Kind: PropertyKind, Property: &inner}
}

// TFunc builds a Func tag with the given parameter tags and result tag.
func TFunc(bindings []Tag, result Tag) Tag {
	return Tag{Kind: Func, Func: &FuncTag{Bindings: bindings, Range: &result}}
}

// TVar builds a fresh type-variable tag.
func TVar(id TagID) Tag {
	return Tag{Kind: VarKind, Var: id}
}

// IsVariable reports whether t is an unresolved type variable.
func (t Tag) IsVariable() bool {
	return t.Kind == VarKind
}

// IsSchema reports whether t can stand for a JSON schema shape on its own
// (spec.md §3: is_schema).
func (t Tag) IsSchema() bool {
	switch t.Kind {
	case Primitive, Relation, Object, Array, Uri, Any:
		return true
	default:
		return false
	}
}

// IsSchemaLike additionally accepts Content envelopes (spec.md §3: is_schema_like).
func (t Tag) IsSchemaLike() bool {
	return t.Kind == Content || t.IsSchema()
}

// IsStatusLike accepts either a literal HTTP status or a bare number
// (spec.md §3: is_status_like).
func (t Tag) IsStatusLike() bool {
	return t.Kind == Status || t.Kind == Number
}

// IsRelationLike accepts a Relation or a bare Uri (spec.md §3: is_relation_like).
func (t Tag) IsRelationLike() bool {
	return t.Kind == Relation || t.Kind == Uri
}

// Equal performs structural equality, the notion of equality the union-find
// keys its disjoint sets on.
func (t Tag) Equal(o Tag) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case PropertyKind:
		return t.Property.Equal(*o.Property)
	case Func:
		if len(t.Func.Bindings) != len(o.Func.Bindings) {
			return false
		}
		for i := range t.Func.Bindings {
			if !t.Func.Bindings[i].Equal(o.Func.Bindings[i]) {
				return false
			}
		}
		return t.Func.Range.Equal(*o.Func.Range)
	case VarKind:
		return t.Var == o.Var
	default:
		return true
	}
}

// key renders a Tag into a string that is unique per structural value, used
// as the union-find's hash key (mirrors the Rust implementation keying an
// IndexSet<Tag> on Eq+Hash of the structural Tag).
func (t Tag) key() string {
	return t.String()
}

func (t Tag) String() string {
	switch t.Kind {
	case Text:
		return "text"
	case Number:
		return "number"
	case Status:
		return "http status"
	case Primitive:
		return "primitive"
	case Relation:
		return "relation"
	case Object:
		return "object"
	case Content:
		return "content"
	case Transfer:
		return "transfer"
	case Array:
		return "array"
	case Uri:
		return "uri"
	case Any:
		return "any"
	case PropertyKind:
		return fmt.Sprintf("property[%s]", t.Property)
	case Func:
		var b strings.Builder
		for _, p := range t.Func.Bindings {
			fmt.Fprintf(&b, "%s -> ", p)
		}
		fmt.Fprintf(&b, "%s", t.Func.Range)
		return fmt.Sprintf("function[%s]", b.String())
	case VarKind:
		return fmt.Sprintf("<unknown %s>", t.Var)
	default:
		return "?"
	}
}

// Seq allocates fresh type variables for one module's inference pass, each
// carrying the module's locator so variables from distinct modules never
// collide (spec.md §4.4).
type Seq struct {
	loc locator.Locator
	n   int
}

// NewSeq creates a sequence of tag variables scoped to loc.
func NewSeq(loc locator.Locator) *Seq {
	return &Seq{loc: loc}
}

// Next allocates the next fresh TagID.
func (s *Seq) Next() TagID {
	id := TagID{Loc: s.loc, N: s.n}
	s.n++
	return id
}

// Len returns how many variables have been allocated so far.
func (s *Seq) Len() int {
	return s.n
}
