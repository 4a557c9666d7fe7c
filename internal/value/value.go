// Package value defines the tagged union the evaluator produces while
// walking the syntax tree (spec.md §4.7): one of Prim, Uri, Relation,
// Array, Object, Property, Content, Transfer, VariadicOp, Reference, or a
// bare Literal, each carrying an accumulated Annotation. It sits below
// both internal/eval and internal/stdlib so neither has to import the
// other.
package value

import (
	"fmt"

	"github.com/oalang/apic/internal/annotation"
	"github.com/oalang/apic/internal/atom"
	"github.com/oalang/apic/internal/specmodel"
)

// Kind discriminates Value's variants.
type Kind int

const (
	KindPrim Kind = iota
	KindUri
	KindRelation
	KindArray
	KindObject
	KindProperty
	KindContent
	KindTransfer
	KindOp
	KindReference
	KindLiteralNumber
	KindLiteralText
	KindLiteralStatus
)

// Value is the result of evaluating one syntax node; exactly one payload
// field is meaningful, selected by Kind.
type Value struct {
	Kind       Kind
	Annotation annotation.Annotation

	Prim          atom.Primitive
	Uri           specmodel.Uri
	Relation      specmodel.Relation
	Array         specmodel.Array
	Object        specmodel.Object
	Property      specmodel.Property
	Content       specmodel.Content
	Transfer      specmodel.Transfer
	Op            specmodel.VariadicOp
	Reference     string
	LiteralNumber float64
	LiteralText   string
	LiteralStatus atom.HttpStatus
}

// str returns a recognized-key annotation value as a string, empty if
// absent.
func (v Value) str(key string) string {
	s, _ := v.Annotation.GetStr(key)
	return s
}

// boolPtr returns a recognized-key annotation value as a *bool, nil if
// absent.
func (v Value) boolPtr(key string) *bool {
	b, ok := v.Annotation.GetBool(key)
	if !ok {
		return nil
	}
	return &b
}

func (v Value) examples() map[string]string {
	m, _ := v.Annotation.GetProps("examples")
	return m
}

// ToSchema converts a schema-like Value (Prim, Relation, Uri, Array,
// Object, Op, or Reference) into a specmodel.Schema, pulling description,
// title and required-ness from the accumulated annotation.
func ToSchema(v Value) (specmodel.Schema, error) {
	s := specmodel.Schema{
		Desc:     v.str("description"),
		Title:    v.str("title"),
		Required: v.boolPtr("required"),
		Examples: v.examples(),
	}
	switch v.Kind {
	case KindPrim:
		s.Expr = primExpr(v)
	case KindRelation:
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprRel, Rel: &v.Relation}
	case KindUri:
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprUri, Uri: v.Uri}
	case KindArray:
		arr := v.Array
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprArray, Array: &arr}
	case KindObject:
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprObject, Object: v.Object}
	case KindOp:
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprOp, Op: v.Op}
	case KindReference:
		s.Expr = specmodel.SchemaExpr{Kind: specmodel.ExprRef, Ref: v.Reference}
	default:
		return specmodel.Schema{}, fmt.Errorf("value of kind %d is not a schema", v.Kind)
	}
	return s, nil
}

func primExpr(v Value) specmodel.SchemaExpr {
	switch v.Prim {
	case atom.Number:
		num := specmodel.PrimNumber{
			Minimum:    numPtr(v, "minimum"),
			Maximum:    numPtr(v, "maximum"),
			MultipleOf: numPtr(v, "multipleOf"),
			Example:    numPtr(v, "example"),
		}
		return specmodel.SchemaExpr{Kind: specmodel.ExprNum, Num: num}
	case atom.Integer:
		toInt := func(f *float64) *int64 {
			if f == nil {
				return nil
			}
			i := int64(*f)
			return &i
		}
		str := specmodel.PrimInteger{
			Minimum:    toInt(numPtr(v, "minimum")),
			Maximum:    toInt(numPtr(v, "maximum")),
			MultipleOf: toInt(numPtr(v, "multipleOf")),
			Example:    toInt(numPtr(v, "example")),
		}
		return specmodel.SchemaExpr{Kind: specmodel.ExprInt, Int: str}
	case atom.Boolean:
		return specmodel.SchemaExpr{Kind: specmodel.ExprBool, Bool: specmodel.PrimBoolean{}}
	default: // atom.String
		enum, _ := v.Annotation.GetEnum("enum")
		str := specmodel.PrimString{
			Pattern:     v.str("pattern"),
			Enumeration: enum,
			Format:      v.str("format"),
			Example:     v.str("example"),
		}
		return specmodel.SchemaExpr{Kind: specmodel.ExprStr, Str: str}
	}
}

func numPtr(v Value, key string) *float64 {
	f, ok := v.Annotation.GetNum(key)
	if !ok {
		return nil
	}
	return &f
}
