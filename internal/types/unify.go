package types

import (
	"fmt"

	"github.com/oalang/apic/internal/locator"
)

// UnionFind is a disjoint-set structure over Tag values, keyed on structural
// equality (via Tag.key()), with path compression. Representatives are
// chosen by insertion order: whichever side of a union was inserted second
// (the "right" operand) always ends up representing the merged class,
// matching OAL's union::UnionFind.union.
type UnionFind struct {
	order   []Tag
	indexOf map[string]int
	parents []int
}

// NewUnionFind creates an empty union-find.
func NewUnionFind() *UnionFind {
	return &UnionFind{indexOf: make(map[string]int)}
}

func (u *UnionFind) insert(t Tag) int {
	k := t.key()
	if i, ok := u.indexOf[k]; ok {
		return i
	}
	i := len(u.order)
	u.order = append(u.order, t)
	u.parents = append(u.parents, i)
	u.indexOf[k] = i
	return i
}

func (u *UnionFind) reduceMut(v int) int {
	w := v
	for u.parents[w] != w {
		w = u.parents[w]
	}
	u.parents[v] = w
	return w
}

func (u *UnionFind) reduce(v int) int {
	for u.parents[v] != v {
		v = u.parents[v]
	}
	return v
}

// Union merges the classes of left and right; right's representative always
// wins.
func (u *UnionFind) Union(left, right Tag) {
	v := u.insert(left)
	w := u.insert(right)
	vrep := u.reduceMut(v)
	wrep := u.reduceMut(w)
	u.parents[vrep] = wrep
}

// Find returns the representative Tag of t's class and whether a reduction
// actually happened (false if t was never inserted, or is already its own
// representative).
func (u *UnionFind) Find(t Tag) (Tag, bool) {
	i, ok := u.indexOf[t.key()]
	if !ok {
		return Tag{}, false
	}
	rep := u.reduce(i)
	return u.order[rep], rep != i
}

// Reduce fully reduces a Tag according to the union-find's classes,
// recursing into Func and Property so compound tags reflect the
// representative of each of their parts.
func Reduce(u *UnionFind, t Tag) Tag {
	switch t.Kind {
	case VarKind:
		if rep, reduced := u.Find(t); reduced {
			return Reduce(u, rep)
		}
		return t
	case Func:
		bindings := make([]Tag, len(t.Func.Bindings))
		for i, b := range t.Func.Bindings {
			bindings[i] = Reduce(u, b)
		}
		rng := Reduce(u, *t.Func.Range)
		return TFunc(bindings, rng)
	case PropertyKind:
		return TProperty(Reduce(u, *t.Property))
	default:
		return t
	}
}

func occurs(a, b Tag) bool {
	if !a.IsVariable() {
		panic("occurs: a must be a type variable")
	}
	if a.Equal(b) {
		return true
	}
	if b.Kind == Func {
		if occurs(a, *b.Func.Range) {
			return true
		}
		for _, binding := range b.Func.Bindings {
			if occurs(a, binding) {
				return true
			}
		}
	}
	return false
}

// MismatchError reports a failed unification equation.
type MismatchError struct {
	Message string
	Left    Tag
	Right   Tag
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s vs %s", e.Message, e.Left, e.Right)
}

// Unify attempts to merge left and right's classes, failing with
// *MismatchError on an incompatible shape or a recursive-type occurs-check
// violation (spec.md §4.4).
func Unify(u *UnionFind, left, right Tag) error {
	left = Reduce(u, left)
	right = Reduce(u, right)

	if left.Equal(right) {
		return nil
	}

	if left.Kind == VarKind {
		if occurs(left, right) {
			return &MismatchError{Message: "recursive type", Left: left, Right: right}
		}
		u.Union(left, right)
		return nil
	}
	if right.Kind == VarKind {
		if occurs(right, left) {
			return &MismatchError{Message: "recursive type", Left: right, Right: left}
		}
		u.Union(right, left)
		return nil
	}
	if left.Kind == Func && right.Kind == Func {
		if len(left.Func.Bindings) != len(right.Func.Bindings) {
			return &MismatchError{Message: "function arity mismatch", Left: left, Right: right}
		}
		if err := Unify(u, *left.Func.Range, *right.Func.Range); err != nil {
			return err
		}
		for i := range left.Func.Bindings {
			if err := Unify(u, left.Func.Bindings[i], right.Func.Bindings[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if left.Kind == PropertyKind && right.Kind == PropertyKind {
		return Unify(u, *left.Property, *right.Property)
	}
	return &MismatchError{Message: "type mismatch", Left: left, Right: right}
}

// Equation is one type-inference constraint: left and right must unify.
type Equation struct {
	Left  Tag
	Right Tag
	Span  *locator.Span
}

// EquationSet accumulates equations generated during constraint generation
// (spec.md §4.4) and unifies them all in order.
type EquationSet struct {
	eqs []Equation
}

// NewEquationSet creates an empty equation set.
func NewEquationSet() *EquationSet {
	return &EquationSet{}
}

// Push records one equation.
func (s *EquationSet) Push(left, right Tag, span *locator.Span) {
	s.eqs = append(s.eqs, Equation{Left: left, Right: right, Span: span})
}

// Len reports how many equations have been pushed.
func (s *EquationSet) Len() int {
	return len(s.eqs)
}

// Unify runs every equation through Unify in order, returning the union-find
// built so far and the first failing equation's error, with its span
// attached.
func (s *EquationSet) Unify() (*UnionFind, error) {
	u := NewUnionFind()
	for _, eq := range s.eqs {
		if err := Unify(u, eq.Left, eq.Right); err != nil {
			if me, ok := err.(*MismatchError); ok && eq.Span != nil {
				return u, &SpannedMismatchError{MismatchError: me, Span: eq.Span}
			}
			return u, err
		}
	}
	return u, nil
}

// SpannedMismatchError is a MismatchError with its originating equation's
// span attached for diagnostics.
type SpannedMismatchError struct {
	*MismatchError
	Span *locator.Span
}
