package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oalang/apic/internal/locator"
)

func mustLoc(t *testing.T, s string) locator.Locator {
	t.Helper()
	l, err := locator.New(s)
	require.NoError(t, err)
	return l
}

func TestUnifyVariableWithPrimitive(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	seq := NewSeq(loc)
	v := TVar(seq.Next())

	set := NewEquationSet()
	set.Push(v, TPrimitive, nil)

	u, err := set.Unify()
	require.NoError(t, err)

	got := Reduce(u, v)
	require.True(t, got.Equal(TPrimitive))
}

func TestUnifyFunctionArityMismatch(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	seq := NewSeq(loc)
	v := TVar(seq.Next())

	set := NewEquationSet()
	set.Push(TFunc([]Tag{v}, v), TFunc([]Tag{TPrimitive, TPrimitive}, TPrimitive), nil)

	_, err := set.Unify()
	require.Error(t, err)
}

func TestOccursCheckRejectsRecursiveType(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	seq := NewSeq(loc)
	v := TVar(seq.Next())

	set := NewEquationSet()
	set.Push(v, TFunc([]Tag{TPrimitive}, v), nil)

	_, err := set.Unify()
	require.Error(t, err)
}

func TestReduceWalksTransitiveChain(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	seq := NewSeq(loc)
	a := TVar(seq.Next())
	b := TVar(seq.Next())

	u := NewUnionFind()
	require.NoError(t, Unify(u, a, b))
	require.NoError(t, Unify(u, b, TPrimitive))

	require.True(t, Reduce(u, a).Equal(TPrimitive))
}

func TestFuncArgumentsUnifyPointwise(t *testing.T) {
	loc := mustLoc(t, "file:///a.oal")
	seq := NewSeq(loc)
	x := TVar(seq.Next())

	set := NewEquationSet()
	// let f x = x; let b = f num;  =>  f : Var -> Var ~ Func{[Primitive], ResultVar}
	result := TVar(seq.Next())
	set.Push(TFunc([]Tag{x}, x), TFunc([]Tag{TPrimitive}, result), nil)

	u, err := set.Unify()
	require.NoError(t, err)
	require.True(t, Reduce(u, result).Equal(TPrimitive))
}
