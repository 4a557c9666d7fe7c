package annotation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeepExtendMergesMapsConcatenatesSequencesOverwritesScalars(t *testing.T) {
	a, err := ParseFrom(`a: { x: 0 }, b: 1, c: [1]`)
	require.NoError(t, err)

	b, err := ParseFrom(`a: { y: 0 }, b: 2, c: [2]`)
	require.NoError(t, err)

	a.Extend(b)

	inner, ok := a.GetProps("a")
	require.True(t, ok)
	require.Equal(t, "0", inner["x"])
	require.Equal(t, "0", inner["y"])

	bVal, ok := a.GetInt("b")
	require.True(t, ok)
	require.Equal(t, int64(2), bVal)

	c, ok := a.GetEnum("c")
	require.True(t, ok)
	require.ElementsMatch(t, []string{"1", "2"}, c)
}

func TestGetStrAndGetBool(t *testing.T) {
	a, err := ParseFrom(`title: "Pets API", deprecated: true`)
	require.NoError(t, err)

	title, ok := a.GetStr("title")
	require.True(t, ok)
	require.Equal(t, "Pets API", title)

	dep, ok := a.GetBool("deprecated")
	require.True(t, ok)
	require.True(t, dep)
}
