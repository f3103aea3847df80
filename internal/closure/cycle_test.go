package closure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/model"
)

func rels(pairs ...[2]string) []model.Relation {
	out := make([]model.Relation, len(pairs))
	for i, p := range pairs {
		out[i] = model.Relation{From: p[0], To: p[1], Kind: "k"}
	}
	return out
}

func TestFindCycles_DAG(t *testing.T) {
	g := GraphOf(rels([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"}))
	assert.Empty(t, FindCycles("k", g))
}

func TestFindCycles_Empty(t *testing.T) {
	assert.Empty(t, FindCycles("k", Graph{}))
}

func TestFindCycles_SelfLoop(t *testing.T) {
	g := GraphOf(rels([2]string{"a", "a"}))
	reports := FindCycles("k", g)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"a", "a"}, reports[0].Path)
}

func TestFindCycles_TwoCycles(t *testing.T) {
	g := GraphOf(rels(
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
		[2]string{"x", "y"}, [2]string{"y", "x"},
		[2]string{"c", "x"},
	))
	reports := FindCycles("k", g)
	require.Len(t, reports, 2)

	assert.Equal(t, []string{"a", "b", "c", "a"}, reports[0].Path)
	assert.Equal(t, []string{"x", "y", "x"}, reports[1].Path)
	assert.Equal(t, `cycle in "k" relations: x → y → x`, reports[1].Message)
}

func TestGraphOf_IncludesSinks(t *testing.T) {
	g := GraphOf(rels([2]string{"b", "c"}, [2]string{"b", "a"}))
	assert.Equal(t, []string{"a", "c"}, g["b"])
	_, ok := g["c"]
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, g.nodes())
}
