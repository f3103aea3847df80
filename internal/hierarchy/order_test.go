package hierarchy

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/model"
)

func item(ident, parent, sortKey string) model.Item {
	return model.Item{Ident: ident, Parent: parent, Sort: sortKey, TypeName: "simple"}
}

func idents(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.Ident
	}
	return out
}

func TestOrder_Example(t *testing.T) {
	items := []model.Item{
		item("C", "A", "2"),
		item("B", "A", "1"),
		item("A", "", "1"),
	}

	entries, err := Order(items, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, idents(entries))
	assert.Equal(t, 0, entries[0].Level)
	assert.Equal(t, 1, entries[1].Level)
	assert.Equal(t, "1!A", entries[0].Key)
	assert.Equal(t, "1!A!1!B", entries[1].Key)
	assert.Equal(t, "1!A!2!C", entries[2].Key)
}

func TestOrder_TieBrokenByIdent(t *testing.T) {
	items := []model.Item{
		item("r", "", "5"),
		item("zz", "r", "1"),
		item("aa", "r", "1"),
		item("mm", "r", "0"),
	}
	entries, err := Order(items, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "mm", "aa", "zz"}, idents(entries))
}

func TestOrder_SortPrefixOrdersBeforeLongerSort(t *testing.T) {
	// "1" < "10" as strings; the separator must not invert that.
	items := []model.Item{
		item("b", "", "10"),
		item("a", "", "1"),
		item("a1", "a", "9"),
	}
	entries, err := Order(items, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a1", "b"}, idents(entries))
}

func TestOrder_OpenOnlyKeepsChildrenOfArchivedParent(t *testing.T) {
	parent := item("p", "", "1")
	parent.Lifecycle = model.Archived
	items := []model.Item{parent, item("c", "p", "1"), item("d", "", "2")}

	all, err := Order(items, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "c", "d"}, idents(all))

	open, err := Order(items, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, idents(open))
	assert.Equal(t, 1, open[0].Level, "level is still measured through the archived parent")
}

func TestOrder_Cycle(t *testing.T) {
	items := []model.Item{
		item("root", "", "1"),
		item("a", "b", "1"),
		item("b", "a", "1"),
	}
	_, err := Order(items, false)
	require.Error(t, err)
	assert.True(t, model.IsCycle(err))

	var ie *model.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []string{"a", "b", "a"}, ie.Path)
}

func TestOrder_CycleBelowItem(t *testing.T) {
	items := []model.Item{
		item("x", "a", "1"),
		item("a", "b", "1"),
		item("b", "a", "1"),
	}
	_, err := Order(items, false)
	require.Error(t, err)

	var ie *model.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, model.ErrCodeCycleDetected, ie.Code)
	assert.Equal(t, "x", ie.Ident)
	assert.Equal(t, []string{"a", "b", "a"}, ie.Path)
}

func TestOrder_ArchivedCycleIgnoredWhenOpenOnly(t *testing.T) {
	a := item("a", "b", "1")
	a.Lifecycle = model.Archived
	b := item("b", "a", "1")
	b.Lifecycle = model.Archived
	items := []model.Item{item("r", "", "1"), a, b}

	entries, err := Order(items, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"r"}, idents(entries))

	_, err = Order(items, false)
	assert.True(t, model.IsCycle(err))
}

func TestOrder_Orphan(t *testing.T) {
	_, err := Order([]model.Item{item("a", "missing", "1")}, false)
	require.Error(t, err)
	assert.True(t, model.IsOrphanParent(err))
}

func TestOrder_DuplicateIdent(t *testing.T) {
	_, err := Order([]model.Item{item("a", "", "1"), item("a", "", "2")}, false)
	require.Error(t, err)
	assert.Equal(t, model.ErrCodeInvalidItem, model.CodeOf(err))
}

func TestOrder_Empty(t *testing.T) {
	entries, err := Order(nil, true)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// referenceDFS is an explicit pre-order walk ordering siblings by (sort, ident).
func referenceDFS(items []model.Item) []string {
	children := make(map[string][]model.Item)
	for _, it := range items {
		children[it.Parent] = append(children[it.Parent], it)
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool {
			if kids[i].Sort != kids[j].Sort {
				return kids[i].Sort < kids[j].Sort
			}
			return kids[i].Ident < kids[j].Ident
		})
	}
	var out []string
	var walk func(parent string)
	walk = func(parent string) {
		for _, kid := range children[parent] {
			out = append(out, kid.Ident)
			walk(kid.Ident)
		}
	}
	walk("")
	return out
}

func TestOrder_MatchesReferenceDFS(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sortKeys := []string{"1", "10", "2", "a", "ab", "b", ""}

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(40)
		items := make([]model.Item, n)
		for i := range items {
			parent := ""
			// Parents always precede children, so the input is a forest.
			if i > 0 && rng.Intn(4) != 0 {
				parent = fmt.Sprintf("i%d", rng.Intn(i))
			}
			items[i] = item(fmt.Sprintf("i%d", i), parent, sortKeys[rng.Intn(len(sortKeys))])
		}
		rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

		entries, err := Order(items, false)
		require.NoError(t, err, "trial %d", trial)
		require.Equal(t, referenceDFS(items), idents(entries), "trial %d", trial)

		for i := 1; i < len(entries); i++ {
			require.Less(t, entries[i-1].Key, entries[i].Key, "keys must be strictly ascending")
		}
	}
}

func TestChildrenAndSubtree(t *testing.T) {
	items := []model.Item{
		item("a", "", "1"),
		item("a1", "a", "1"),
		item("a1x", "a1", "1"),
		item("a2", "a", "2"),
		item("ab", "", "2"),
	}
	entries, err := Order(items, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2"}, idents(Children(entries, "a")))
	assert.Equal(t, []string{"a", "ab"}, idents(Children(entries, "")))
	assert.Equal(t, []string{"a", "a1", "a1x", "a2"}, idents(Subtree(entries, "a")))
	assert.Equal(t, []string{"a1", "a1x"}, idents(Subtree(entries, "a1")))
	assert.Nil(t, Subtree(entries, "nope"))
}
