package deckflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestNonEmpty(t *testing.T) {
	assert.Equal(t, "branch", LatestNonEmpty("parent", "branch"))
	assert.Equal(t, "parent", LatestNonEmpty("parent", ""))
	assert.Equal(t, "branch", LatestNonEmpty("", "branch"))
	assert.Equal(t, "", LatestNonEmpty("", ""))
}

func TestMax(t *testing.T) {
	assert.Equal(t, 5, Max(3, 5))
	assert.Equal(t, 5, Max(5, 3))
	assert.Equal(t, -1, Max(-3, -1))
	assert.Equal(t, 2.5, Max(1.5, 2.5))
	assert.Equal(t, "b", Max("a", "b"))
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "parent", First("parent", "branch"))
	assert.Equal(t, "branch", First("", "branch"))
	assert.Equal(t, 0, First(0, 0))
	assert.Equal(t, 7, First(0, 7))
	assert.Equal(t, 3, First(3, 7))
}

func TestAppendDedupe(t *testing.T) {
	t.Run("disjoint", func(t *testing.T) {
		got := AppendDedupe([]string{"a", "b"}, []string{"c", "d"})
		assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	})

	t.Run("overlap keeps first appearance", func(t *testing.T) {
		got := AppendDedupe([]string{"a", "b", "c"}, []string{"b", "d", "a"})
		assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	})

	t.Run("duplicates within one side", func(t *testing.T) {
		got := AppendDedupe([]string{"a", "a"}, []string{"b", "b"})
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("empty sides", func(t *testing.T) {
		assert.Equal(t, []string{"a"}, AppendDedupe(nil, []string{"a"}))
		assert.Equal(t, []string{"a"}, AppendDedupe([]string{"a"}, nil))
		assert.Empty(t, AppendDedupe[string](nil, nil))
	})

	t.Run("ints", func(t *testing.T) {
		got := AppendDedupe([]int{1, 2}, []int{2, 3})
		assert.Equal(t, []int{1, 2, 3}, got)
	})
}

func TestAppendDedupeFunc(t *testing.T) {
	type card struct {
		ID   string
		Text string
	}
	key := func(c card) string { return c.ID }

	parent := []card{{ID: "c1", Text: "first"}, {ID: "c2", Text: "second"}}
	branch := []card{{ID: "c2", Text: "revised"}, {ID: "c3", Text: "third"}}

	got := AppendDedupeFunc(parent, branch, key)

	// First appearance wins per key.
	assert.Equal(t, []card{
		{ID: "c1", Text: "first"},
		{ID: "c2", Text: "second"},
		{ID: "c3", Text: "third"},
	}, got)
}

func TestAppendDedupeFunc_CaseInsensitiveKey(t *testing.T) {
	key := strings.ToLower

	got := AppendDedupeFunc([]string{"Alpha", "beta"}, []string{"ALPHA", "Gamma"}, key)
	assert.Equal(t, []string{"Alpha", "beta", "Gamma"}, got)
}

// Merge helpers used as fan-out reducers must be commutative so branch
// completion order cannot change the result.
func TestReducers_Commutative(t *testing.T) {
	assert.Equal(t, Max(2, 9), Max(9, 2))

	a := []string{"x", "y"}
	b := []string{"y", "z"}
	left := AppendDedupe(a, b)
	right := AppendDedupe(b, a)
	assert.ElementsMatch(t, left, right)
}
