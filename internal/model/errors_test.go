package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexError_Message(t *testing.T) {
	err := NewCycleError("b", "child", []string{"a", "b", "a"})
	assert.Equal(t,
		"CYCLE_DETECTED: relation traversal revisited a node on its own path (ident=b, kind=child) [a → b → a]",
		err.Error())

	err = NewOrphanParent("x", "gone")
	assert.Equal(t, `ORPHAN_PARENT: parent "gone" does not exist (ident=x)`, err.Error())

	err = NewHasChildren("p", "c")
	assert.Equal(t, `INVALID_ITEM: item has children (first "c") (ident=p)`, err.Error())
	assert.False(t, IsOrphanParent(err))
}

func TestErrorHelpers_Wrapped(t *testing.T) {
	base := NewDuplicateRelation("a", "b", "child")
	wrapped := fmt.Errorf("insert relation: %w", base)

	assert.True(t, IsDuplicateRelation(wrapped))
	assert.False(t, IsCycle(wrapped))
	assert.Equal(t, ErrCodeDuplicateRelation, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestErrorHelpers_RebuildWrapsCycle(t *testing.T) {
	err := NewRebuildError("child", NewCycleError("a", "child", []string{"a", "b", "a"}))

	assert.Equal(t, ErrCodeClosureRebuild, CodeOf(err))
	assert.True(t, IsCycle(err), "rebuild failure should expose its cycle cause")
	assert.False(t, IsTransient(err))
}

func TestIsTransient(t *testing.T) {
	err := NewStoreIOError("write item", errors.New("database is locked"))
	assert.True(t, IsTransient(err))
	assert.True(t, IsTransient(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsTransient(NewNotFound("item", "a")))
	assert.False(t, IsTransient(nil))
}
