package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fanling-index/internal/model"
)

func TestRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), time.Second, func() error {
		calls++
		if calls < 3 {
			return model.NewStoreIOError("commit", errors.New("database is locked"))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StructuralErrorNotRetried(t *testing.T) {
	calls := 0
	dup := model.NewDuplicateRelation("a", "b", "k")
	err := Retry(context.Background(), time.Second, func() error {
		calls++
		return dup
	})
	assert.Equal(t, 1, calls)
	assert.True(t, model.IsDuplicateRelation(err))
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 30*time.Millisecond, func() error {
		calls++
		return model.NewStoreIOError("begin", errors.New("busy"))
	})
	assert.True(t, model.IsTransient(err))
	assert.Greater(t, calls, 1)
}

func TestRetry_Disabled(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), -1, func() error {
		calls++
		return model.NewStoreIOError("begin", errors.New("busy"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestUUIDv7Prefix(t *testing.T) {
	p := UUIDv7Prefix{}.Generate()
	assert.Len(t, p, 8)
	assert.NoError(t, model.ValidateIdent(p+"-1"))
}
