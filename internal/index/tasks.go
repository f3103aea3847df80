package index

import (
	"context"

	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/store"
	"github.com/roach88/fanling-index/internal/tasks"
)

// PutTask inserts or replaces the task record of an existing item.
func (ix *Index) PutTask(ctx context.Context, task model.Task) error {
	err := ix.update(ctx, func(tx *store.Tx) error {
		return tx.PutTask(ctx, task)
	})
	if err == nil {
		ix.logger.Debug("put task", "ident", task.Ident, "status", task.Status, "priority", task.Priority)
	}
	return err
}

// GetTask returns the task record for ident or NOT_FOUND.
func (ix *Index) GetTask(ctx context.Context, ident string) (model.Task, error) {
	var task model.Task
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, ident)
		return err
	})
	return task, err
}

// CloseTask closes the task. The bool is false when it was already closed.
func (ix *Index) CloseTask(ctx context.Context, ident string) (model.Task, bool, error) {
	now := ix.clock.Now()
	return ix.transition(ctx, "close task", ident, func(t model.Task) (model.Task, bool) {
		return tasks.Close(t, now)
	})
}

// ReopenTask reopens a closed task. The bool is false when it was open.
func (ix *Index) ReopenTask(ctx context.Context, ident string) (model.Task, bool, error) {
	return ix.transition(ctx, "reopen task", ident, tasks.Reopen)
}

// SetBlocked sets the blocked overlay. The bool reports a change.
func (ix *Index) SetBlocked(ctx context.Context, ident string, blocked bool) (model.Task, bool, error) {
	return ix.transition(ctx, "set blocked", ident, func(t model.Task) (model.Task, bool) {
		return tasks.SetBlocked(t, blocked)
	})
}

// transition reads, updates and writes a task in one transaction.
func (ix *Index) transition(ctx context.Context, op, ident string, fn func(model.Task) (model.Task, bool)) (model.Task, bool, error) {
	var (
		result  model.Task
		changed bool
	)
	err := ix.update(ctx, func(tx *store.Tx) error {
		cur, err := tx.GetTask(ctx, ident)
		if err != nil {
			return err
		}
		result, changed = fn(cur)
		if !changed {
			return nil
		}
		return tx.PutTask(ctx, result)
	})
	if err != nil {
		return model.Task{}, false, err
	}
	ix.logger.Debug(op, "ident", ident, "changed", changed)
	return result, changed, nil
}
