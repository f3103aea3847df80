package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roach88/fanling-index/internal/model"
)

const taskColumns = `t.ident, t.show_after, t.deadline, t.when_closed, t.context, t.priority, t.status, t.blocked`

func scanTask(r rowScanner) (model.Task, error) {
	var (
		task       model.Task
		showAfter  int64
		deadline   sql.NullInt64
		whenClosed sql.NullInt64
		status     string
	)
	if err := r.Scan(&task.Ident, &showAfter, &deadline, &whenClosed, &task.Context, &task.Priority, &status, &task.Blocked); err != nil {
		return model.Task{}, err
	}
	task.ShowAfter = fromMicros(showAfter)
	task.Deadline = fromNullMicros(deadline)
	task.WhenClosed = fromNullMicros(whenClosed)
	task.Status = model.TaskStatus(status)
	return task, nil
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

func fromNullMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMicros(v.Int64)
	return &t
}

func toNullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixMicro(), Valid: true}
}

// GetTask returns the task record for ident, or NOT_FOUND.
func (t *Tx) GetTask(ctx context.Context, ident string) (model.Task, error) {
	task, err := scanTask(t.tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM task t WHERE t.ident = ?`, ident))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, model.NewNotFound("task", ident)
	}
	if err != nil {
		return model.Task{}, classify("get task", err)
	}
	return task, nil
}

// PutTask inserts or replaces the task record of an existing item.
// Replacing a closed task with a closed task keeps the stored when_closed:
// a task is stamped once per close.
func (t *Tx) PutTask(ctx context.Context, task model.Task) error {
	if task.Status == "" {
		task.Status = model.TaskOpen
	}
	if _, err := model.ParseTaskStatus(string(task.Status)); err != nil {
		return model.NewInvalidItem(task.Ident, err.Error())
	}
	if (task.Status == model.TaskClosed) != (task.WhenClosed != nil) {
		return model.NewInvalidItem(task.Ident, "when_closed must be set exactly when the task is closed")
	}

	var one int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM item WHERE ident = ?`, task.Ident).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewNotFound("item", task.Ident)
	}
	if err != nil {
		return classify("put task", err)
	}

	_, err = t.exec(ctx, "put task", `
		INSERT INTO task (ident, show_after, deadline, when_closed, context, priority, status, blocked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ident) DO UPDATE SET
			show_after  = excluded.show_after,
			deadline    = excluded.deadline,
			when_closed = CASE
				WHEN task.status = 'closed' AND excluded.status = 'closed' THEN task.when_closed
				ELSE excluded.when_closed
			END,
			context     = excluded.context,
			priority    = excluded.priority,
			status      = excluded.status,
			blocked     = excluded.blocked
	`, task.Ident, task.ShowAfter.UTC().UnixMicro(), toNullMicros(task.Deadline), toNullMicros(task.WhenClosed),
		task.Context, task.Priority, string(task.Status), task.Blocked)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.NewNotFound("item", task.Ident)
		}
		return err
	}
	return nil
}

// VisibleTasks returns open, unblocked tasks of live items whose show_after
// is not later than now, ordered by (priority, deadline with missing
// deadlines last, ident).
func (t *Tx) VisibleTasks(ctx context.Context, now time.Time) ([]model.Task, error) {
	return t.queryTasks(ctx, "visible tasks", `
		SELECT `+taskColumns+` FROM task t
		JOIN item i ON i.ident = t.ident
		WHERE t.status = 'open' AND t.blocked = 0 AND t.show_after <= ? AND i.open = 1
		ORDER BY t.priority ASC, t.deadline IS NULL ASC, t.deadline ASC, t.ident COLLATE BINARY ASC
	`, now.UTC().UnixMicro())
}

func (t *Tx) queryTasks(ctx context.Context, op, query string, args ...any) ([]model.Task, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
