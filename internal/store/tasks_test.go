package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestPutTask_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	putItems(t, s, testItem("t1", "", "1"))

	want := model.Task{
		Ident:      "t1",
		ShowAfter:  t0,
		Deadline:   timePtr(t0.Add(48 * time.Hour)),
		WhenClosed: timePtr(t0.Add(time.Hour)),
		Context:    "home",
		Priority:   3,
		Status:     model.TaskClosed,
		Blocked:    true,
	}
	mustUpdate(t, s, func(tx *Tx) error { return tx.PutTask(ctx, want) })

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		got, err := tx.GetTask(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		return nil
	}))
}

func TestPutTask_KeepsWhenClosedWhileClosed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	putItems(t, s, testItem("t1", "", "1"))

	closed := model.Task{
		Ident:      "t1",
		ShowAfter:  t0,
		WhenClosed: timePtr(t0.Add(time.Hour)),
		Priority:   model.DefaultPriority,
		Status:     model.TaskClosed,
	}
	mustUpdate(t, s, func(tx *Tx) error { return tx.PutTask(ctx, closed) })

	edited := closed
	edited.Priority = 2
	edited.WhenClosed = timePtr(t0.Add(5 * time.Hour))
	mustUpdate(t, s, func(tx *Tx) error { return tx.PutTask(ctx, edited) })

	get := func() model.Task {
		t.Helper()
		var got model.Task
		require.NoError(t, s.View(ctx, func(tx *Tx) error {
			var err error
			got, err = tx.GetTask(ctx, "t1")
			return err
		}))
		return got
	}
	got := get()
	assert.Equal(t, 2, got.Priority, "other fields are replaced")
	require.NotNil(t, got.WhenClosed)
	assert.Equal(t, t0.Add(time.Hour), *got.WhenClosed, "when_closed is stamped once")

	reopened := edited
	reopened.Status = model.TaskOpen
	reopened.WhenClosed = nil
	mustUpdate(t, s, func(tx *Tx) error { return tx.PutTask(ctx, reopened) })
	assert.Nil(t, get().WhenClosed)

	mustUpdate(t, s, func(tx *Tx) error { return tx.PutTask(ctx, edited) })
	require.NotNil(t, get().WhenClosed)
	assert.Equal(t, t0.Add(5*time.Hour), *get().WhenClosed, "a new close stamps again")
}

func TestPutTask_Invariants(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	putItems(t, s, testItem("t1", "", "1"))

	err := s.Update(ctx, func(tx *Tx) error {
		return tx.PutTask(ctx, model.Task{Ident: "t1", Status: model.TaskClosed})
	})
	assert.Equal(t, model.ErrCodeInvalidItem, model.CodeOf(err), "closed without when_closed")

	err = s.Update(ctx, func(tx *Tx) error {
		return tx.PutTask(ctx, model.Task{Ident: "t1", Status: model.TaskOpen, WhenClosed: timePtr(t0)})
	})
	assert.Equal(t, model.ErrCodeInvalidItem, model.CodeOf(err), "open with when_closed")

	err = s.Update(ctx, func(tx *Tx) error {
		return tx.PutTask(ctx, model.Task{Ident: "ghost", Status: model.TaskOpen})
	})
	assert.True(t, model.IsNotFound(err), "task without item: %v", err)
}

func TestVisibleTasks_FilterAndOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	archived := testItem("gone", "", "1")
	archived.Lifecycle = model.Archived
	putItems(t, s,
		testItem("a", "", "1"), testItem("b", "", "1"), testItem("c", "", "1"),
		testItem("d", "", "1"), testItem("later", "", "1"), testItem("blocked", "", "1"),
		testItem("done", "", "1"), archived)

	now := t0
	tasks := []model.Task{
		{Ident: "a", ShowAfter: now, Priority: 5, Status: model.TaskOpen},
		{Ident: "b", ShowAfter: now, Priority: 5, Status: model.TaskOpen, Deadline: timePtr(now.Add(time.Hour))},
		{Ident: "c", ShowAfter: now.Add(-time.Hour), Priority: 1, Status: model.TaskOpen},
		{Ident: "d", ShowAfter: now, Priority: 5, Status: model.TaskOpen, Deadline: timePtr(now.Add(time.Minute))},
		{Ident: "later", ShowAfter: now.Add(time.Second), Priority: 0, Status: model.TaskOpen},
		{Ident: "blocked", ShowAfter: now, Priority: 0, Status: model.TaskOpen, Blocked: true},
		{Ident: "done", ShowAfter: now, Priority: 0, Status: model.TaskClosed, WhenClosed: timePtr(now)},
		{Ident: "gone", ShowAfter: now, Priority: 0, Status: model.TaskOpen},
	}
	mustUpdate(t, s, func(tx *Tx) error {
		for _, task := range tasks {
			if err := tx.PutTask(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		visible, err := tx.VisibleTasks(ctx, now)
		require.NoError(t, err)
		var idents []string
		for _, task := range visible {
			idents = append(idents, task.Ident)
		}
		assert.Equal(t, []string{"c", "d", "b", "a"}, idents)
		return nil
	}))
}
