package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jrnl/internal/item"
	"jrnl/internal/journal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jrnl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenIsIdempotentOnExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jrnl.db")

	s1, err := Open(path)
	require.NoError(t, err)
	id, err := s1.InsertItem(item.Item{Kind: item.KindNote, Title: "kept", CreatedAt: time.Now().UTC()}, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := s2.GetItem(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", got.Title)
}

func TestInsertAndGetTask(t *testing.T) {
	s := newTestStore(t)

	created := time.Date(2024, time.January, 15, 15, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	info := item.TaskInfo{
		Status:  item.StatusTodo,
		DueDate: &dueDate,
		Recur:   &item.Recurrence{Amount: 1, Unit: item.UnitMonth},
	}

	id, err := s.InsertItem(item.Item{Kind: item.KindTask, Title: "pay rent", CreatedAt: created}, &info)
	require.NoError(t, err)

	it, ok, err := s.GetItem(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.KindTask, it.Kind)
	assert.Equal(t, "pay rent", it.Title)
	assert.True(t, created.Equal(it.CreatedAt))
	assert.Nil(t, it.ParentID)

	got, ok, err := s.GetTaskInfo(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.StatusTodo, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, dueDate.Equal(*got.DueDate))
	assert.Nil(t, got.CompletedAt)
	require.NotNil(t, got.Recur)
	assert.Equal(t, item.Recurrence{Amount: 1, Unit: item.UnitMonth}, *got.Recur)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.GetItem(42)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.GetTaskInfo(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateTaskInfo(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertItem(
		item.Item{Kind: item.KindTask, Title: "task", CreatedAt: time.Now().UTC()},
		&item.TaskInfo{Status: item.StatusTodo},
	)
	require.NoError(t, err)

	completed := time.Date(2024, time.January, 15, 16, 0, 0, 0, time.UTC)
	err = s.UpdateTaskInfo(item.TaskInfo{ItemID: id, Status: item.StatusDone, CompletedAt: &completed})
	require.NoError(t, err)

	got, ok, err := s.GetTaskInfo(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completed.Equal(*got.CompletedAt))
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Recur)
}

func TestChildrenAndRoots(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC()
	rootID, err := s.InsertItem(item.Item{Kind: item.KindNote, Title: "root", CreatedAt: now}, nil)
	require.NoError(t, err)
	childID, err := s.InsertItem(item.Item{Kind: item.KindNote, Title: "child", CreatedAt: now, ParentID: &rootID}, nil)
	require.NoError(t, err)

	roots, err := s.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, rootID, roots[0].ID)

	children, err := s.Children(rootID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, childID, children[0].ID)
	require.NotNil(t, children[0].ParentID)
	assert.Equal(t, rootID, *children[0].ParentID)
}

func TestAllTasksSkipsNotes(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC()
	taskID, err := s.InsertItem(item.Item{Kind: item.KindTask, Title: "task", CreatedAt: now}, &item.TaskInfo{Status: item.StatusDoing})
	require.NoError(t, err)
	_, err = s.InsertItem(item.Item{Kind: item.KindNote, Title: "note", CreatedAt: now}, nil)
	require.NoError(t, err)

	tasks, err := s.AllTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0].ID)
	assert.Equal(t, item.StatusDoing, tasks[0].Info.Status)
}

func TestLinkInsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC()
	a, err := s.InsertItem(item.Item{Kind: item.KindNote, Title: "a", CreatedAt: now}, nil)
	require.NoError(t, err)
	b, err := s.InsertItem(item.Item{Kind: item.KindNote, Title: "b", CreatedAt: now}, nil)
	require.NoError(t, err)

	l := item.NewLink(b, a)
	require.NoError(t, s.InsertLink(l))
	require.NoError(t, s.InsertLink(l))

	links, err := s.LinksFor(a)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, a, links[0].A)
	assert.Equal(t, b, links[0].B)

	require.NoError(t, s.DeleteLink(l))
	links, err = s.LinksFor(a)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestDeleteItemRemovesInfoAndLinks(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC()
	taskID, err := s.InsertItem(item.Item{Kind: item.KindTask, Title: "task", CreatedAt: now}, &item.TaskInfo{Status: item.StatusTodo})
	require.NoError(t, err)
	otherID, err := s.InsertItem(item.Item{Kind: item.KindNote, Title: "other", CreatedAt: now}, nil)
	require.NoError(t, err)
	require.NoError(t, s.InsertLink(item.NewLink(taskID, otherID)))

	require.NoError(t, s.DeleteItem(taskID))

	_, ok, err := s.GetItem(taskID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.GetTaskInfo(taskID)
	require.NoError(t, err)
	assert.False(t, ok)

	links, err := s.LinksFor(otherID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTransactRollsBackOnError(t *testing.T) {
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.Transact(func(tx journal.Store) error {
		_, err := tx.InsertItem(item.Item{Kind: item.KindNote, Title: "doomed", CreatedAt: time.Now().UTC()}, nil)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := s.AllItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTransactCommits(t *testing.T) {
	s := newTestStore(t)

	err := s.Transact(func(tx journal.Store) error {
		_, err := tx.InsertItem(item.Item{Kind: item.KindNote, Title: "kept", CreatedAt: time.Now().UTC()}, nil)
		return err
	})
	require.NoError(t, err)

	items, err := s.AllItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Title)
}
