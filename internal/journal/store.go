// Package journal implements the item hierarchy and scheduling engine:
// creating tasks and notes in a forest, driving status transitions,
// generating recurring successors, maintaining the note-link graph,
// filtering completed subtrees from views, and wildcard search. It talks to
// persistence only through the Store interface.
package journal

import "jrnl/internal/item"

// Store is the minimal persistence surface the journal requires. Items and
// links come back with stable integer ids; ordering of multi-row reads is
// ascending id. Implementations must make Transact atomic: every store call
// made through the Store passed to fn either commits as a whole or not at
// all.
type Store interface {
	// InsertItem persists a new item, with task info when info is non-nil,
	// and returns the assigned id.
	InsertItem(it item.Item, info *item.TaskInfo) (int64, error)
	GetItem(id int64) (item.Item, bool, error)
	GetTaskInfo(itemID int64) (item.TaskInfo, bool, error)
	Children(parentID int64) ([]item.Item, error)
	Roots() ([]item.Item, error)
	AllItems() ([]item.Item, error)
	// AllTasks returns every task item joined with its info.
	AllTasks() ([]item.Task, error)
	UpdateItem(it item.Item) error
	UpdateTaskInfo(info item.TaskInfo) error
	// DeleteItem removes one item row, its task info, and every link
	// incident to it.
	DeleteItem(id int64) error
	// InsertLink records a normalized pair; inserting an existing pair is a
	// no-op.
	InsertLink(l item.Link) error
	DeleteLink(l item.Link) error
	LinksFor(id int64) ([]item.Link, error)
	Transact(fn func(Store) error) error
}
