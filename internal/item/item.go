package item

import "time"

type Kind string

const (
	KindTask Kind = "task"
	KindNote Kind = "note"
)

// Item is one node in the journal forest. ParentID is nil for roots.
type Item struct {
	ID        int64
	Kind      Kind
	Title     string
	CreatedAt time.Time
	ParentID  *int64
}

func (it Item) IsRoot() bool {
	return it.ParentID == nil
}

// TaskInfo holds the scheduling state attached to every task item.
// CompletedAt is set exactly while Status is StatusDone.
type TaskInfo struct {
	ItemID      int64
	Status      Status
	DueDate     *time.Time
	CompletedAt *time.Time
	Recur       *Recurrence
}

// Task is an item joined with its task info, the unit views operate on.
type Task struct {
	Item
	Info TaskInfo
}

// Link is an undirected edge between two items, stored smaller id first.
type Link struct {
	A int64
	B int64
}

func NewLink(a, b int64) Link {
	if b < a {
		a, b = b, a
	}
	return Link{A: a, B: b}
}

func (l Link) Other(id int64) int64 {
	if l.A == id {
		return l.B
	}
	return l.A
}
