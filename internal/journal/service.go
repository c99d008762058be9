package journal

import (
	"fmt"
	"strings"
	"time"

	"jrnl/internal/due"
	"jrnl/internal/item"
)

// Service exposes the journal operations to the front end. All methods are
// synchronous; the only multi-row writes (completing a recurring task,
// deleting a subtree) run inside a single store transaction.
type Service struct {
	store Store

	// Now supplies the current time; tests pin it.
	Now func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, Now: time.Now}
}

// CreateTask adds a task under parentID (nil for a root). dueSpec and
// recurSpec may be empty; non-empty specs must parse.
func (s *Service) CreateTask(parentID *int64, title, dueSpec, recurSpec string) (item.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return item.Task{}, fmt.Errorf("%w: title is empty", item.ErrValidation)
	}
	if err := s.checkParent(parentID); err != nil {
		return item.Task{}, err
	}

	now := s.Now()
	info := item.TaskInfo{Status: item.StatusTodo}
	if dueSpec != "" {
		d, err := due.Resolve(dueSpec, now)
		if err != nil {
			return item.Task{}, err
		}
		info.DueDate = &d
	}
	if recurSpec != "" {
		rec, err := item.ParseRecurrence(recurSpec)
		if err != nil {
			return item.Task{}, err
		}
		info.Recur = &rec
	}

	it := item.Item{Kind: item.KindTask, Title: title, CreatedAt: now, ParentID: parentID}
	id, err := s.store.InsertItem(it, &info)
	if err != nil {
		return item.Task{}, err
	}
	it.ID = id
	info.ItemID = id
	return item.Task{Item: it, Info: info}, nil
}

// CreateNote adds a note under parentID (nil for a standalone note).
func (s *Service) CreateNote(parentID *int64, title string) (item.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return item.Item{}, fmt.Errorf("%w: title is empty", item.ErrValidation)
	}
	if err := s.checkParent(parentID); err != nil {
		return item.Item{}, err
	}

	it := item.Item{Kind: item.KindNote, Title: title, CreatedAt: s.Now(), ParentID: parentID}
	id, err := s.store.InsertItem(it, nil)
	if err != nil {
		return item.Item{}, err
	}
	it.ID = id
	return it, nil
}

func (s *Service) Get(id int64) (item.Item, error) {
	it, ok, err := s.store.GetItem(id)
	if err != nil {
		return item.Item{}, err
	}
	if !ok {
		return item.Item{}, fmt.Errorf("%w: item %d", item.ErrNotFound, id)
	}
	return it, nil
}

// GetTask returns the task with its info, or ErrNotFound when id does not
// resolve to a task.
func (s *Service) GetTask(id int64) (item.Task, error) {
	it, err := s.Get(id)
	if err != nil {
		return item.Task{}, err
	}
	if it.Kind != item.KindTask {
		return item.Task{}, fmt.Errorf("%w: item %d is not a task", item.ErrNotFound, id)
	}
	info, ok, err := s.store.GetTaskInfo(id)
	if err != nil {
		return item.Task{}, err
	}
	if !ok {
		return item.Task{}, fmt.Errorf("%w: task info for %d", item.ErrNotFound, id)
	}
	return item.Task{Item: it, Info: info}, nil
}

// Subtree returns id's item and all descendants depth first, parents before
// children, siblings in creation order.
func (s *Service) Subtree(id int64) ([]item.Item, error) {
	root, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	out := []item.Item{root}
	children, err := s.store.Children(id)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		sub, err := s.Subtree(c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// SetStatus transitions a task. Entering done stamps the completion time,
// optionally attaches note as a child note, and creates the successor of a
// recurring task; all of that commits in one transaction. Leaving done
// clears the completion time.
func (s *Service) SetStatus(taskID int64, status item.Status, note string) (item.Task, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return item.Task{}, err
	}

	now := s.Now()
	info, effects := item.Transition(t.Info, status, now)

	err = s.store.Transact(func(tx Store) error {
		if err := tx.UpdateTaskInfo(info); err != nil {
			return err
		}
		if note = strings.TrimSpace(note); note != "" && status == item.StatusDone {
			parent := taskID
			n := item.Item{Kind: item.KindNote, Title: note, CreatedAt: now, ParentID: &parent}
			if _, err := tx.InsertItem(n, nil); err != nil {
				return err
			}
		}
		for _, eff := range effects {
			spawn, ok := eff.(item.SpawnSuccessor)
			if !ok {
				continue
			}
			next := due.NextOccurrence(spawn.Base, *info.Recur)
			succ := item.Item{
				Kind:      item.KindTask,
				Title:     t.Title,
				CreatedAt: now,
				ParentID:  t.ParentID,
			}
			succInfo := item.TaskInfo{
				Status:  item.StatusTodo,
				DueDate: &next,
				Recur:   info.Recur,
			}
			if _, err := tx.InsertItem(succ, &succInfo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return item.Task{}, err
	}

	t.Info = info
	return t, nil
}

// DeleteItem removes id and every descendant, along with all links incident
// to any removed item, atomically.
func (s *Service) DeleteItem(id int64) error {
	subtree, err := s.Subtree(id)
	if err != nil {
		return err
	}
	return s.store.Transact(func(tx Store) error {
		// Children first so no row ever references a deleted parent.
		for i := len(subtree) - 1; i >= 0; i-- {
			if err := tx.DeleteItem(subtree[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Rename(id int64, title string) (item.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return item.Item{}, fmt.Errorf("%w: title is empty", item.ErrValidation)
	}
	it, err := s.Get(id)
	if err != nil {
		return item.Item{}, err
	}
	it.Title = title
	if err := s.store.UpdateItem(it); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

// SetDueDate resolves spec against today and stores it; an empty spec
// clears the due date.
func (s *Service) SetDueDate(taskID int64, spec string) (item.Task, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return item.Task{}, err
	}
	if spec == "" {
		t.Info.DueDate = nil
	} else {
		d, err := due.Resolve(spec, s.Now())
		if err != nil {
			return item.Task{}, err
		}
		t.Info.DueDate = &d
	}
	if err := s.store.UpdateTaskInfo(t.Info); err != nil {
		return item.Task{}, err
	}
	return t, nil
}

// SetRecurrence parses a pattern like "4w" and stores it; an empty spec
// makes the task non-recurring.
func (s *Service) SetRecurrence(taskID int64, spec string) (item.Task, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return item.Task{}, err
	}
	if spec == "" {
		t.Info.Recur = nil
	} else {
		rec, err := item.ParseRecurrence(spec)
		if err != nil {
			return item.Task{}, err
		}
		t.Info.Recur = &rec
	}
	if err := s.store.UpdateTaskInfo(t.Info); err != nil {
		return item.Task{}, err
	}
	return t, nil
}

// Reparent moves id under newParent (nil makes it a root). The move is
// rejected when it would create a cycle.
func (s *Service) Reparent(id int64, newParent *int64) (item.Item, error) {
	it, err := s.Get(id)
	if err != nil {
		return item.Item{}, err
	}
	if newParent != nil {
		if *newParent == id {
			return item.Item{}, fmt.Errorf("%w: item %d cannot be its own parent", item.ErrValidation, id)
		}
		if err := s.checkParent(newParent); err != nil {
			return item.Item{}, err
		}
		// Walk up from the new parent; hitting id means id would become
		// its own ancestor.
		cur := *newParent
		for {
			anc, err := s.Get(cur)
			if err != nil {
				return item.Item{}, err
			}
			if anc.ParentID == nil {
				break
			}
			if *anc.ParentID == id {
				return item.Item{}, fmt.Errorf("%w: moving item %d under %d creates a cycle", item.ErrValidation, id, *newParent)
			}
			cur = *anc.ParentID
		}
	}
	it.ParentID = newParent
	if err := s.store.UpdateItem(it); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

// ChildNotes returns the notes attached directly under an item.
func (s *Service) ChildNotes(id int64) ([]item.Item, error) {
	children, err := s.store.Children(id)
	if err != nil {
		return nil, err
	}
	var notes []item.Item
	for _, c := range children {
		if c.Kind == item.KindNote {
			notes = append(notes, c)
		}
	}
	return notes, nil
}

func (s *Service) checkParent(parentID *int64) error {
	if parentID == nil {
		return nil
	}
	_, ok, err := s.store.GetItem(*parentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: parent %d does not exist", item.ErrValidation, *parentID)
	}
	return nil
}
