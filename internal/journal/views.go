package journal

import (
	"sort"
	"time"

	"jrnl/internal/due"
	"jrnl/internal/item"
	"jrnl/internal/search"
)

// VisibleRoots filters out root tasks that are done. Such a root and its
// whole subtree stay out of the due, status and journal views; the
// completed view and direct lookups are never filtered.
func (s *Service) VisibleRoots(roots []item.Item) ([]item.Item, error) {
	var out []item.Item
	for _, r := range roots {
		if r.Kind == item.KindTask {
			info, ok, err := s.store.GetTaskInfo(r.ID)
			if err != nil {
				return nil, err
			}
			if ok && info.Status == item.StatusDone {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// hiddenIDs collects every item living in a subtree whose root is a
// completed task.
func (s *Service) hiddenIDs() (map[int64]struct{}, error) {
	roots, err := s.store.Roots()
	if err != nil {
		return nil, err
	}
	visible, err := s.VisibleRoots(roots)
	if err != nil {
		return nil, err
	}
	keep := make(map[int64]struct{}, len(visible))
	for _, r := range visible {
		keep[r.ID] = struct{}{}
	}

	hidden := make(map[int64]struct{})
	for _, r := range roots {
		if _, ok := keep[r.ID]; ok {
			continue
		}
		sub, err := s.Subtree(r.ID)
		if err != nil {
			return nil, err
		}
		for _, it := range sub {
			hidden[it.ID] = struct{}{}
		}
	}
	return hidden, nil
}

// DueView buckets the pending, visible tasks by due date relative to ref.
func (s *Service) DueView(ref time.Time) (map[due.Bucket][]item.Task, error) {
	tasks, err := s.pendingVisibleTasks()
	if err != nil {
		return nil, err
	}
	return due.ClassifyByDueDate(tasks, ref), nil
}

// StatusView groups the pending, visible tasks by status.
func (s *Service) StatusView() (map[item.Status][]item.Task, error) {
	tasks, err := s.pendingVisibleTasks()
	if err != nil {
		return nil, err
	}
	return due.ClassifyByStatus(tasks), nil
}

func (s *Service) pendingVisibleTasks() ([]item.Task, error) {
	all, err := s.store.AllTasks()
	if err != nil {
		return nil, err
	}
	hidden, err := s.hiddenIDs()
	if err != nil {
		return nil, err
	}
	var out []item.Task
	for _, t := range all {
		if t.Info.Status == item.StatusDone {
			continue
		}
		if _, ok := hidden[t.ID]; ok {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// JournalDay is one day of the creation-date view: the tasks created that
// day plus the standalone notes created that day. Notes attached to an item
// are rendered under it via ChildNotes.
type JournalDay struct {
	Date  time.Time
	Tasks []item.Task
	Notes []item.Item
}

// JournalView groups visible items by creation date, oldest day first.
func (s *Service) JournalView() ([]JournalDay, error) {
	items, err := s.store.AllItems()
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.AllTasks()
	if err != nil {
		return nil, err
	}
	hidden, err := s.hiddenIDs()
	if err != nil {
		return nil, err
	}

	infoByID := make(map[int64]item.TaskInfo, len(tasks))
	for _, t := range tasks {
		infoByID[t.ID] = t.Info
	}

	days := make(map[time.Time]*JournalDay)
	for _, it := range items {
		if _, ok := hidden[it.ID]; ok {
			continue
		}
		day := due.Date(it.CreatedAt)
		entry, ok := days[day]
		if !ok {
			entry = &JournalDay{Date: day}
			days[day] = entry
		}
		switch {
		case it.Kind == item.KindTask:
			entry.Tasks = append(entry.Tasks, item.Task{Item: it, Info: infoByID[it.ID]})
		case it.IsRoot():
			entry.Notes = append(entry.Notes, it)
		}
	}

	out := make([]JournalDay, 0, len(days))
	for _, entry := range days {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CompletedDay is one day of the done view, keyed by completion date.
type CompletedDay struct {
	Date  time.Time
	Tasks []item.Task
}

// CompletedView groups done tasks by completion date, oldest first. The
// visibility filter never applies here.
func (s *Service) CompletedView() ([]CompletedDay, error) {
	tasks, err := s.store.AllTasks()
	if err != nil {
		return nil, err
	}

	days := make(map[time.Time]*CompletedDay)
	for _, t := range tasks {
		if t.Info.Status != item.StatusDone || t.Info.CompletedAt == nil {
			continue
		}
		day := due.Date(*t.Info.CompletedAt)
		entry, ok := days[day]
		if !ok {
			entry = &CompletedDay{Date: day}
			days[day] = entry
		}
		entry.Tasks = append(entry.Tasks, t)
	}

	out := make([]CompletedDay, 0, len(days))
	for _, entry := range days {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// NoteEntry is a note with its cross-references resolved.
type NoteEntry struct {
	Note   item.Item
	Linked []item.Item
}

// NotesView lists every note in creation order with its linked items.
func (s *Service) NotesView() ([]NoteEntry, error) {
	items, err := s.store.AllItems()
	if err != nil {
		return nil, err
	}
	var out []NoteEntry
	for _, it := range items {
		if it.Kind != item.KindNote {
			continue
		}
		linked, err := s.LinkedItems(it.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, NoteEntry{Note: it, Linked: linked})
	}
	return out, nil
}

// Search matches pattern against every item title, case-insensitively, and
// returns hits in id order.
func (s *Service) Search(pattern string) ([]item.Item, error) {
	items, err := s.store.AllItems()
	if err != nil {
		return nil, err
	}
	corpus := make([]search.Entry, 0, len(items))
	for _, it := range items {
		corpus = append(corpus, search.Entry{Item: it, Text: it.Title})
	}
	return search.Filter(corpus, pattern), nil
}
