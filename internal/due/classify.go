package due

import (
	"sort"
	"time"

	"jrnl/internal/item"
)

type Bucket string

const (
	BucketOverdue     Bucket = "Overdue"
	BucketDueToday    Bucket = "Due Today"
	BucketDueTomorrow Bucket = "Due Tomorrow"
	BucketThisWeek    Bucket = "This Week"
	BucketThisMonth   Bucket = "This Month"
	BucketFuture      Bucket = "Future"
	BucketNoDueDate   Bucket = "No Due Date"
)

// BucketOrder is the fixed display order of the due view.
var BucketOrder = []Bucket{
	BucketOverdue,
	BucketDueToday,
	BucketDueTomorrow,
	BucketThisWeek,
	BucketThisMonth,
	BucketFuture,
	BucketNoDueDate,
}

// ClassifyByDueDate partitions tasks into display buckets relative to ref.
// Every task lands in exactly one bucket. The week runs through the Sunday
// of ref's week; a date on that Sunday is This Week, never This Month.
// Within a bucket tasks sort by due date, then id.
func ClassifyByDueDate(tasks []item.Task, ref time.Time) map[Bucket][]item.Task {
	ref = Date(ref)
	tomorrow := ref.AddDate(0, 0, 1)
	weekEnd := endOfWeek(ref)
	monthEnd := endOfMonth(ref)

	buckets := make(map[Bucket][]item.Task)
	for _, t := range tasks {
		b := BucketNoDueDate
		if t.Info.DueDate != nil {
			d := Date(*t.Info.DueDate)
			switch {
			case d.Before(ref):
				b = BucketOverdue
			case d.Equal(ref):
				b = BucketDueToday
			case d.Equal(tomorrow):
				b = BucketDueTomorrow
			case !d.After(weekEnd):
				b = BucketThisWeek
			case !d.After(monthEnd):
				b = BucketThisMonth
			default:
				b = BucketFuture
			}
		}
		buckets[b] = append(buckets[b], t)
	}

	for b, ts := range buckets {
		sort.SliceStable(ts, func(i, j int) bool {
			di, dj := ts[i].Info.DueDate, ts[j].Info.DueDate
			if di != nil && dj != nil && !di.Equal(*dj) {
				return di.Before(*dj)
			}
			return ts[i].ID < ts[j].ID
		})
		buckets[b] = ts
	}
	return buckets
}

// StatusOrder is the fixed display order of the status view. Done tasks do
// not appear here; they belong to the completed view.
var StatusOrder = []item.Status{item.StatusTodo, item.StatusDoing, item.StatusWaiting}

// ClassifyByStatus groups pending tasks by status, preserving input order
// within each group.
func ClassifyByStatus(tasks []item.Task) map[item.Status][]item.Task {
	groups := make(map[item.Status][]item.Task)
	for _, t := range tasks {
		if t.Info.Status == item.StatusDone {
			continue
		}
		groups[t.Info.Status] = append(groups[t.Info.Status], t)
	}
	return groups
}
