package due

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jrnl/internal/item"
)

func taskWithDue(id int64, d *time.Time) item.Task {
	return item.Task{
		Item: item.Item{ID: id, Kind: item.KindTask, Title: "task"},
		Info: item.TaskInfo{ItemID: id, Status: item.StatusTodo, DueDate: d},
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	v := date(y, m, d)
	return &v
}

func TestClassifyByDueDateBuckets(t *testing.T) {
	// Monday 2024-01-15; week ends Sunday 2024-01-21, month ends 01-31.
	ref := date(2024, time.January, 15)

	tasks := []item.Task{
		taskWithDue(1, datePtr(2024, time.January, 10)),  // overdue
		taskWithDue(2, datePtr(2024, time.January, 15)),  // today
		taskWithDue(3, datePtr(2024, time.January, 16)),  // tomorrow
		taskWithDue(4, datePtr(2024, time.January, 17)),  // this week
		taskWithDue(5, datePtr(2024, time.January, 21)),  // boundary Sunday: this week
		taskWithDue(6, datePtr(2024, time.January, 22)),  // this month
		taskWithDue(7, datePtr(2024, time.January, 31)),  // this month
		taskWithDue(8, datePtr(2024, time.February, 1)),  // future
		taskWithDue(9, nil),                              // no due date
	}

	buckets := ClassifyByDueDate(tasks, ref)

	assert.Equal(t, []int64{1}, ids(buckets[BucketOverdue]))
	assert.Equal(t, []int64{2}, ids(buckets[BucketDueToday]))
	assert.Equal(t, []int64{3}, ids(buckets[BucketDueTomorrow]))
	assert.Equal(t, []int64{4, 5}, ids(buckets[BucketThisWeek]))
	assert.Equal(t, []int64{6, 7}, ids(buckets[BucketThisMonth]))
	assert.Equal(t, []int64{8}, ids(buckets[BucketFuture]))
	assert.Equal(t, []int64{9}, ids(buckets[BucketNoDueDate]))
}

func TestClassifyByDueDatePartitions(t *testing.T) {
	ref := date(2024, time.June, 14)
	tasks := []item.Task{
		taskWithDue(1, datePtr(2024, time.June, 1)),
		taskWithDue(2, datePtr(2024, time.June, 14)),
		taskWithDue(3, datePtr(2024, time.June, 16)),
		taskWithDue(4, datePtr(2024, time.June, 30)),
		taskWithDue(5, datePtr(2025, time.June, 14)),
		taskWithDue(6, nil),
	}

	buckets := ClassifyByDueDate(tasks, ref)

	seen := map[int64]int{}
	total := 0
	for _, b := range BucketOrder {
		for _, task := range buckets[b] {
			seen[task.ID]++
			total++
		}
	}
	assert.Equal(t, len(tasks), total, "union of buckets equals input")
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.ID], "task %d appears in exactly one bucket", task.ID)
	}
}

func TestClassifyByDueDateOrdersWithinBucket(t *testing.T) {
	ref := date(2024, time.January, 15)
	tasks := []item.Task{
		taskWithDue(9, datePtr(2024, time.January, 5)),
		taskWithDue(3, datePtr(2024, time.January, 2)),
		taskWithDue(7, datePtr(2024, time.January, 2)),
	}

	buckets := ClassifyByDueDate(tasks, ref)

	assert.Equal(t, []int64{3, 7, 9}, ids(buckets[BucketOverdue]), "ascending due date, id breaks ties")
}

// The "Pay rent" scenario: created due eom on Jan 15, classified on Jan 31.
func TestEndOfMonthTaskIsDueTodayOnMonthEnd(t *testing.T) {
	created := date(2024, time.January, 15)
	dueDate, err := Resolve("eom", created)
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 31), dueDate)

	rent := taskWithDue(1, &dueDate)
	buckets := ClassifyByDueDate([]item.Task{rent}, date(2024, time.January, 31))
	assert.Equal(t, []int64{1}, ids(buckets[BucketDueToday]))
}

func TestClassifyByStatusExcludesDone(t *testing.T) {
	done := taskWithDue(4, nil)
	now := time.Now()
	done.Info.Status = item.StatusDone
	done.Info.CompletedAt = &now

	doing := taskWithDue(2, nil)
	doing.Info.Status = item.StatusDoing
	waiting := taskWithDue(3, nil)
	waiting.Info.Status = item.StatusWaiting

	groups := ClassifyByStatus([]item.Task{taskWithDue(1, nil), doing, waiting, done})

	assert.Equal(t, []int64{1}, ids(groups[item.StatusTodo]))
	assert.Equal(t, []int64{2}, ids(groups[item.StatusDoing]))
	assert.Equal(t, []int64{3}, ids(groups[item.StatusWaiting]))
	assert.NotContains(t, groups, item.StatusDone)
}

func ids(tasks []item.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
