package item

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo    Status = "todo"
	StatusDoing   Status = "doing"
	StatusWaiting Status = "waiting"
	StatusDone    Status = "done"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusTodo:
		return StatusTodo, nil
	case StatusDoing:
		return StatusDoing, nil
	case StatusWaiting:
		return StatusWaiting, nil
	case StatusDone:
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Effect is a follow-up command produced by a status transition. The caller
// executes effects in the same unit of work as the transition write.
type Effect interface {
	effect()
}

// SpawnSuccessor asks the caller to create the next occurrence of a
// recurring task. Base is the date the next due date is computed from:
// the task's own due date, or the completion time when it had none.
type SpawnSuccessor struct {
	Base time.Time
}

func (SpawnSuccessor) effect() {}

// Transition moves a task to next and returns the updated info plus any
// follow-up effects. Entering done stamps CompletedAt and, for recurring
// tasks, emits a SpawnSuccessor; leaving done clears CompletedAt. A
// transition from done to done changes nothing, so completing twice never
// spawns a second successor.
func Transition(info TaskInfo, next Status, now time.Time) (TaskInfo, []Effect) {
	if info.Status == next {
		return info, nil
	}

	info.Status = next
	if next == StatusDone {
		completed := now
		info.CompletedAt = &completed
		if info.Recur != nil {
			base := now
			if info.DueDate != nil {
				base = *info.DueDate
			}
			return info, []Effect{SpawnSuccessor{Base: base}}
		}
		return info, nil
	}

	info.CompletedAt = nil
	return info, nil
}
