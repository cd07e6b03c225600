package queue

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

// ErrDuplicateTask is returned when a non-terminal task for the same
// page already exists. It enforces at most one in-flight illustration
// per page.
var ErrDuplicateTask = errors.New("a task for this page is already queued or generating")

// entry pairs a task with its insertion sequence so ties within a
// priority band are broken FIFO.
type entry struct {
	task *model.IllustrationTask
	seq  uint64
}

// Queue holds illustration tasks awaiting or undergoing generation.
// It is safe for concurrent use by a producer and the draining
// scheduler; all mutation goes through its methods.
type Queue struct {
	mu      sync.Mutex
	entries map[uuid.UUID]entry
	nextSeq uint64
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{entries: make(map[uuid.UUID]entry)}
}

// AddTask inserts a pending task. It rejects the insert with
// ErrDuplicateTask if a non-terminal task for the same page is
// already present.
func (q *Queue) AddTask(task *model.IllustrationTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.task.Page == task.Page && !e.task.Status.Terminal() {
			return ErrDuplicateTask
		}
	}

	q.entries[task.ID] = entry{task: task, seq: q.nextSeq}
	q.nextSeq++
	return nil
}

// GetNextTask returns the highest-priority pending task, FIFO within
// a priority band, or nil when no pending task exists. Priority never
// preempts a task that is already generating.
func (q *Queue) GetNextTask() *model.IllustrationTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var best *entry
	for id := range q.entries {
		e := q.entries[id]
		if e.task.Status != model.StatusPending {
			continue
		}
		if best == nil ||
			e.task.Priority > best.task.Priority ||
			(e.task.Priority == best.task.Priority && e.seq < best.seq) {
			best = &e
		}
	}
	if best == nil {
		return nil
	}
	return best.task
}

// SetTaskStatus updates a held task's status under the queue lock, so
// status writes by the scheduler never race the duplicate check in
// AddTask. Unknown ids are ignored.
func (q *Queue) SetTaskStatus(id uuid.UUID, status model.IllustrationStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[id]; ok {
		e.task.Status = status
	}
}

// RemoveTask deletes a task by id. Removing an unknown id is a no-op.
func (q *Queue) RemoveTask(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, id)
}

// Len returns the number of tasks currently held, terminal or not.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
