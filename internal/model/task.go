package model

import "github.com/google/uuid"

// Priority orders illustration tasks in the queue. Higher values are
// dequeued first.
type Priority int

// The zero Priority is "unset"; callers that do not care get the
// default band chosen by the orchestrator.
const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// IllustrationTask is the scheduling unit driving generation of one
// page's artwork. Its status mirrors the referenced page's status and
// is mutated only by the scheduler.
type IllustrationTask struct {
	ID       uuid.UUID
	Page     PageRef
	Priority Priority
	Status   IllustrationStatus

	// Scheduled-time snapshot of the work: the planned illustration
	// prompt plus the page's position in the story.
	Description string
	PageIndex   int
	TotalPages  int

	// Done is closed by the scheduler once the task reaches a
	// terminal state. Producers wait on it.
	Done chan struct{}
}

// NewIllustrationTask creates a pending task for one page.
func NewIllustrationTask(ref PageRef, priority Priority, description string, pageIndex, totalPages int) *IllustrationTask {
	return &IllustrationTask{
		ID:          uuid.New(),
		Page:        ref,
		Priority:    priority,
		Status:      StatusPending,
		Description: description,
		PageIndex:   pageIndex,
		TotalPages:  totalPages,
		Done:        make(chan struct{}),
	}
}
