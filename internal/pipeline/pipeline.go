package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
	"github.com/trmquang93/magical-stories-sub004/internal/planner"
	"github.com/trmquang93/magical-stories-sub004/internal/queue"
	"github.com/trmquang93/magical-stories-sub004/internal/repository/story"
	"github.com/trmquang93/magical-stories-sub004/internal/scheduler"
	"github.com/trmquang93/magical-stories-sub004/internal/segmenter"
)

// Request describes one story to illustrate. A zero ID means the
// orchestrator assigns one; a zero Priority enqueues at the default
// medium band.
type Request struct {
	ID       uuid.UUID
	Title    string
	RawText  string
	Theme    string
	Priority model.Priority
}

// Orchestrator composes the illustration pipeline: it segments raw
// text into pages, plans per-page descriptions, enqueues one task per
// page and waits for the scheduler to bring every task to a terminal
// state.
type Orchestrator struct {
	segmenter *segmenter.Segmenter
	planner   *planner.Planner
	queue     *queue.Queue
	scheduler *scheduler.Scheduler
	stories   *story.Repository
}

// New creates an Orchestrator. The queue and scheduler are shared
// with the rest of the application; the orchestrator starts the
// scheduler if it is not already processing.
func New(
	seg *segmenter.Segmenter,
	pl *planner.Planner,
	q *queue.Queue,
	sched *scheduler.Scheduler,
	stories *story.Repository,
) *Orchestrator {
	return &Orchestrator{
		segmenter: seg,
		planner:   pl,
		queue:     q,
		scheduler: sched,
		stories:   stories,
	}
}

// Run drives one story through the full pipeline and returns it with
// every page in a terminal illustration state. Individual page
// failures are expected output, never an error; the only error path
// is context cancellation while waiting.
func (o *Orchestrator) Run(ctx context.Context, req Request) (model.Story, error) {
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	priority := req.Priority
	if priority == 0 {
		priority = model.PriorityMedium
	}

	pages := o.segmenter.Segment(req.RawText)
	descriptions := o.planner.Plan(ctx, pages, req.Theme)
	for i := range pages {
		pages[i].ImageDescription = descriptions[i]
	}

	s := model.Story{
		ID:        id,
		Title:     req.Title,
		Theme:     req.Theme,
		Pages:     pages,
		CreatedAt: time.Now().UTC(),
	}
	o.stories.SaveStory(s)

	if len(pages) == 0 {
		return s, nil
	}

	zlog.Logger.Info().
		Str("story_id", id.String()).
		Int("pages", len(pages)).
		Str("priority", priority.String()).
		Msg("enqueueing illustration tasks")

	tasks := make([]*model.IllustrationTask, 0, len(pages))
	for i, page := range pages {
		description := page.ImageDescription
		if description == "" {
			description = page.Content
		}

		task := model.NewIllustrationTask(
			model.PageRef{StoryID: id, PageNumber: page.PageNumber},
			priority,
			description,
			i,
			len(pages),
		)
		if err := o.queue.AddTask(task); err != nil {
			// Another non-terminal task already covers this page.
			zlog.Logger.Warn().Err(err).
				Str("story_id", id.String()).
				Int("page", page.PageNumber).
				Msg("skipping enqueue")
			continue
		}
		tasks = append(tasks, task)
	}

	o.scheduler.StartProcessing(ctx)

	for _, task := range tasks {
		select {
		case <-task.Done:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}

	return o.stories.GetStory(id)
}
