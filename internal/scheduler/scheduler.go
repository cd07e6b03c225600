package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
	"github.com/trmquang93/magical-stories-sub004/internal/queue"
)

// idlePollInterval is how often an idle scheduler re-checks the queue
// for newly added tasks.
const idlePollInterval = 200 * time.Millisecond

// Illustrator defines the interface for the remote
// illustration-generation capability. An empty ref with a nil error is
// the valid "no image produced" outcome; both it and an error mark the
// task failed.
type Illustrator interface {
	GenerateIllustration(ctx context.Context, description string, pageIndex, totalPages int) (string, error)
}

// pageStore defines the interface for resolving page references and
// recording illustration outcomes on the owning story.
type pageStore interface {
	SetPageGenerating(ref model.PageRef) error
	SetPageReady(ref model.PageRef, illustrationRef string) error
	SetPageFailed(ref model.PageRef) error
}

// Scheduler drains the task queue with a single worker: it pulls the
// highest-priority pending task, drives the illustration capability
// with retries, records the outcome on the referenced page, and paces
// itself between tasks to respect remote rate limits.
type Scheduler struct {
	queue       *queue.Queue
	illustrator Illustrator
	pages       pageStore
	strategy    retry.Strategy
	pacing      time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	stopped chan struct{}
}

// New creates a Scheduler over the given queue.
// - strategy: retry policy for each illustration call
// - pacing: delay applied between tasks beyond the first
func New(q *queue.Queue, ill Illustrator, pages pageStore, strategy retry.Strategy, pacing time.Duration) *Scheduler {
	return &Scheduler{
		queue:       q,
		illustrator: ill,
		pages:       pages,
		strategy:    strategy,
		pacing:      pacing,
	}
}

// StartProcessing launches the draining worker. It returns false if
// the scheduler is already processing.
func (s *Scheduler) StartProcessing(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.run(ctx, s.stop, s.stopped)
	return true
}

// StopProcessing halts the worker after the in-flight task completes
// and blocks until it has exited. Safe to call at any time, including
// when the scheduler is not running.
func (s *Scheduler) StopProcessing() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stop, stopped := s.stop, s.stopped
	s.mu.Unlock()

	select {
	case <-stop:
	default:
		close(stop)
	}
	<-stopped
}

// IsProcessing reports whether the draining worker is active.
func (s *Scheduler) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run is the single-worker loop: at most one task is generating at
// any instant. Sleeps between tasks, between retry attempts and while
// idling are cancellable via stop or context.
func (s *Scheduler) run(ctx context.Context, stop, stopped chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(stopped)
	}()

	processed := false
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		task := s.queue.GetNextTask()
		if task == nil {
			// Remain started but idle until a task arrives.
			if !s.sleep(ctx, stop, idlePollInterval) {
				return
			}
			continue
		}

		if processed && !s.sleep(ctx, stop, s.pacing) {
			return
		}

		s.execute(ctx, stop, task)
		processed = true

		// Terminal tasks leave the queue; waiters are released.
		s.queue.RemoveTask(task.ID)
		close(task.Done)
	}
}

// execute runs one task to a terminal state. Failures are recorded,
// never propagated: the remaining tasks still run.
func (s *Scheduler) execute(ctx context.Context, stop chan struct{}, task *model.IllustrationTask) {
	s.queue.SetTaskStatus(task.ID, model.StatusGenerating)
	if err := s.pages.SetPageGenerating(task.Page); err != nil {
		zlog.Logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("failed to mark page generating")
	}

	zlog.Logger.Info().
		Str("task_id", task.ID.String()).
		Str("story_id", task.Page.StoryID.String()).
		Int("page", task.Page.PageNumber).
		Str("priority", task.Priority.String()).
		Msg("generating illustration")

	artifactRef, err := s.generate(ctx, stop, task)

	if err != nil || artifactRef == "" {
		s.queue.SetTaskStatus(task.ID, model.StatusFailed)
		if err := s.pages.SetPageFailed(task.Page); err != nil {
			zlog.Logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("failed to mark page failed")
		}
		zlog.Logger.Warn().
			Err(err).
			Str("task_id", task.ID.String()).
			Int("page", task.Page.PageNumber).
			Msg("illustration generation failed")
		return
	}

	s.queue.SetTaskStatus(task.ID, model.StatusReady)
	if err := s.pages.SetPageReady(task.Page, artifactRef); err != nil {
		zlog.Logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("failed to mark page ready")
	}
	zlog.Logger.Info().
		Str("task_id", task.ID.String()).
		Int("page", task.Page.PageNumber).
		Str("ref", artifactRef).
		Msg("illustration ready")
}

// generate drives the illustration call under the retry policy. The
// inter-attempt backoff is a cancellable suspension point: a stop or
// context cancellation abandons the remaining attempts immediately
// instead of riding out the backoff chain.
func (s *Scheduler) generate(ctx context.Context, stop chan struct{}, task *model.IllustrationTask) (string, error) {
	delay := s.strategy.Delay

	var lastErr error
	for attempt := 1; attempt <= s.strategy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		ref, err := s.illustrator.GenerateIllustration(ctx, task.Description, task.PageIndex, task.TotalPages)
		if err == nil {
			return ref, nil
		}
		lastErr = err

		if attempt == s.strategy.Attempts {
			break
		}
		if !s.sleep(ctx, stop, delay) {
			break
		}
		delay = time.Duration(float64(delay) * s.strategy.Backoff)
	}

	return "", lastErr
}

// sleep waits for d and reports whether the wait completed without a
// stop or context cancellation.
func (s *Scheduler) sleep(ctx context.Context, stop chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}
