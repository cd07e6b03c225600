package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
	"github.com/trmquang93/magical-stories-sub004/internal/pipeline"
	"github.com/trmquang93/magical-stories-sub004/internal/queue"
	storyrepo "github.com/trmquang93/magical-stories-sub004/internal/repository/story"
	"github.com/trmquang93/magical-stories-sub004/internal/storage/file"
)

var (
	// ErrPageNotFailed is returned when a retry is requested for a
	// page whose illustration did not fail.
	ErrPageNotFailed = errors.New("page has no failed illustration to retry")
	// ErrImageNotReady is returned when a page has no stored artwork
	// to serve.
	ErrImageNotReady = errors.New("page illustration is not ready")
)

// producer defines the interface for enqueueing illustration requests
// into the message broker.
type producer interface {
	Produce(ctx context.Context, req model.IllustrationRequest) error
}

// artifactStore defines the interface for reading stored artwork.
type artifactStore interface {
	Load(ctx context.Context, path string) (io.ReadCloser, error)
}

// Service provides the business logic for illustrated stories: intake
// of new stories, running the pipeline on the consumer side, serving
// results and manual per-page retries.
type Service struct {
	stories      *storyrepo.Repository
	producer     producer
	orchestrator *pipeline.Orchestrator
	queue        *queue.Queue
	store        artifactStore
}

// NewService creates a Service.
func NewService(
	stories *storyrepo.Repository,
	p producer,
	orch *pipeline.Orchestrator,
	q *queue.Queue,
	store artifactStore,
) *Service {
	return &Service{
		stories:      stories,
		producer:     p,
		orchestrator: orch,
		queue:        q,
		store:        store,
	}
}

// CreateStory registers a story record and enqueues an illustration
// request for asynchronous processing. The returned story has no
// pages yet; they appear once the pipeline has run.
func (s *Service) CreateStory(ctx context.Context, title, text, theme string, priority model.Priority) (model.Story, error) {
	story := model.Story{
		ID:        uuid.New(),
		Title:     title,
		Theme:     theme,
		CreatedAt: time.Now().UTC(),
	}
	s.stories.SaveStory(story)

	req := model.IllustrationRequest{
		StoryID:  story.ID,
		Title:    title,
		Text:     text,
		Theme:    theme,
		Priority: priority,
	}
	if err := s.producer.Produce(ctx, req); err != nil {
		return model.Story{}, fmt.Errorf("create story: failed to enqueue request: %w", err)
	}

	zlog.Logger.Info().Str("story_id", story.ID.String()).Msg("story queued for illustration")
	return story, nil
}

// Illustrate runs the pipeline for one queued request. Per-page
// illustration failures are recorded on the pages, not returned.
func (s *Service) Illustrate(ctx context.Context, req model.IllustrationRequest) error {
	_, err := s.orchestrator.Run(ctx, pipeline.Request{
		ID:       req.StoryID,
		Title:    req.Title,
		RawText:  req.Text,
		Theme:    req.Theme,
		Priority: req.Priority,
	})
	return err
}

// GetStory returns the story with the given id.
func (s *Service) GetStory(ctx context.Context, id uuid.UUID) (model.Story, error) {
	return s.stories.GetStory(id)
}

// RetryPage re-enqueues a brand-new high-priority task for a page
// whose illustration failed. The retry is explicit caller action;
// terminal tasks are never retried automatically.
func (s *Service) RetryPage(ctx context.Context, storyID uuid.UUID, pageNumber int) (uuid.UUID, error) {
	ref := model.PageRef{StoryID: storyID, PageNumber: pageNumber}

	page, err := s.stories.GetPage(ref)
	if err != nil {
		return uuid.Nil, err
	}
	if page.IllustrationStatus != model.StatusFailed {
		return uuid.Nil, ErrPageNotFailed
	}

	story, err := s.stories.GetStory(storyID)
	if err != nil {
		return uuid.Nil, err
	}

	description := page.ImageDescription
	if description == "" {
		description = page.Content
	}

	task := model.NewIllustrationTask(ref, model.PriorityHigh, description, pageNumber-1, len(story.Pages))
	if err := s.queue.AddTask(task); err != nil {
		return uuid.Nil, fmt.Errorf("retry page: %w", err)
	}

	zlog.Logger.Info().
		Str("story_id", storyID.String()).
		Int("page", pageNumber).
		Str("task_id", task.ID.String()).
		Msg("page re-enqueued for illustration")
	return task.ID, nil
}

// PageImage streams the stored artwork of a ready page along with its
// content type.
func (s *Service) PageImage(ctx context.Context, storyID uuid.UUID, pageNumber int) (io.ReadCloser, string, error) {
	page, err := s.stories.GetPage(model.PageRef{StoryID: storyID, PageNumber: pageNumber})
	if err != nil {
		return nil, "", err
	}
	if page.IllustrationStatus != model.StatusReady || page.IllustrationRef == "" {
		return nil, "", ErrImageNotReady
	}

	rc, err := s.store.Load(ctx, page.IllustrationRef)
	if err != nil {
		return nil, "", fmt.Errorf("load page image: %w", err)
	}

	return rc, file.ContentTypeFor(page.IllustrationRef), nil
}
