package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/api/respond"
	"github.com/trmquang93/magical-stories-sub004/internal/model"
	"github.com/trmquang93/magical-stories-sub004/internal/queue"
	storyrepo "github.com/trmquang93/magical-stories-sub004/internal/repository/story"
	storysvc "github.com/trmquang93/magical-stories-sub004/internal/service/story"
)

// service defines the interface for story-related operations.
type service interface {
	CreateStory(ctx context.Context, title, text, theme string, priority model.Priority) (model.Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (model.Story, error)
	RetryPage(ctx context.Context, storyID uuid.UUID, pageNumber int) (uuid.UUID, error)
	PageImage(ctx context.Context, storyID uuid.UUID, pageNumber int) (io.ReadCloser, string, error)
}

// Handler provides HTTP handlers for story endpoints.
// It depends on a service interface to perform the business logic.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// CreateRequest is the intake payload for a new story.
type CreateRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Theme    string `json:"theme"`
	Priority string `json:"priority"` // low / medium / high / critical
}

// Create accepts raw story text and queues it for segmentation and
// illustration. The response carries the story id to poll.
func (h *Handler) Create(c *ginext.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respond.Fail(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	story, err := h.service.CreateStory(c.Request.Context(), req.Title, req.Text, req.Theme, priority)
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to create story")
		respond.Fail(c, http.StatusInternalServerError, errors.New("failed to create story"))
		return
	}

	respond.Created(c, story)
}

// Get returns a story with its pages, statuses and artifact refs.
func (h *Handler) Get(c *ginext.Context) {
	id, err := parseStoryID(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	story, err := h.service.GetStory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storyrepo.ErrStoryNotFound) {
			respond.Fail(c, http.StatusNotFound, err)
			return
		}
		respond.Fail(c, http.StatusInternalServerError, err)
		return
	}

	respond.OK(c, story)
}

// PageImage serves the stored artwork for one page.
func (h *Handler) PageImage(c *ginext.Context) {
	id, pageNumber, err := parsePageRef(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	rc, contentType, err := h.service.PageImage(c.Request.Context(), id, pageNumber)
	if err != nil {
		switch {
		case errors.Is(err, storyrepo.ErrStoryNotFound), errors.Is(err, storyrepo.ErrPageNotFound):
			respond.Fail(c, http.StatusNotFound, err)
		case errors.Is(err, storysvc.ErrImageNotReady):
			respond.Fail(c, http.StatusConflict, err)
		default:
			zlog.Logger.Err(err).Msg("failed to load page image")
			respond.Fail(c, http.StatusInternalServerError, errors.New("failed to load page image"))
		}
		return
	}
	defer rc.Close()

	respond.Image(c, http.StatusOK, contentType, rc)
}

// RetryPage re-enqueues a failed page for illustration.
func (h *Handler) RetryPage(c *ginext.Context) {
	id, pageNumber, err := parsePageRef(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	taskID, err := h.service.RetryPage(c.Request.Context(), id, pageNumber)
	if err != nil {
		switch {
		case errors.Is(err, storyrepo.ErrStoryNotFound), errors.Is(err, storyrepo.ErrPageNotFound):
			respond.Fail(c, http.StatusNotFound, err)
		case errors.Is(err, storysvc.ErrPageNotFailed), errors.Is(err, queue.ErrDuplicateTask):
			respond.Fail(c, http.StatusConflict, err)
		default:
			zlog.Logger.Err(err).Msg("failed to retry page")
			respond.Fail(c, http.StatusInternalServerError, errors.New("failed to retry page"))
		}
		return
	}

	respond.Accepted(c, map[string]interface{}{
		"task_id":     taskID,
		"page_number": pageNumber,
	})
}

func parseStoryID(c *ginext.Context) (uuid.UUID, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return uuid.Nil, errors.New("missing id")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %v", err)
	}
	return id, nil
}

func parsePageRef(c *ginext.Context) (uuid.UUID, int, error) {
	id, err := parseStoryID(c)
	if err != nil {
		return uuid.Nil, 0, err
	}

	pageNumber, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageNumber < 1 {
		return uuid.Nil, 0, errors.New("invalid page number")
	}
	return id, pageNumber, nil
}

func parsePriority(s string) (model.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil // orchestrator default
	case "low":
		return model.PriorityLow, nil
	case "medium":
		return model.PriorityMedium, nil
	case "high":
		return model.PriorityHigh, nil
	case "critical":
		return model.PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority: %s", s)
	}
}
