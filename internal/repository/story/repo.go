package story

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

var (
	ErrStoryNotFound = errors.New("story not found")
	ErrPageNotFound  = errors.New("page not found")
)

// Repository is the in-memory owner of story records. The scheduler
// resolves page references through it, so every status and artifact
// update lands on the story that owns the page.
type Repository struct {
	mu      sync.RWMutex
	stories map[uuid.UUID]*model.Story
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{stories: make(map[uuid.UUID]*model.Story)}
}

// SaveStory stores a story record, replacing any previous version.
func (r *Repository) SaveStory(s model.Story) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := s
	stored.Pages = make([]model.Page, len(s.Pages))
	copy(stored.Pages, s.Pages)
	r.stories[s.ID] = &stored
}

// GetStory returns a copy of the story with the given id.
func (r *Repository) GetStory(id uuid.UUID) (model.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stories[id]
	if !ok {
		return model.Story{}, ErrStoryNotFound
	}

	out := *s
	out.Pages = make([]model.Page, len(s.Pages))
	copy(out.Pages, s.Pages)
	return out, nil
}

// GetPage returns a copy of one page of a story.
func (r *Repository) GetPage(ref model.PageRef) (model.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, err := r.page(ref)
	if err != nil {
		return model.Page{}, err
	}
	return *page, nil
}

// SetPageGenerating marks the referenced page as generating.
func (r *Repository) SetPageGenerating(ref model.PageRef) error {
	return r.updatePage(ref, func(p *model.Page) {
		p.IllustrationStatus = model.StatusGenerating
	})
}

// SetPageReady marks the referenced page ready and records the
// artifact location, clearing any prior failure.
func (r *Repository) SetPageReady(ref model.PageRef, illustrationRef string) error {
	return r.updatePage(ref, func(p *model.Page) {
		p.IllustrationStatus = model.StatusReady
		p.IllustrationRef = illustrationRef
	})
}

// SetPageFailed marks the referenced page failed and clears the
// artifact reference.
func (r *Repository) SetPageFailed(ref model.PageRef) error {
	return r.updatePage(ref, func(p *model.Page) {
		p.IllustrationStatus = model.StatusFailed
		p.IllustrationRef = ""
	})
}

// SetPageDescription records the planned illustration prompt. It is
// set once by the planner and not mutated afterwards.
func (r *Repository) SetPageDescription(ref model.PageRef, description string) error {
	return r.updatePage(ref, func(p *model.Page) {
		p.ImageDescription = description
	})
}

func (r *Repository) updatePage(ref model.PageRef, fn func(*model.Page)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, err := r.page(ref)
	if err != nil {
		return err
	}
	fn(page)
	return nil
}

func (r *Repository) page(ref model.PageRef) (*model.Page, error) {
	s, ok := r.stories[ref.StoryID]
	if !ok {
		return nil, fmt.Errorf("story %s: %w", ref.StoryID, ErrStoryNotFound)
	}
	for i := range s.Pages {
		if s.Pages[i].PageNumber == ref.PageNumber {
			return &s.Pages[i], nil
		}
	}
	return nil, fmt.Errorf("story %s page %d: %w", ref.StoryID, ref.PageNumber, ErrPageNotFound)
}
