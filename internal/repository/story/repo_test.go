package story

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

func newStory(pages int) model.Story {
	s := model.Story{ID: uuid.New(), Title: "The Lost Kite", Theme: "wind"}
	for i := 0; i < pages; i++ {
		s.Pages = append(s.Pages, model.Page{
			PageNumber:         i + 1,
			Content:            "page content",
			IllustrationStatus: model.StatusPending,
		})
	}
	return s
}

func TestSaveAndGetStory(t *testing.T) {
	repo := NewRepository()
	s := newStory(2)
	repo.SaveStory(s)

	got, err := repo.GetStory(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = repo.GetStory(uuid.New())
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestGetStoryReturnsCopy(t *testing.T) {
	repo := NewRepository()
	s := newStory(1)
	repo.SaveStory(s)

	got, err := repo.GetStory(s.ID)
	require.NoError(t, err)
	got.Pages[0].IllustrationStatus = model.StatusReady

	again, err := repo.GetStory(s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, again.Pages[0].IllustrationStatus)
}

func TestSaveStoryReplaces(t *testing.T) {
	repo := NewRepository()
	s := newStory(1)
	repo.SaveStory(s)

	s.Title = "The Found Kite"
	s.Pages = append(s.Pages, model.Page{PageNumber: 2, Content: "more", IllustrationStatus: model.StatusPending})
	repo.SaveStory(s)

	got, err := repo.GetStory(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Found Kite", got.Title)
	assert.Len(t, got.Pages, 2)
}

func TestPageStatusTransitions(t *testing.T) {
	repo := NewRepository()
	s := newStory(2)
	repo.SaveStory(s)
	ref := model.PageRef{StoryID: s.ID, PageNumber: 2}

	require.NoError(t, repo.SetPageGenerating(ref))
	page, err := repo.GetPage(ref)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGenerating, page.IllustrationStatus)

	require.NoError(t, repo.SetPageReady(ref, "illustrations/a.png"))
	page, err = repo.GetPage(ref)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, page.IllustrationStatus)
	assert.Equal(t, "illustrations/a.png", page.IllustrationRef)

	// Failure clears the artifact reference.
	require.NoError(t, repo.SetPageFailed(ref))
	page, err = repo.GetPage(ref)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, page.IllustrationStatus)
	assert.Empty(t, page.IllustrationRef)

	// The sibling page is untouched.
	other, err := repo.GetPage(model.PageRef{StoryID: s.ID, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, other.IllustrationStatus)
}

func TestSetPageDescription(t *testing.T) {
	repo := NewRepository()
	s := newStory(1)
	repo.SaveStory(s)
	ref := model.PageRef{StoryID: s.ID, PageNumber: 1}

	require.NoError(t, repo.SetPageDescription(ref, "a kite over the hills"))
	page, err := repo.GetPage(ref)
	require.NoError(t, err)
	assert.Equal(t, "a kite over the hills", page.ImageDescription)
}

func TestUnknownPageRef(t *testing.T) {
	repo := NewRepository()
	s := newStory(1)
	repo.SaveStory(s)

	err := repo.SetPageReady(model.PageRef{StoryID: s.ID, PageNumber: 9}, "x")
	assert.ErrorIs(t, err, ErrPageNotFound)

	err = repo.SetPageFailed(model.PageRef{StoryID: uuid.New(), PageNumber: 1})
	assert.ErrorIs(t, err, ErrStoryNotFound)

	_, err = repo.GetPage(model.PageRef{StoryID: s.ID, PageNumber: 0})
	assert.ErrorIs(t, err, ErrPageNotFound)
}
