package queue

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

func newTask(storyID uuid.UUID, page int, priority model.Priority) *model.IllustrationTask {
	return model.NewIllustrationTask(
		model.PageRef{StoryID: storyID, PageNumber: page},
		priority,
		"a description",
		page-1,
		10,
	)
}

func TestQueue_PriorityOrdering(t *testing.T) {
	q := New()
	storyID := uuid.New()

	for i, p := range []model.Priority{
		model.PriorityLow,
		model.PriorityCritical,
		model.PriorityMedium,
		model.PriorityHigh,
	} {
		require.NoError(t, q.AddTask(newTask(storyID, i+1, p)))
	}

	var order []model.Priority
	for {
		task := q.GetNextTask()
		if task == nil {
			break
		}
		order = append(order, task.Priority)
		q.SetTaskStatus(task.ID, model.StatusGenerating)
	}

	assert.Equal(t, []model.Priority{
		model.PriorityCritical,
		model.PriorityHigh,
		model.PriorityMedium,
		model.PriorityLow,
	}, order)
}

func TestQueue_FIFOWithinPriorityBand(t *testing.T) {
	q := New()
	storyID := uuid.New()

	first := newTask(storyID, 1, model.PriorityMedium)
	second := newTask(storyID, 2, model.PriorityMedium)
	third := newTask(storyID, 3, model.PriorityMedium)
	for _, task := range []*model.IllustrationTask{first, second, third} {
		require.NoError(t, q.AddTask(task))
	}

	for _, want := range []uuid.UUID{first.ID, second.ID, third.ID} {
		task := q.GetNextTask()
		require.NotNil(t, task)
		assert.Equal(t, want, task.ID)
		q.SetTaskStatus(task.ID, model.StatusGenerating)
	}
}

func TestQueue_AtMostOneInFlightPerPage(t *testing.T) {
	q := New()
	storyID := uuid.New()

	task := newTask(storyID, 1, model.PriorityMedium)
	require.NoError(t, q.AddTask(task))

	t.Run("second pending task for the page is rejected", func(t *testing.T) {
		err := q.AddTask(newTask(storyID, 1, model.PriorityHigh))
		assert.ErrorIs(t, err, ErrDuplicateTask)
	})

	t.Run("still rejected while generating", func(t *testing.T) {
		q.SetTaskStatus(task.ID, model.StatusGenerating)
		err := q.AddTask(newTask(storyID, 1, model.PriorityHigh))
		assert.ErrorIs(t, err, ErrDuplicateTask)
	})

	t.Run("same page of another story is fine", func(t *testing.T) {
		assert.NoError(t, q.AddTask(newTask(uuid.New(), 1, model.PriorityMedium)))
	})

	t.Run("accepted again after the task is terminal", func(t *testing.T) {
		q.SetTaskStatus(task.ID, model.StatusFailed)
		assert.NoError(t, q.AddTask(newTask(storyID, 1, model.PriorityHigh)))
	})
}

func TestQueue_RemoveTask(t *testing.T) {
	q := New()
	task := newTask(uuid.New(), 1, model.PriorityMedium)
	require.NoError(t, q.AddTask(task))
	require.Equal(t, 1, q.Len())

	q.RemoveTask(task.ID)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.GetNextTask())

	// Removing an unknown id is a no-op.
	q.RemoveTask(uuid.New())
}

func TestQueue_GeneratingTaskIsNotReturned(t *testing.T) {
	q := New()
	task := newTask(uuid.New(), 1, model.PriorityCritical)
	require.NoError(t, q.AddTask(task))

	q.SetTaskStatus(task.ID, model.StatusGenerating)
	assert.Nil(t, q.GetNextTask())
}

func TestQueue_ConcurrentAccess(t *testing.T) {
	q := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			storyID := uuid.New()
			for page := 1; page <= 25; page++ {
				_ = q.AddTask(newTask(storyID, page, model.PriorityMedium))
				if task := q.GetNextTask(); task != nil {
					q.SetTaskStatus(task.ID, model.StatusReady)
					q.RemoveTask(task.ID)
				}
			}
		}(i)
	}
	wg.Wait()
}
