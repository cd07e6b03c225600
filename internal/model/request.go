package model

import "github.com/google/uuid"

// IllustrationRequest is the queue message asking the worker to run
// the illustration pipeline for one story.
type IllustrationRequest struct {
	StoryID  uuid.UUID `json:"story_id"`
	Title    string    `json:"title"`
	Text     string    `json:"text"`
	Theme    string    `json:"theme"`
	Priority Priority  `json:"priority,omitempty"`
}
