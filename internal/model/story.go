package model

import (
	"time"

	"github.com/google/uuid"
)

// IllustrationStatus represents the lifecycle of a page's illustration.
type IllustrationStatus string

const (
	StatusPending    IllustrationStatus = "pending"
	StatusGenerating IllustrationStatus = "generating"
	StatusReady      IllustrationStatus = "ready"
	StatusFailed     IllustrationStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s IllustrationStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Page is one displayable unit of story text together with the
// lifecycle of its illustration.
type Page struct {
	Content            string             `json:"content"`
	PageNumber         int                `json:"page_number"` // 1-based, strictly increasing
	ImageDescription   string             `json:"image_description,omitempty"`
	IllustrationStatus IllustrationStatus `json:"illustration_status"`
	// IllustrationRef is the stable object path of the generated
	// artwork. Set only on StatusReady, cleared on StatusFailed.
	IllustrationRef string `json:"illustration_ref,omitempty"`
}

// Story is an ordered sequence of pages plus the theme used for
// illustration prompts. A story owns its pages exclusively.
type Story struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Theme     string    `json:"theme"`
	Pages     []Page    `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

// PageRef addresses a page by story id and page number. Tasks carry a
// PageRef rather than an owning pointer into the story.
type PageRef struct {
	StoryID    uuid.UUID `json:"story_id"`
	PageNumber int       `json:"page_number"`
}
