package segmenter

import (
	"regexp"
	"strings"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

const (
	// MaxPageLength is the maximum number of characters on one page.
	MaxPageLength = 500
	// MaxParagraphsPerPage bounds how many paragraphs are folded
	// into a single page.
	MaxParagraphsPerPage = 2
	// PageDelimiter is the explicit page-break marker. When present
	// it always wins over paragraph-based pagination.
	PageDelimiter = "---"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Segmenter splits raw story text into an ordered sequence of pages.
// It is pure and deterministic: fixed input always yields the same
// page boundaries.
type Segmenter struct{}

// New creates a Segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// Segment splits rawText into pages numbered from 1, all with a
// pending illustration status. Empty or whitespace-only input yields
// an empty sequence rather than an error.
func (s *Segmenter) Segment(rawText string) []model.Page {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil
	}

	var contents []string
	if strings.Contains(text, PageDelimiter) {
		contents = splitOnDelimiter(text)
	} else {
		contents = splitOnParagraphs(text)
	}

	pages := make([]model.Page, 0, len(contents))
	for i, content := range contents {
		pages = append(pages, model.Page{
			Content:            content,
			PageNumber:         i + 1,
			IllustrationStatus: model.StatusPending,
		})
	}
	return pages
}

// splitOnDelimiter splits on the explicit page-break marker,
// discarding segments that trim to empty.
func splitOnDelimiter(text string) []string {
	var contents []string
	for _, segment := range strings.Split(text, PageDelimiter) {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			contents = append(contents, segment)
		}
	}
	return contents
}

// splitOnParagraphs paginates by folding consecutive paragraphs into
// pages while both the length and the paragraphs-per-page bounds
// hold. A paragraph longer than a whole page is carved up on its own.
func splitOnParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}

	// Short story: one page holds everything.
	if len([]rune(text)) <= MaxPageLength && len(paragraphs) <= MaxParagraphsPerPage {
		return []string{text}
	}

	var (
		contents  []string
		current   strings.Builder
		paraCount int
	)
	flush := func() {
		if current.Len() > 0 {
			contents = append(contents, strings.TrimSpace(current.String()))
			current.Reset()
			paraCount = 0
		}
	}

	for _, paragraph := range paragraphs {
		paraLen := len([]rune(paragraph))

		// An oversized paragraph is split independently. Flush any
		// partially built page first so split fragments never mix
		// with normal paragraphs.
		if paraLen > MaxPageLength {
			flush()
			contents = append(contents, splitLongParagraph(paragraph)...)
			continue
		}

		joined := paraLen
		if current.Len() > 0 {
			joined += len([]rune(current.String())) + 2 // +2 for the paragraph break
		}
		if current.Len() > 0 && (joined > MaxPageLength || paraCount+1 > MaxParagraphsPerPage) {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
		paraCount++
	}
	flush()

	return contents
}

// splitLongParagraph carves pages out of a single paragraph that
// exceeds the page length. Each cut prefers the last sentence-terminal
// punctuation within the window, then the last whitespace boundary,
// and finally a hard cut at exactly the length limit.
func splitLongParagraph(paragraph string) []string {
	var contents []string
	remaining := []rune(strings.TrimSpace(paragraph))

	for len(remaining) > 0 {
		if len(remaining) <= MaxPageLength {
			contents = append(contents, string(remaining))
			break
		}

		window := remaining[:MaxPageLength]
		cut := lastSentenceEnd(window)
		if cut < 0 {
			cut = lastWhitespace(window)
		}
		if cut < 0 {
			cut = MaxPageLength - 1
		}

		page := strings.TrimSpace(string(remaining[:cut+1]))
		if page != "" {
			contents = append(contents, page)
		}
		remaining = []rune(strings.TrimSpace(string(remaining[cut+1:])))
	}

	return contents
}

func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}

func lastWhitespace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case ' ', '\t', '\n', '\r':
			return i
		}
	}
	return -1
}
