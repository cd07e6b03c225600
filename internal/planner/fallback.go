package planner

import (
	"fmt"
	"strings"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

// contextSummaryLength bounds the preceding/following story excerpts
// folded into a fallback description.
const contextSummaryLength = 200

// planLocal synthesizes one description per page from a fixed
// template. It is deterministic and makes no remote calls, so the
// pipeline can always proceed without the text-generation capability.
func (p *Planner) planLocal(pages []model.Page, theme string) []string {
	descriptions := make([]string, 0, len(pages))
	for i := range pages {
		descriptions = append(descriptions, localDescription(pages, i, theme))
	}
	return descriptions
}

func localDescription(pages []model.Page, i int, theme string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Children's book illustration for page %d of %d", i+1, len(pages))
	if theme != "" {
		fmt.Fprintf(&b, ", themed %q", theme)
	}
	fmt.Fprintf(&b, ". Scene: %s", pages[i].Content)

	if before := summarize(pages[:i]); before != "" {
		fmt.Fprintf(&b, " Story so far: %s", before)
	}
	if after := summarize(pages[i+1:]); after != "" {
		fmt.Fprintf(&b, " Story continues: %s", after)
	}

	b.WriteString(" Keep every character's appearance, clothing and color palette consistent with the other illustrations in this story.")
	return b.String()
}

// summarize joins page contents and truncates to the context summary
// length at a rune boundary.
func summarize(pages []model.Page) string {
	if len(pages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		parts = append(parts, page.Content)
	}
	joined := strings.Join(parts, " ")

	runes := []rune(joined)
	if len(runes) <= contextSummaryLength {
		return joined
	}
	return string(runes[:contextSummaryLength]) + "..."
}
