package planner

import (
	"fmt"
	"strings"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

// buildStoryPrompt assembles the single remote-tier prompt covering
// the full story, so the model can keep characters, palette and
// spatial layout consistent across pages.
func buildStoryPrompt(pages []model.Page, theme string) string {
	var b strings.Builder

	b.WriteString("You are an art director planning illustrations for a children's picture book.\n")
	fmt.Fprintf(&b, "The story has %d pages", len(pages))
	if theme != "" {
		fmt.Fprintf(&b, " and its theme is %q", theme)
	}
	b.WriteString(".\n\n")

	for _, page := range pages {
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", page.PageNumber, page.Content)
	}

	fmt.Fprintf(&b, "Write one illustration description per page, %d in total. ", len(pages))
	b.WriteString("Keep character appearance, clothing, color palette and spatial layout consistent across all pages. ")
	b.WriteString("Respond with only a JSON array of strings, one element per page, in page order.")

	return b.String()
}
