package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

// textGenerator defines the interface for the remote text-generation
// capability used to plan descriptions (e.g. an LLM chat endpoint).
type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Planner produces one illustration description per story page. It
// asks the remote capability for a context-consistent set first and
// falls back to a deterministic local template whenever the remote
// tier is unavailable, errors, or returns a mismatched count.
type Planner struct {
	generator textGenerator
}

// New creates a Planner. A nil generator disables the remote tier so
// every plan is served by the local fallback.
func New(g textGenerator) *Planner {
	return &Planner{generator: g}
}

// Plan returns exactly one description per page, in page order. It
// never fails: remote errors are absorbed into the fallback path.
func (p *Planner) Plan(ctx context.Context, pages []model.Page, theme string) []string {
	if len(pages) == 0 {
		return nil
	}

	if p.generator != nil {
		descriptions, err := p.planRemote(ctx, pages, theme)
		if err == nil {
			return descriptions
		}
		zlog.Logger.Warn().Err(err).Msg("remote description planning unavailable, using local fallback")
	}

	return p.planLocal(pages, theme)
}

// planRemote builds one combined prompt covering the whole story and
// parses the response into per-page descriptions. The result is
// accepted only when the description count matches the page count.
func (p *Planner) planRemote(ctx context.Context, pages []model.Page, theme string) ([]string, error) {
	prompt := buildStoryPrompt(pages, theme)

	response, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate descriptions: %w", err)
	}

	descriptions, err := parseDescriptions(response, len(pages))
	if err != nil {
		return nil, fmt.Errorf("parse descriptions: %w", err)
	}

	return descriptions, nil
}

// parseDescriptions tries a strict JSON list first and then the
// line-oriented heuristic. Both must yield exactly want descriptions.
func parseDescriptions(response string, want int) ([]string, error) {
	if descriptions, ok := parseJSONList(response, want); ok {
		return descriptions, nil
	}
	if descriptions, ok := parseNumberedLines(response, want); ok {
		return descriptions, nil
	}
	return nil, fmt.Errorf("expected %d descriptions, response did not parse", want)
}

// parseJSONList decodes the response as a JSON array of strings. The
// array may be wrapped in a markdown code fence.
func parseJSONList(response string, want int) ([]string, bool) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var descriptions []string
	if err := json.Unmarshal([]byte(text), &descriptions); err != nil {
		return nil, false
	}
	if len(descriptions) != want {
		return nil, false
	}
	for i, d := range descriptions {
		descriptions[i] = strings.TrimSpace(d)
		if descriptions[i] == "" {
			return nil, false
		}
	}
	return descriptions, true
}

// parseNumberedLines is the best-effort re-parse for a model that
// answered in prose: it collects lines marked "page k", "description
// k" or "k." and accepts only a complete set.
func parseNumberedLines(response string, want int) ([]string, bool) {
	descriptions := make([]string, 0, want)

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if text, ok := stripPageMarker(line, len(descriptions)+1); ok {
			descriptions = append(descriptions, text)
		}
	}

	if len(descriptions) != want {
		return nil, false
	}
	return descriptions, true
}

// stripPageMarker matches "page N:", "description N:" or "N." at the
// start of a line (case-insensitive) and returns the rest.
func stripPageMarker(line string, n int) (string, bool) {
	lower := strings.ToLower(line)
	for _, prefix := range []string{
		fmt.Sprintf("page %d:", n),
		fmt.Sprintf("page %d.", n),
		fmt.Sprintf("description %d:", n),
		fmt.Sprintf("description %d.", n),
		fmt.Sprintf("%d.", n),
		fmt.Sprintf("%d:", n),
	} {
		if strings.HasPrefix(lower, prefix) {
			text := strings.TrimSpace(line[len(prefix):])
			if text != "" {
				return text, true
			}
		}
	}
	return "", false
}
