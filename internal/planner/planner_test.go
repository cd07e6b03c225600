package planner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

// stubGenerator returns a canned response or error for every prompt.
type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.response, g.err
}

func storyPages(contents ...string) []model.Page {
	pages := make([]model.Page, 0, len(contents))
	for i, c := range contents {
		pages = append(pages, model.Page{
			Content:            c,
			PageNumber:         i + 1,
			IllustrationStatus: model.StatusPending,
		})
	}
	return pages
}

func TestPlan_EmptyPages(t *testing.T) {
	p := New(&stubGenerator{response: "[]"})
	assert.Empty(t, p.Plan(context.Background(), nil, "forest"))
}

func TestPlan_RemoteJSONList(t *testing.T) {
	pages := storyPages("A fox wakes up.", "The fox finds a map.")

	t.Run("plain array", func(t *testing.T) {
		g := &stubGenerator{response: `["A sleepy fox in a den.", "The fox holding an old map."]`}
		p := New(g)

		got := p.Plan(context.Background(), pages, "adventure")
		assert.Equal(t, []string{"A sleepy fox in a den.", "The fox holding an old map."}, got)
		assert.Equal(t, 1, g.calls)
	})

	t.Run("array wrapped in a code fence", func(t *testing.T) {
		g := &stubGenerator{response: "```json\n[\"one\", \"two\"]\n```"}
		p := New(g)

		got := p.Plan(context.Background(), pages, "")
		assert.Equal(t, []string{"one", "two"}, got)
	})
}

func TestPlan_RemoteNumberedLines(t *testing.T) {
	pages := storyPages("A", "B", "C")
	g := &stubGenerator{response: strings.Join([]string{
		"Here are the descriptions:",
		"Page 1: A fox in the woods.",
		"",
		"Page 2: The fox by a river.",
		"Description 3: The fox at home.",
	}, "\n")}
	p := New(g)

	got := p.Plan(context.Background(), pages, "")
	assert.Equal(t, []string{
		"A fox in the woods.",
		"The fox by a river.",
		"The fox at home.",
	}, got)
}

func TestPlan_FallbackGuarantee(t *testing.T) {
	pages := storyPages("Page one text.", "Page two text.", "Page three text.")

	cases := []struct {
		name      string
		generator *stubGenerator
	}{
		{"remote always errors", &stubGenerator{err: errors.New("boom")}},
		{"remote returns garbage", &stubGenerator{response: "no structure here"}},
		{"remote returns wrong count", &stubGenerator{response: `["only", "two"]`}},
		{"remote returns empty strings", &stubGenerator{response: `["", "", ""]`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.generator)

			got := p.Plan(context.Background(), pages, "friendship")
			require.Len(t, got, len(pages))
			for _, d := range got {
				assert.NotEmpty(t, d)
			}
		})
	}
}

func TestPlan_LocalFallback(t *testing.T) {
	pages := storyPages("A bear finds honey.", "The bear shares it.", "Everyone is happy.")
	p := New(nil)

	got := p.Plan(context.Background(), pages, "kindness")
	require.Len(t, got, 3)

	t.Run("deterministic", func(t *testing.T) {
		again := p.Plan(context.Background(), pages, "kindness")
		assert.Equal(t, got, again)
	})

	t.Run("carries page content and theme", func(t *testing.T) {
		for i, d := range got {
			assert.Contains(t, d, pages[i].Content)
			assert.Contains(t, d, "kindness")
			assert.Contains(t, d, fmt.Sprintf("page %d of %d", i+1, len(pages)))
		}
	})

	t.Run("keeps characters consistent across pages", func(t *testing.T) {
		for _, d := range got {
			assert.Contains(t, d, "consistent")
		}
	})

	t.Run("middle page sees both neighbours", func(t *testing.T) {
		assert.Contains(t, got[1], "Story so far:")
		assert.Contains(t, got[1], "Story continues:")
		assert.NotContains(t, got[0], "Story so far:")
		assert.NotContains(t, got[2], "Story continues:")
	})
}

func TestPlan_FallbackTruncatesContext(t *testing.T) {
	long := strings.Repeat("w", 1000)
	pages := storyPages(long, "short middle", long)
	p := New(nil)

	got := p.Plan(context.Background(), pages, "")
	require.Len(t, got, 3)
	assert.Contains(t, got[1], strings.Repeat("w", contextSummaryLength)+"...")
	assert.NotContains(t, got[1], strings.Repeat("w", contextSummaryLength+1))
}
