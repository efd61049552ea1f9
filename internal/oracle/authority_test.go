package oracle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot80-alt/certa/internal/model"
)

func TestAuthorityRanker_Classify(t *testing.T) {
	r := NewAuthorityRanker(model.DefaultConfig().Oracle.Authority)

	tests := []struct {
		url  string
		want Tier
	}{
		{"https://www.nasa.gov/history", TierPrimary},
		{"https://ons.gov.uk/census", TierPrimary},
		{"https://www.who.int/news", TierPrimary},
		{"https://cs.stanford.edu/paper.pdf", TierPrimary},
		{"https://en.wikipedia.org/wiki/Golden_Gate_Bridge", TierSecondary},
		{"https://www.reuters.com/world/", TierSecondary},
		{"https://someblog.example.com/post", TierTertiary},
		{"https://notgov.com/", TierTertiary},
		{"not a url", TierTertiary},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Classify(tt.url))
		})
	}
}

func TestAuthorityRanker_DomainMapOverrides(t *testing.T) {
	cfg := model.DefaultConfig().Oracle.Authority
	cfg.DomainMap = map[string]string{
		"Archive.Example.org": "primary",
		"en.wikipedia.org":    "tertiary",
	}
	r := NewAuthorityRanker(cfg)

	assert.Equal(t, TierPrimary, r.Classify("https://archive.example.org/doc"))
	assert.Equal(t, TierTertiary, r.Classify("https://en.wikipedia.org/wiki/X"))
	assert.Equal(t, TierSecondary, r.Classify("https://de.wikipedia.org/wiki/X"))
}

func TestAuthorityRanker_RankIsStable(t *testing.T) {
	r := NewAuthorityRanker(model.DefaultConfig().Oracle.Authority)

	ranked := r.Rank([]Evidence{
		{Title: "blog one", URL: "https://a.example.com/1"},
		{Title: "wiki", URL: "https://en.wikipedia.org/wiki/X"},
		{Title: "blog two", URL: "https://b.example.com/2"},
		{Title: "agency", URL: "https://www.census.gov/data"},
	})

	titles := make([]string, len(ranked))
	for i, e := range ranked {
		titles[i] = e.Title
	}
	assert.Equal(t, []string{"agency", "wiki", "blog one", "blog two"}, titles)
	assert.Equal(t, TierPrimary, ranked[0].Tier)
	assert.Equal(t, TierTertiary, ranked[3].Tier)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "primary", TierPrimary.String())
	assert.Equal(t, "secondary", TierSecondary.String())
	assert.Equal(t, "tertiary", TierTertiary.String())
	assert.Equal(t, "unknown", TierUnknown.String())
}

func TestClient_PromptListsAuthoritativeEvidenceFirst(t *testing.T) {
	l := &stubLLM{text: validReport}
	s := &stubSearch{results: []Evidence{
		{Title: "Forum thread", URL: "https://forum.example.com/t/1", Snippet: "someone said"},
		{Title: "Bridge district", URL: "https://www.goldengate.gov/history", Snippet: "Opened 1937"},
	}}
	c := newClient(t, l, s)

	_, err := c.Check(context.Background(), "The Golden Gate Bridge opened in 1937.")
	require.NoError(t, err)

	prompt := l.last.Prompt
	assert.Contains(t, prompt, "[1] (primary source) Bridge district - https://www.goldengate.gov/history")
	assert.Contains(t, prompt, "[2] Forum thread - https://forum.example.com/t/1")
	assert.Less(t, strings.Index(prompt, "Bridge district"), strings.Index(prompt, "Forum thread"))
}
