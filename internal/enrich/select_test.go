package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/seed-cli/internal/model"
)

func TestSelectCandidates(t *testing.T) {
	listings := []model.EnrichmentCandidate{
		{ID: "a", SourceURL: "https://src.example/a"},
		{ID: "b", SourceURL: "https://src.example/b", Website: "https://b.com/"},
		{ID: "c", SourceURL: "  "},
		{ID: "d", SourceURL: "https://src.example/d", Website: "   "},
		{ID: "e", SourceURL: "https://src.example/e"},
	}

	sel := SelectCandidates(listings, 0)
	assert.Equal(t, 5, sel.Listed)
	assert.Equal(t, 3, sel.MissingWebsite)
	assert.Equal(t, []string{"a", "d", "e"}, ids(sel.Work))

	sel = SelectCandidates(listings, 2)
	assert.Equal(t, 3, sel.MissingWebsite)
	assert.Equal(t, []string{"a", "d"}, ids(sel.Work))
}

func ids(cands []model.EnrichmentCandidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}
