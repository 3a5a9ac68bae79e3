package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const source = "https://directory.example.com/listing/42"

func TestPickWebsite_LabeledAnchorWinsRegardlessOfOrder(t *testing.T) {
	plain := `<a href="https://plain-link.com">other</a>`
	labeled := `<a class="btn" aria-label="Visit Website" href="https://acme-plumbing.com">Go</a>`

	assert.Equal(t, "https://acme-plumbing.com/", PickWebsite(plain+labeled, source))
	assert.Equal(t, "https://acme-plumbing.com/", PickWebsite(labeled+plain, source))
}

func TestPickWebsite_FirstSeenWinsTies(t *testing.T) {
	markup := `<a href="https://first.com">a</a><a href="https://second.com">b</a>`
	assert.Equal(t, "https://first.com/", PickWebsite(markup, source))
}

func TestPickWebsite_NoCandidates(t *testing.T) {
	assert.Equal(t, "", PickWebsite(`<p>nothing here</p>`, source))
	assert.Equal(t, "", PickWebsite("", source))
}

func TestScoreAnchors_Filters(t *testing.T) {
	markup := `
		<a href="/relative">rel</a>
		<a href="#top">frag</a>
		<a href="mailto:owner@acme.com">mail</a>
		<a href="https://www.example.com/about">self root</a>
		<a href="https://twitter.com/acme">blocked</a>
		<a href="https://m.facebook.com/acme">blocked sub</a>
		<a href="https://localhost/x">no dot</a>
		<a href='https://kept.io/path'>kept</a>`

	got := ScoreAnchors(markup, source)
	assert.Equal(t, []Anchor{{URL: "https://kept.io/path", Score: 0}}, got)
}

func TestScoreAnchors_Scores(t *testing.T) {
	markup := `<a data-track="provider-analytics-event" title="website" href="https://a.com" >x</a>` +
		`<a href="https://b.com" data-label="Visit Website">y</a>` +
		`<a href="https://c.com" class="website-link">z</a>`

	got := ScoreAnchors(markup, source)
	assert.Equal(t, []Anchor{
		{URL: "https://b.com/", Score: 130},
		{URL: "https://a.com/", Score: 80},
		{URL: "https://c.com/", Score: 30},
	}, got)
}

func TestScoreAnchors_CaseInsensitiveTagAndEntities(t *testing.T) {
	markup := `<A HREF="https://shop.example.org/?a=1&amp;b=2" TITLE="WEBSITE">x</A>`
	got := ScoreAnchors(markup, source)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "https://shop.example.org/?a=1&b=2", got[0].URL)
		assert.Equal(t, 30, got[0].Score)
	}
}

func TestScoreAnchors_AttributesAcrossLines(t *testing.T) {
	markup := "<a\n  class=\"visit website\"\n  href=\"https://multi.com\"\n>x</a>"
	got := ScoreAnchors(markup, source)
	if assert.Len(t, got, 1) {
		assert.Equal(t, 130, got[0].Score)
	}
}

func TestScoreAnchors_QuotedValueDoesNotSpanLines(t *testing.T) {
	markup := "<a href=\"https://broken\n.com\">x</a>"
	assert.Empty(t, ScoreAnchors(markup, source))
}

func TestScoreAnchors_UnquotedHrefIgnored(t *testing.T) {
	assert.Empty(t, ScoreAnchors(`<a href=https://bare.com>x</a>`, source))
}
