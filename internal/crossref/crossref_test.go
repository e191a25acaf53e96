package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractWikiLinks(t *testing.T) {
	text := "See [[card-1]] and [[card-2]], then [[card-1]] again."
	assert.Equal(t, []string{"card-1", "card-2"}, ExtractWikiLinks(text))
}

func TestExtractWikiLinksNone(t *testing.T) {
	assert.Nil(t, ExtractWikiLinks("plain text, no links"))
	assert.Nil(t, ExtractWikiLinks("[[]] empty target"))
	assert.Nil(t, ExtractWikiLinks("unbalanced [[link"))
}

func TestExtractWikiLinksTrimsWhitespace(t *testing.T) {
	assert.Equal(t, []string{"card-1"}, ExtractWikiLinks("[[ card-1 ]]"))
}

func TestRewriteWikiLinks(t *testing.T) {
	text := "start at [[temp-abc]] then [[other]]"
	got := RewriteWikiLinks(text, "temp-abc", "srv-1")
	assert.Equal(t, "start at [[srv-1]] then [[other]]", got)

	// A non-matching target leaves the text alone.
	assert.Equal(t, text, RewriteWikiLinks(text, "missing", "srv-2"))
}
