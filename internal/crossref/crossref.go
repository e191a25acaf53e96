// Package crossref extracts wiki-link references from note content.
package crossref

import (
	"regexp"
	"strings"
)

// wikiLinkPattern matches [[target]] wiki-links in note content.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// ExtractWikiLinks extracts all wiki-link targets from text.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractWikiLinks(text string) []string {
	matches := wikiLinkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		result = append(result, target)
	}
	return result
}

// RewriteWikiLinks replaces every [[oldTarget]] link in text with
// [[newTarget]], returning the text unchanged if no link matches.
func RewriteWikiLinks(text, oldTarget, newTarget string) string {
	return strings.ReplaceAll(text, "[["+oldTarget+"]]", "[["+newTarget+"]]")
}
