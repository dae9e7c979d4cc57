package prompt

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/law-makers/promptscrape/internal/catalog"
)

const maxQueryTokens = 5

var quotedPhrase = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

// MeaningfulTokens returns up to 5 query-worthy tokens from the prompt:
// quoted phrases verbatim first, then stopword-filtered alphabetic words
// in prompt order. Deterministic for a given prompt.
func MeaningfulTokens(c *catalog.Catalog, raw string) []string {
	var tokens []string
	seen := make(map[string]struct{})

	add := func(t string) bool {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			return true
		}
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		tokens = append(tokens, t)
		return len(tokens) < maxQueryTokens
	}

	rest := raw
	for _, m := range quotedPhrase.FindAllStringSubmatch(raw, -1) {
		phrase := m[1]
		if phrase == "" {
			phrase = m[2]
		}
		if !add(phrase) {
			return tokens
		}
		rest = strings.Replace(rest, m[0], " ", 1)
	}

	// Strip literal URLs so their path segments don't leak into queries
	rest = urlPattern.ReplaceAllString(rest, " ")

	for _, tok := range wordPattern.FindAllString(strings.ToLower(rest), -1) {
		if len(tok) < 3 || c.IsStopword(tok) {
			continue
		}
		if isSitePattern(c, tok) {
			continue
		}
		if !add(tok) {
			break
		}
	}

	return tokens
}

func isSitePattern(c *catalog.Catalog, tok string) bool {
	for _, site := range c.Sites {
		for _, p := range site.Patterns {
			if p == tok {
				return true
			}
		}
	}
	return false
}

// BuildSearchURL renders a site's search template with a query built
// from the prompt's meaningful tokens joined by "+". Unknown site ids
// fall back to the generic web-search template.
func BuildSearchURL(c *catalog.Catalog, siteID, raw string) string {
	template := c.GenericSearchTemplate
	if site, ok := c.SiteByID(siteID); ok && site.SearchTemplate != "" {
		template = site.SearchTemplate
	}

	tokens := MeaningfulTokens(c, raw)
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = url.QueryEscape(t)
	}
	query := strings.Join(escaped, "+")

	return fmt.Sprintf(template, query)
}
