// Package prompt turns free-form natural-language requests into a
// structured ParsedIntent the resolver can act on.
package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/catalog"
	"github.com/law-makers/promptscrape/pkg/models"
)

const (
	// DefaultMaxItems is used when the prompt names no count
	DefaultMaxItems = 50
	// MaxItemsCeiling bounds any parsed count
	MaxItemsCeiling = 1000
)

var (
	urlPattern    = regexp.MustCompile(`https?://[^\s<>"']+`)
	domainPattern = regexp.MustCompile(`\b([a-zA-Z0-9][a-zA-Z0-9-]*(?:\.[a-zA-Z0-9][a-zA-Z0-9-]*)+)\b`)
	tldSuffix     = regexp.MustCompile(`\.[a-zA-Z]{2,}$`)
	intPattern    = regexp.MustCompile(`\b(\d+)\b`)
	wordPattern   = regexp.MustCompile(`[a-zA-Z]+`)
)

// Analyzer parses raw prompts against an immutable catalog.
// Analyze never fails: the worst case is a general-content intent with
// default limits and no filters.
type Analyzer struct {
	catalog *catalog.Catalog
}

// NewAnalyzer creates an Analyzer over the given catalog
func NewAnalyzer(c *catalog.Catalog) *Analyzer {
	if c == nil {
		c = catalog.Default()
	}
	return &Analyzer{catalog: c}
}

// Analyze parses a raw prompt into a ParsedIntent
func (a *Analyzer) Analyze(raw string) models.ParsedIntent {
	lower := strings.ToLower(raw)

	parsed := models.ParsedIntent{
		RawPrompt:   raw,
		URLs:        a.extractURLs(raw),
		ContentType: a.detectContentType(lower),
		Intent:      a.detectIntent(lower),
		MaxItems:    a.extractMaxItems(raw),
	}
	parsed.Sites = a.detectSites(raw, lower)
	parsed.Fields = a.inferFields(lower, parsed.ContentType)
	parsed.Filters = a.extractFilters(lower)

	log.Debug().
		Str("content_type", string(parsed.ContentType)).
		Str("intent", string(parsed.Intent)).
		Int("urls", len(parsed.URLs)).
		Int("sites", len(parsed.Sites)).
		Int("max_items", parsed.MaxItems).
		Msg("Prompt analyzed")

	return parsed
}

// extractURLs pulls literal URLs out of the prompt, then promotes
// bare domain-like tokens by prefixing https://
func (a *Analyzer) extractURLs(raw string) []string {
	var urls []string
	seen := make(map[string]struct{})

	add := func(u string) {
		u = strings.TrimRight(u, ".,;:!?)")
		if _, dup := seen[u]; dup || u == "" {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, m := range urlPattern.FindAllString(raw, -1) {
		add(m)
	}

	// Secondary pass: bare domains like "flipkart.com"
	stripped := urlPattern.ReplaceAllString(raw, " ")
	for _, m := range domainPattern.FindAllString(stripped, -1) {
		lowerTok := strings.ToLower(m)
		if _, deny := a.catalog.DomainDenylist[lowerTok]; deny {
			continue
		}
		if !tldSuffix.MatchString(m) {
			continue
		}
		add("https://" + m)
	}

	return urls
}

// detectContentType scores every content-type keyword set against the
// lower-cased prompt and picks the argmax. Ties keep the earlier type in
// declaration order; all-zero falls back to general.
func (a *Analyzer) detectContentType(lower string) models.ContentType {
	best := models.ContentGeneral
	bestScore := 0

	for _, ct := range models.ContentTypes {
		score := 0
		for _, kw := range a.catalog.ContentKeywords[ct] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = ct
			bestScore = score
		}
	}

	return best
}

// detectSites registers every catalog site whose pattern appears in the
// prompt, with fixed confidence 0.9 and a synthesized search URL
func (a *Analyzer) detectSites(raw, lower string) []models.SiteMatch {
	var matches []models.SiteMatch

	for _, site := range a.catalog.Sites {
		for _, pattern := range site.Patterns {
			if strings.Contains(lower, pattern) {
				matches = append(matches, models.SiteMatch{
					SiteID:     site.ID,
					Category:   site.Category,
					SearchURL:  BuildSearchURL(a.catalog, site.ID, raw),
					Confidence: 0.9,
				})
				break
			}
		}
	}

	return matches
}

// inferFields seeds the content type's default field list and adds any
// field whose keyword appears in the prompt
func (a *Analyzer) inferFields(lower string, ct models.ContentType) []string {
	var fields []string
	seen := make(map[string]struct{})

	add := func(f string) {
		if _, dup := seen[f]; dup {
			return
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	for _, f := range a.catalog.DefaultFields[ct] {
		add(f)
	}

	for _, fk := range a.catalog.Fields {
		for _, kw := range fk.Keywords {
			if strings.Contains(lower, kw) {
				add(fk.Field)
				break
			}
		}
	}

	return fields
}

// detectIntent returns the first intent whose keyword set matches.
// Table order is fixed; the default is search.
func (a *Analyzer) detectIntent(lower string) models.Intent {
	for _, entry := range a.catalog.Intents {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				return entry.Intent
			}
		}
	}
	return models.IntentSearch
}

// extractMaxItems takes the last integer literal in the prompt,
// clamped to [1,1000]. Multiple numbers: the last one is authoritative.
func (a *Analyzer) extractMaxItems(raw string) int {
	matches := intPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return DefaultMaxItems
	}

	n, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return DefaultMaxItems
	}
	return ClampItems(n)
}

// ClampItems clamps a requested item count into [1,1000]
func ClampItems(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxItemsCeiling {
		return MaxItemsCeiling
	}
	return n
}
