package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/law-makers/promptscrape/pkg/models"
)

const maxKeywords = 10

var (
	currencyToken = `(?:rs\.?|inr|₹|\$|€|£)?\s*`

	priceUnder   = regexp.MustCompile(`(?:under|below|less than|cheaper than|up ?to)\s+` + currencyToken + `([\d,]+(?:\.\d+)?)`)
	priceAbove   = regexp.MustCompile(`(?:above|over|more than|costlier than)\s+` + currencyToken + `([\d,]+(?:\.\d+)?)`)
	priceBetween = regexp.MustCompile(`between\s+` + currencyToken + `([\d,]+(?:\.\d+)?)\s+and\s+` + currencyToken + `([\d,]+(?:\.\d+)?)`)
	priceRangeTo = regexp.MustCompile(currencyToken + `([\d,]+(?:\.\d+)?)\s+to\s+` + currencyToken + `([\d,]+(?:\.\d+)?)`)

	ratingFloor = regexp.MustCompile(`(?:rating|rated|stars?)\s+(?:above|over|more than|of at least|at least)\s+([\d.]+)`)

	locationPhrase = regexp.MustCompile(`\b(?:in|from|at|near|around)\s+([a-zA-Z][a-zA-Z]*(?:\s+[a-zA-Z][a-zA-Z]*){0,2})`)
)

// extractFilters pulls price range, rating floor, locations and free
// keywords out of the lower-cased prompt
func (a *Analyzer) extractFilters(lower string) models.Filters {
	filters := models.Filters{}

	// Rating is keyword-anchored; strip its match before the price scan so
	// "rating above 4" cannot register as a price bound.
	working := lower
	if m := ratingFloor.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			filters.RatingMin = v
		}
		working = strings.Replace(working, m[0], " ", 1)
	}

	filters.Price = extractPriceRange(working)
	filters.Locations = a.extractLocations(lower)
	filters.Keywords = a.extractKeywords(lower)

	return filters
}

// extractPriceRange tries the ordered regex alternatives and stops at
// the first success
func extractPriceRange(text string) *models.PriceRange {
	if m := priceUnder.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return &models.PriceRange{Max: &v}
		}
	}
	if m := priceAbove.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return &models.PriceRange{Min: &v}
		}
	}
	if m := priceBetween.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1])
		hi, okHi := parseAmount(m[2])
		if okLo && okHi {
			return &models.PriceRange{Min: &lo, Max: &hi}
		}
	}
	if m := priceRangeTo.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1])
		hi, okHi := parseAmount(m[2])
		if okLo && okHi {
			return &models.PriceRange{Min: &lo, Max: &hi}
		}
	}
	return nil
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractLocations captures word sequences trailing the location
// prepositions. Sequences that start with a known site pattern or a
// stopword are noise, not places.
func (a *Analyzer) extractLocations(lower string) []string {
	var locations []string
	seen := make(map[string]struct{})

	for _, m := range locationPhrase.FindAllStringSubmatch(lower, -1) {
		phrase := strings.TrimSpace(m[1])
		first := strings.Fields(phrase)[0]
		if a.catalog.IsStopword(first) || a.isSiteToken(first) {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		locations = append(locations, phrase)
	}

	return locations
}

func (a *Analyzer) isSiteToken(token string) bool {
	for _, site := range a.catalog.Sites {
		for _, p := range site.Patterns {
			if strings.Contains(p, token) || strings.Contains(token, p) {
				return true
			}
		}
	}
	return false
}

// extractKeywords collects alphabetic tokens of at least 3 characters,
// minus stopwords, capped at 10
func (a *Analyzer) extractKeywords(lower string) []string {
	var keywords []string
	seen := make(map[string]struct{})

	for _, tok := range wordPattern.FindAllString(lower, -1) {
		if len(tok) < 3 || a.catalog.IsStopword(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}
