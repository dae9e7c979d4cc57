package prompt

import (
	"strings"
	"testing"

	"github.com/law-makers/promptscrape/internal/catalog"
)

func TestMeaningfulTokensCap(t *testing.T) {
	c := catalog.Default()
	tokens := MeaningfulTokens(c, "wireless bluetooth headphones earbuds speakers chargers adapters")
	if len(tokens) != maxQueryTokens {
		t.Errorf("Expected %d tokens, got %v", maxQueryTokens, tokens)
	}
}

func TestMeaningfulTokensQuotedPhraseFirst(t *testing.T) {
	c := catalog.Default()
	tokens := MeaningfulTokens(c, `find "gaming laptop" deals on amazon`)
	if len(tokens) == 0 || tokens[0] != "gaming laptop" {
		t.Errorf("Expected quoted phrase first, got %v", tokens)
	}
	for _, tok := range tokens {
		if tok == "amazon" {
			t.Errorf("Site pattern leaked into tokens: %v", tokens)
		}
	}
}

func TestMeaningfulTokensDropURLs(t *testing.T) {
	c := catalog.Default()
	tokens := MeaningfulTokens(c, "scrape headlines from https://example.com/world/politics")
	for _, tok := range tokens {
		if tok == "politics" || tok == "world" || tok == "example" {
			t.Errorf("URL segment leaked into tokens: %v", tokens)
		}
	}
}

func TestBuildSearchURLKnownSite(t *testing.T) {
	c := catalog.Default()
	u := BuildSearchURL(c, "flipkart", "scrape gaming laptops")
	if !strings.HasPrefix(u, "https://www.flipkart.com/search?q=") {
		t.Errorf("Unexpected search URL: %s", u)
	}
	if !strings.Contains(u, "gaming") || !strings.Contains(u, "laptops") {
		t.Errorf("Query tokens missing from URL: %s", u)
	}
}

func TestBuildSearchURLUnknownSiteFallsBack(t *testing.T) {
	c := catalog.Default()
	u := BuildSearchURL(c, "no-such-site", "cheap flights")
	if !strings.HasPrefix(u, "https://www.google.com/search?q=") {
		t.Errorf("Expected generic template, got %s", u)
	}
}

func TestBuildSearchURLEscapesTokens(t *testing.T) {
	c := catalog.Default()
	u := BuildSearchURL(c, "flipkart", `find "t&c documents"`)
	if strings.Contains(u, "t&c") {
		t.Errorf("Unescaped ampersand in URL: %s", u)
	}
	if !strings.Contains(u, "t%26c") {
		t.Errorf("Expected escaped ampersand, got %s", u)
	}
}
