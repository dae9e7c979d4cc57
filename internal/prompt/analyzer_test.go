package prompt

import (
	"reflect"
	"strings"
	"testing"

	"github.com/law-makers/promptscrape/pkg/models"
)

func hasField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

func TestAnalyzeProductsPrompt(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("Scrape top 30 mobiles from Flipkart with price and rating")

	if parsed.ContentType != models.ContentProducts {
		t.Errorf("Expected products content type, got %s", parsed.ContentType)
	}
	if parsed.MaxItems != 30 {
		t.Errorf("Expected max items 30, got %d", parsed.MaxItems)
	}

	if len(parsed.Sites) != 1 {
		t.Fatalf("Expected exactly one site match, got %d", len(parsed.Sites))
	}
	site := parsed.Sites[0]
	if site.SiteID != "flipkart" {
		t.Errorf("Expected flipkart site, got %s", site.SiteID)
	}
	if site.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", site.Confidence)
	}
	if !strings.HasPrefix(site.SearchURL, "https://www.flipkart.com/search?q=") {
		t.Errorf("Unexpected search URL: %s", site.SearchURL)
	}

	for _, f := range []string{"title", "price", "rating"} {
		if !hasField(parsed.Fields, f) {
			t.Errorf("Expected field %q in %v", f, parsed.Fields)
		}
	}
}

func TestAnalyzeGovernmentPrompt(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("Get the latest notifications from the government website")

	if parsed.ContentType != models.ContentNews {
		t.Errorf("Expected news content type, got %s", parsed.ContentType)
	}
	if parsed.Intent != models.IntentLatest {
		t.Errorf("Expected latest intent, got %s", parsed.Intent)
	}

	found := false
	for _, s := range parsed.Sites {
		if s.SiteID == "india_gov" {
			found = true
			if s.Confidence != 0.9 {
				t.Errorf("Expected confidence 0.9, got %f", s.Confidence)
			}
		}
	}
	if !found {
		t.Errorf("Expected india_gov in site matches: %v", parsed.Sites)
	}
}

func TestAnalyzeGibberish(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("asdf qwer zxcv")

	if parsed.ContentType != models.ContentGeneral {
		t.Errorf("Expected general content type, got %s", parsed.ContentType)
	}
	if len(parsed.Sites) != 0 {
		t.Errorf("Expected no site matches, got %v", parsed.Sites)
	}
	if len(parsed.URLs) != 0 {
		t.Errorf("Expected no URLs, got %v", parsed.URLs)
	}
	if parsed.MaxItems != DefaultMaxItems {
		t.Errorf("Expected default max items, got %d", parsed.MaxItems)
	}
}

func TestAnalyzeLiteralURL(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("Scrape headlines from https://example.com/news?page=2")

	if len(parsed.URLs) != 1 {
		t.Fatalf("Expected one URL, got %v", parsed.URLs)
	}
	if parsed.URLs[0] != "https://example.com/news?page=2" {
		t.Errorf("URL not preserved verbatim: %s", parsed.URLs[0])
	}
}

func TestAnalyzeBareDomainPromotion(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("Get product listings from books.toscrape.com")

	if len(parsed.URLs) != 1 {
		t.Fatalf("Expected one URL, got %v", parsed.URLs)
	}
	if parsed.URLs[0] != "https://books.toscrape.com" {
		t.Errorf("Expected https:// promotion, got %s", parsed.URLs[0])
	}
}

func TestAnalyzeTrailingPunctuationStripped(t *testing.T) {
	a := NewAnalyzer(nil)
	parsed := a.Analyze("Check https://example.com/page.")

	if len(parsed.URLs) != 1 || parsed.URLs[0] != "https://example.com/page" {
		t.Errorf("Expected trailing dot stripped, got %v", parsed.URLs)
	}
}

func TestMaxItemsLastIntegerWins(t *testing.T) {
	a := NewAnalyzer(nil)

	cases := []struct {
		prompt string
		want   int
	}{
		{"get 10 phones, actually make it 25", 25},
		{"scrape 5000 products", 1000},
		{"scrape some products", DefaultMaxItems},
	}
	for _, tc := range cases {
		if got := a.Analyze(tc.prompt).MaxItems; got != tc.want {
			t.Errorf("Analyze(%q).MaxItems = %d, want %d", tc.prompt, got, tc.want)
		}
	}
}

func TestClampItems(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {500, 500}, {1000, 1000}, {1001, 1000},
	}
	for _, tc := range cases {
		if got := ClampItems(tc.in); got != tc.want {
			t.Errorf("ClampItems(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := NewAnalyzer(nil)
	prompt := "Find 15 apartments in Mumbai under 50000 on magicbricks"

	first := a.Analyze(prompt)
	second := a.Analyze(prompt)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated analysis diverged:\n%#v\n%#v", first, second)
	}
}
