package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/law-makers/promptscrape/pkg/models"
)

func productsTarget(url, domain string) models.TargetDescriptor {
	return models.TargetDescriptor{
		URL:         url,
		Domain:      domain,
		ContentType: models.ContentProducts,
		Confidence:  0.9,
	}
}

func flipkartPage(n int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="_1AtVbE">
			<div class="_4rR01T">Phone Model %d</div>
			<div class="_30jeq3">₹12,%03d</div>
			<div class="_3LWZlK">4.%d</div>
			<img class="_396cs4" src="/img/%d.jpg">
			<a class="_1fQZEK" href="/item/%d">view</a>
		</div>`, i, i, i%10, i, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestExtractSiteCascade(t *testing.T) {
	e := NewExtractor(false)
	target := productsTarget("https://www.flipkart.com/search?q=phones", "flipkart.com")

	records := e.Extract(flipkartPage(4), target, models.Requirements{MaxItems: 10})
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}

	first := records[0]
	if title, _ := first.Get("title"); title != "Phone Model 0" {
		t.Errorf("Unexpected title: %s", title)
	}
	if price, _ := first.Get("price"); price != "12,000" {
		t.Errorf("Expected currency stripped, got %q", price)
	}
	if rating, _ := first.Get("rating"); rating != "4.0" {
		t.Errorf("Unexpected rating: %s", rating)
	}
	if first.SourceDomain != "flipkart.com" {
		t.Errorf("Provenance domain missing: %s", first.SourceDomain)
	}
	if first.Confidence != 0.9 {
		t.Errorf("Provenance confidence missing: %f", first.Confidence)
	}
	if first.ScrapedAt.IsZero() {
		t.Error("Expected scrape timestamp")
	}
}

func TestExtractImageLinkGating(t *testing.T) {
	e := NewExtractor(false)
	target := productsTarget("https://www.flipkart.com/search?q=phones", "flipkart.com")
	page := flipkartPage(2)

	plain := e.Extract(page, target, models.Requirements{MaxItems: 10})[0]
	if plain.Has("image") || plain.Has("link") {
		t.Errorf("Image/link fields present without opt-in: %v", plain.Fields())
	}

	rich := e.Extract(page, target, models.Requirements{MaxItems: 10, IncludeImages: true, IncludeLinks: true})[0]
	if img, _ := rich.Get("image"); img != "/img/0.jpg" {
		t.Errorf("Expected image src, got %q", img)
	}
	if link, _ := rich.Get("link"); link != "/item/0" {
		t.Errorf("Expected link href, got %q", link)
	}
}

func TestExtractFieldOverride(t *testing.T) {
	e := NewExtractor(false)
	target := productsTarget("https://www.flipkart.com/search?q=phones", "flipkart.com")

	records := e.Extract(flipkartPage(2), target, models.Requirements{MaxItems: 10, Fields: []string{"price"}})
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	rec := records[0]
	if !rec.Has("price") {
		t.Error("Requested field missing")
	}
	if !rec.Has("title") {
		t.Error("Anchor field must survive a narrowed request")
	}
	if rec.Has("rating") {
		t.Errorf("Unrequested field present: %v", rec.Fields())
	}
}

func TestExtractMaxItemsTruncation(t *testing.T) {
	e := NewExtractor(false)
	target := productsTarget("https://www.flipkart.com/search?q=phones", "flipkart.com")

	records := e.Extract(flipkartPage(8), target, models.Requirements{MaxItems: 3})
	if len(records) != 3 {
		t.Errorf("Expected truncation to 3, got %d", len(records))
	}
}

func TestExtractTypeCascade(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<article><h2>Markets rally on rate cut hopes</h2><p>Stocks climbed on Friday as investors weighed fresh data.</p></article>
		<article><h2>Monsoon arrives early this year</h2><p>Forecasters said rainfall will exceed seasonal averages.</p></article>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://news.example.com/",
		Domain:      "example.com",
		ContentType: models.ContentNews,
		Confidence:  0.75,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if title, _ := records[0].Get("title"); title != "Markets rally on rate cut hopes" {
		t.Errorf("Unexpected title: %s", title)
	}
	if _, ok := records[0].Get("summary"); !ok {
		t.Error("Expected summary field")
	}
}

func TestExtractRepeatedStructureFallback(t *testing.T) {
	e := NewExtractor(false)
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, `<div class="listing-row extra">
			<h4>Listing number %d with a descriptive name</h4>
			<span class="row-price">₹%d,500</span>
		</div>`, i, i+1)
	}
	b.WriteString("</body></html>")

	// General content has no cascade, so detection must kick in
	target := models.TargetDescriptor{
		URL:         "https://unknown.example.com/list",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	records := e.Extract(b.String(), target, models.Requirements{MaxItems: 10})
	if len(records) != 5 {
		t.Fatalf("Expected 5 records from repeated structure, got %d", len(records))
	}
	if title, _ := records[0].Get("title"); !strings.HasPrefix(title, "Listing number 0") {
		t.Errorf("Unexpected title: %s", title)
	}
	if price, _ := records[0].Get("price"); price != "1,500" {
		t.Errorf("Unexpected price: %s", price)
	}
}

func TestExtractProseFallback(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<h2>A long enough heading</h2>
		<p>The paragraph that follows the heading carries the story body.</p>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://blog.example.com/post",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 1 {
		t.Fatalf("Expected 1 prose record, got %d", len(records))
	}
	if title, _ := records[0].Get("title"); title != "A long enough heading" {
		t.Errorf("Unexpected title: %s", title)
	}
	if body, _ := records[0].Get("content"); !strings.Contains(body, "story body") {
		t.Errorf("Unexpected body: %s", body)
	}
	if kind, _ := records[0].Get("type"); kind != "heading" {
		t.Errorf("Expected heading type, got %q", kind)
	}
}

func TestExtractProseParagraphsOnly(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<p>First standalone paragraph with enough text to keep.</p>
		<p>Second standalone paragraph with enough text to keep.</p>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://blog.example.com/post",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 2 {
		t.Fatalf("Expected 2 paragraph records, got %d", len(records))
	}
	for _, rec := range records {
		if body, _ := rec.Get("content"); !strings.Contains(body, "standalone paragraph") {
			t.Errorf("Unexpected body: %s", body)
		}
		if kind, _ := rec.Get("type"); kind != "paragraph" {
			t.Errorf("Expected paragraph type, got %q", kind)
		}
	}
}

func TestExtractPriceOnlyProductCards(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<div class="product-card"><span class="price">₹12,999</span></div>
		<div class="product-card"><span class="price">₹8,499</span></div>
		<div class="product-card"><span class="price">₹21,000</span></div>
	</body></html>`
	target := productsTarget("https://shop.example.com/phones", "example.com")

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 3 {
		t.Fatalf("Expected 3 price-anchored records, got %d", len(records))
	}
	if price, _ := records[0].Get("price"); price != "12,999" {
		t.Errorf("Unexpected price: %s", price)
	}
	if records[0].Has("title") {
		t.Error("No title selector matched, record should not have one")
	}
}

func TestExtractCompanyOnlyJobCards(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<div class="job-card"><span class="company">Initech</span></div>
		<div class="job-card"><span class="company">Globex</span></div>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://jobs.example.com/search",
		Domain:      "example.com",
		ContentType: models.ContentJobs,
		Confidence:  0.9,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 2 {
		t.Fatalf("Expected 2 company-anchored records, got %d", len(records))
	}
	if company, _ := records[0].Get("company"); company != "Initech" {
		t.Errorf("Unexpected company: %s", company)
	}
}

func TestExtractRatingOnlyCardsDropped(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body>
		<div class="product-card"><span class="rating">4.2</span></div>
		<div class="product-card"><span class="rating">3.9</span></div>
		<div class="product-card"><span class="rating">4.8</span></div>
	</body></html>`
	target := productsTarget("https://shop.example.com/phones", "example.com")

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	for _, rec := range records {
		if rec.Has("rating") && !rec.Has("title") && !rec.Has("price") {
			t.Errorf("Rating-only card should not survive: %v", rec.Map())
		}
	}
}

func TestExtractEmptyAndGarbageHTML(t *testing.T) {
	e := NewExtractor(true)
	target := productsTarget("https://example.com/", "example.com")

	for _, html := range []string{"", "<html></html>", "<<<<not html>>>>", "<div><div><div>"} {
		records := e.Extract(html, target, models.Requirements{MaxItems: 10})
		if len(records) != 0 {
			t.Errorf("Expected no records for %q, got %d", html, len(records))
		}
	}
}

func TestExtractMissingProvenance(t *testing.T) {
	e := NewExtractor(false)
	records := e.Extract("<html><body><p>hello world text</p></body></html>",
		models.TargetDescriptor{}, models.Requirements{})
	if len(records) != 0 {
		t.Errorf("Expected nothing without provenance, got %d", len(records))
	}
}

func TestNormalizePrice(t *testing.T) {
	cases := []struct{ in, want string }{
		{"₹12,999 onwards", "12,999"},
		{"Rs. 4500", "4500"},
		{"$1,299.99", "1,299.99"},
		{"Call for price", "Call for price"},
	}
	for _, tc := range cases {
		if got := normalizePrice(tc.in); got != tc.want {
			t.Errorf("normalizePrice(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRating(t *testing.T) {
	cases := []struct{ in, want string }{
		{"4.3 out of 5 stars", "4.3"},
		{"4", "4"},
		{"no ratings yet", "no ratings yet"},
	}
	for _, tc := range cases {
		if got := normalizeRating(tc.in); got != tc.want {
			t.Errorf("normalizeRating(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText("  a \n\t b   c  "); got != "a b c" {
		t.Errorf("cleanText collapse failed: %q", got)
	}
}
