// Package catalog holds the static recognition data the analyzer and
// resolver work from: site patterns, search templates, keyword tables.
// A Catalog is built once and shared read-only across concurrent tasks.
package catalog

import "github.com/law-makers/promptscrape/pkg/models"

// Site describes one known website: how to recognize it in a prompt and
// how to build a search URL for it.
type Site struct {
	ID               string
	Category         string
	Patterns         []string
	SearchTemplate   string
	RequiresDynamic  bool
	EstimatedLoadSec int
}

// FieldKeywords maps a semantic field name to prompt keywords that imply it
type FieldKeywords struct {
	Field    string
	Keywords []string
}

// IntentKeywords maps an intent tag to its trigger keywords.
// Order matters: the first matching entry wins.
type IntentKeywords struct {
	Intent   models.Intent
	Keywords []string
}

// CanonicalSite is a fallback site suggested purely from content type
type CanonicalSite struct {
	SiteID     string
	Confidence float64
}

// Catalog is the full recognition dataset. Treat as immutable.
type Catalog struct {
	Sites           []Site
	ContentKeywords map[models.ContentType][]string
	DefaultFields   map[models.ContentType][]string
	Fields          []FieldKeywords
	Intents         []IntentKeywords
	Canonical       map[models.ContentType][]CanonicalSite
	Stopwords       map[string]struct{}
	DomainDenylist  map[string]struct{}

	// GenericSearchTemplate is used for site ids without a template
	GenericSearchTemplate string
}

// SiteByID returns the site entry for an id, if known
func (c *Catalog) SiteByID(id string) (Site, bool) {
	for _, s := range c.Sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}

// IsStopword reports whether the lower-cased token is a stopword
func (c *Catalog) IsStopword(token string) bool {
	_, ok := c.Stopwords[token]
	return ok
}

// Default builds the built-in catalog
func Default() *Catalog {
	return &Catalog{
		Sites: []Site{
			{ID: "flipkart", Category: "ecommerce", Patterns: []string{"flipkart"},
				SearchTemplate: "https://www.flipkart.com/search?q=%s", RequiresDynamic: true, EstimatedLoadSec: 8},
			{ID: "amazon", Category: "ecommerce", Patterns: []string{"amazon"},
				SearchTemplate: "https://www.amazon.in/s?k=%s", RequiresDynamic: true, EstimatedLoadSec: 8},
			{ID: "ebay", Category: "ecommerce", Patterns: []string{"ebay"},
				SearchTemplate: "https://www.ebay.com/sch/i.html?_nkw=%s", RequiresDynamic: true, EstimatedLoadSec: 6},
			{ID: "myntra", Category: "ecommerce", Patterns: []string{"myntra"},
				SearchTemplate: "https://www.myntra.com/%s", RequiresDynamic: true, EstimatedLoadSec: 8},
			{ID: "snapdeal", Category: "ecommerce", Patterns: []string{"snapdeal"},
				SearchTemplate: "https://www.snapdeal.com/search?keyword=%s", RequiresDynamic: true, EstimatedLoadSec: 6},
			{ID: "naukri", Category: "jobs", Patterns: []string{"naukri"},
				SearchTemplate: "https://www.naukri.com/%s-jobs", RequiresDynamic: true, EstimatedLoadSec: 8},
			{ID: "indeed", Category: "jobs", Patterns: []string{"indeed"},
				SearchTemplate: "https://www.indeed.com/jobs?q=%s", RequiresDynamic: true, EstimatedLoadSec: 6},
			{ID: "linkedin", Category: "jobs", Patterns: []string{"linkedin"},
				SearchTemplate: "https://www.linkedin.com/jobs/search/?keywords=%s", RequiresDynamic: true, EstimatedLoadSec: 10},
			{ID: "timesofindia", Category: "news", Patterns: []string{"times of india", "timesofindia", "toi "},
				SearchTemplate: "https://timesofindia.indiatimes.com/topic/%s", RequiresDynamic: true, EstimatedLoadSec: 6},
			{ID: "ndtv", Category: "news", Patterns: []string{"ndtv"},
				SearchTemplate: "https://www.ndtv.com/search?searchtext=%s", RequiresDynamic: false, EstimatedLoadSec: 5},
			{ID: "bbc", Category: "news", Patterns: []string{"bbc"},
				SearchTemplate: "https://www.bbc.co.uk/search?q=%s", RequiresDynamic: false, EstimatedLoadSec: 5},
			{ID: "india_gov", Category: "government", Patterns: []string{"government", "govt", "ministry", "gov.in"},
				SearchTemplate: "https://www.india.gov.in/search/site/%s", RequiresDynamic: false, EstimatedLoadSec: 5},
			{ID: "magicbricks", Category: "real_estate", Patterns: []string{"magicbricks"},
				SearchTemplate: "https://www.magicbricks.com/property-for-sale/residential-real-estate?keyword=%s", RequiresDynamic: true, EstimatedLoadSec: 10},
			{ID: "99acres", Category: "real_estate", Patterns: []string{"99acres", "99 acres"},
				SearchTemplate: "https://www.99acres.com/search/property/buy/%s", RequiresDynamic: true, EstimatedLoadSec: 10},
			{ID: "tripadvisor", Category: "reviews", Patterns: []string{"tripadvisor", "trip advisor"},
				SearchTemplate: "https://www.tripadvisor.com/Search?q=%s", RequiresDynamic: true, EstimatedLoadSec: 8},
			{ID: "eventbrite", Category: "events", Patterns: []string{"eventbrite"},
				SearchTemplate: "https://www.eventbrite.com/d/online/%s/", RequiresDynamic: true, EstimatedLoadSec: 8},
		},

		ContentKeywords: map[models.ContentType][]string{
			models.ContentProducts: {"product", "products", "buy", "shop", "mobile", "mobiles",
				"laptop", "laptops", "phone", "phones", "electronics", "fashion", "gadget",
				"headphone", "watch", "tablet", "camera", "item", "items", "deal", "deals"},
			models.ContentNews: {"news", "article", "articles", "headline", "headlines",
				"breaking", "notification", "notifications", "announcement", "press", "bulletin"},
			models.ContentJobs: {"job", "jobs", "vacancy", "vacancies", "hiring", "career",
				"careers", "recruitment", "opening", "openings", "internship"},
			models.ContentReviews: {"review", "reviews", "feedback", "testimonial",
				"testimonials", "opinion", "opinions"},
			models.ContentContacts: {"contact", "contacts", "email", "emails", "phone number",
				"address", "directory"},
			models.ContentPrices: {"pricing", "cheapest", "price list", "price comparison",
				"quotation", "tariff"},
			models.ContentTables: {"table", "tables", "spreadsheet", "dataset", "statistics",
				"data table"},
			models.ContentRealEstate: {"property", "properties", "apartment", "apartments",
				"flat", "flats", "house", "houses", "rent", "real estate", "bhk", "villa"},
			models.ContentEvents: {"event", "events", "concert", "festival", "conference",
				"ticket", "tickets", "webinar", "meetup"},
		},

		DefaultFields: map[models.ContentType][]string{
			models.ContentProducts:   {"title", "price", "rating", "description", "availability"},
			models.ContentNews:       {"headline", "date", "summary"},
			models.ContentJobs:       {"title", "company", "location", "salary", "date"},
			models.ContentReviews:    {"title", "rating", "author", "date", "content"},
			models.ContentContacts:   {"name", "email", "phone", "address"},
			models.ContentPrices:     {"title", "price"},
			models.ContentTables:     {"title", "value"},
			models.ContentRealEstate: {"title", "price", "location", "area"},
			models.ContentEvents:     {"title", "date", "location", "venue"},
			models.ContentGeneral:    {"title", "content"},
		},

		Fields: []FieldKeywords{
			{Field: "price", Keywords: []string{"price", "cost", "amount", "mrp"}},
			{Field: "title", Keywords: []string{"title", "name", "heading"}},
			{Field: "description", Keywords: []string{"description", "detail", "details", "spec", "specs", "summary"}},
			{Field: "rating", Keywords: []string{"rating", "ratings", "star", "stars", "score"}},
			{Field: "date", Keywords: []string{"date", "published", "posted", "when"}},
			{Field: "location", Keywords: []string{"location", "city", "place", "where"}},
			{Field: "contact", Keywords: []string{"contact", "email", "phone"}},
			{Field: "image", Keywords: []string{"image", "images", "photo", "photos", "picture"}},
			{Field: "link", Keywords: []string{"link", "links", "url", "urls"}},
		},

		Intents: []IntentKeywords{
			{Intent: models.IntentExtractAll, Keywords: []string{"everything", "all the", "entire", "complete list"}},
			{Intent: models.IntentExtractSpecific, Keywords: []string{"only the", "just the", "specific"}},
			{Intent: models.IntentCompare, Keywords: []string{"compare", "comparison", " vs ", "versus"}},
			{Intent: models.IntentFilter, Keywords: []string{"filter", "under", "below", "above", "between", "less than", "more than"}},
			{Intent: models.IntentSort, Keywords: []string{"sort", "sorted", "order by", "cheapest", "highest", "lowest"}},
			{Intent: models.IntentCount, Keywords: []string{"count", "how many", "number of"}},
			{Intent: models.IntentLatest, Keywords: []string{"latest", "recent", "newest", "today's"}},
			{Intent: models.IntentSearch, Keywords: []string{"search", "find", "scrape", "get", "fetch", "look for"}},
		},

		Canonical: map[models.ContentType][]CanonicalSite{
			models.ContentProducts:   {{SiteID: "amazon", Confidence: 0.8}, {SiteID: "flipkart", Confidence: 0.8}},
			models.ContentNews:       {{SiteID: "timesofindia", Confidence: 0.75}, {SiteID: "bbc", Confidence: 0.75}},
			models.ContentJobs:       {{SiteID: "indeed", Confidence: 0.8}, {SiteID: "naukri", Confidence: 0.75}},
			models.ContentReviews:    {{SiteID: "tripadvisor", Confidence: 0.7}},
			models.ContentPrices:     {{SiteID: "flipkart", Confidence: 0.7}, {SiteID: "amazon", Confidence: 0.7}},
			models.ContentRealEstate: {{SiteID: "magicbricks", Confidence: 0.75}, {SiteID: "99acres", Confidence: 0.7}},
			models.ContentEvents:     {{SiteID: "eventbrite", Confidence: 0.7}},
		},

		Stopwords: toSet(
			"a", "an", "the", "and", "or", "of", "in", "on", "to", "for", "from", "with",
			"at", "by", "me", "my", "we", "our", "you", "your", "it", "its", "is", "are",
			"was", "were", "be", "been", "that", "this", "these", "those", "can", "could",
			"will", "would", "should", "please", "scrape", "get", "find", "fetch", "show",
			"list", "give", "want", "need", "all", "some", "any", "top", "best", "data",
			"info", "information", "items", "records", "results", "website", "site",
			"page", "pages", "web",
		),

		DomainDenylist: toSet("e.g", "i.e", "etc", "a.m", "p.m", "vs"),

		GenericSearchTemplate: "https://www.google.com/search?q=%s",
	}
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
