package extract

import (
	"strings"

	"github.com/law-makers/promptscrape/pkg/models"
)

// cascade is an ordered set of container selectors plus per-field
// selector lists. The first container selector matching anything wins;
// within a container the first field selector with non-empty text wins.
type cascade struct {
	Containers []string
	Fields     map[string][]string
}

// siteCascades hold class-level selectors for sites whose markup is
// known. Keys match against the target's registrable domain.
var siteCascades = map[string]cascade{
	"flipkart.com": {
		Containers: []string{"div._1AtVbE", "div._13oc-S", "div._2kHMtA"},
		Fields: map[string][]string{
			"title":  {"div._4rR01T", "a.s1Q9rs", "a.IRpwTa", ".product-title"},
			"price":  {"div._30jeq3", "div._25b18c", ".price"},
			"rating": {"div._3LWZlK", ".rating"},
			"image":  {"img._396cs4", "img._2r_T1I"},
			"link":   {"a._1fQZEK", "a.s1Q9rs", "a"},
		},
	},
	"amazon.in": {
		Containers: []string{"div.s-result-item[data-component-type='s-search-result']", "div.s-result-item"},
		Fields: map[string][]string{
			"title":  {"h2 a span", "span.a-text-normal", "h2"},
			"price":  {"span.a-price-whole", "span.a-price > span.a-offscreen", "span.a-price"},
			"rating": {"span.a-icon-alt", "i.a-icon-star-small"},
			"image":  {"img.s-image"},
			"link":   {"h2 a", "a.a-link-normal"},
		},
	},
	"amazon.com": {
		Containers: []string{"div.s-result-item[data-component-type='s-search-result']", "div.s-result-item"},
		Fields: map[string][]string{
			"title":  {"h2 a span", "span.a-text-normal", "h2"},
			"price":  {"span.a-price-whole", "span.a-price > span.a-offscreen", "span.a-price"},
			"rating": {"span.a-icon-alt", "i.a-icon-star-small"},
			"image":  {"img.s-image"},
			"link":   {"h2 a", "a.a-link-normal"},
		},
	},
}

// typeCascades cover each content category with markup conventions that
// generalize across sites: product cards, article teasers, job
// postings, review blocks and so on.
var typeCascades = map[models.ContentType]cascade{
	models.ContentProducts: {
		Containers: []string{
			"[data-component-type='s-search-result']",
			".product-card", ".product-item", ".product", "[class*='product-tile']",
			"li[class*='product']", "div[class*='product-grid'] > div",
			"[data-testid*='product']",
		},
		Fields: map[string][]string{
			"title":  {"h2", "h3", "[class*='title']", "[class*='name']", "a"},
			"price":  {"[class*='price']", "[data-testid*='price']", "span.price"},
			"rating": {"[class*='rating']", "[class*='stars']", "[aria-label*='star']"},
			"image":  {"img"},
			"link":   {"a"},
		},
	},
	models.ContentNews: {
		Containers: []string{
			"article", "[class*='article-card']", "[class*='story-card']",
			"[class*='news-item']", "[class*='headline-item']", ".post", "[itemtype*='NewsArticle']",
		},
		Fields: map[string][]string{
			"title":   {"h1", "h2", "h3", "[class*='headline']", "[class*='title']", "a"},
			"summary": {"p", "[class*='summary']", "[class*='teaser']", "[class*='excerpt']"},
			"date":    {"time", "[class*='date']", "[class*='timestamp']"},
			"author":  {"[class*='author']", "[class*='byline']", "[rel='author']"},
			"link":    {"a"},
		},
	},
	models.ContentJobs: {
		Containers: []string{
			"[class*='job-card']", "[class*='jobTuple']", "[class*='job-listing']",
			"[class*='job-result']", "li[class*='job']", "[data-testid*='job']",
			".result", "article",
		},
		Fields: map[string][]string{
			"title":    {"h2", "h3", "[class*='job-title']", "a[class*='title']", "a"},
			"company":  {"[class*='company']", "[class*='employer']", "[class*='org']"},
			"location": {"[class*='location']", "[class*='loc']", "[class*='city']"},
			"salary":   {"[class*='salary']", "[class*='pay']", "[class*='compensation']"},
			"link":     {"a"},
		},
	},
	models.ContentReviews: {
		Containers: []string{
			"[class*='review-card']", "[class*='review-item']", "[class*='review']",
			"[itemtype*='Review']", "[data-testid*='review']",
		},
		Fields: map[string][]string{
			"author": {"[class*='author']", "[class*='reviewer']", "[class*='user']", "[class*='name']"},
			"rating": {"[class*='rating']", "[class*='stars']", "[aria-label*='star']"},
			"text":   {"[class*='review-text']", "[class*='review-body']", "[class*='comment']", "p"},
			"date":   {"time", "[class*='date']"},
		},
	},
	models.ContentContacts: {
		Containers: []string{
			"[class*='contact-card']", "[class*='team-member']", "[class*='person']",
			"[class*='member']", "[itemtype*='Person']", "[class*='profile-card']",
		},
		Fields: map[string][]string{
			"name":  {"h2", "h3", "h4", "[class*='name']"},
			"email": {"a[href^='mailto:']", "[class*='email']"},
			"phone": {"a[href^='tel:']", "[class*='phone']", "[class*='tel']"},
			"role":  {"[class*='title']", "[class*='role']", "[class*='position']", "[class*='designation']"},
		},
	},
	models.ContentPrices: {
		Containers: []string{
			"[class*='price-card']", "[class*='pricing-plan']", "[class*='plan']",
			"[class*='tier']", "[class*='price-row']", "tr",
		},
		Fields: map[string][]string{
			"name":  {"h2", "h3", "[class*='plan-name']", "[class*='name']", "th", "td:first-child"},
			"price": {"[class*='price']", "[class*='amount']", "[class*='cost']", "td"},
		},
	},
	models.ContentRealEstate: {
		Containers: []string{
			"[class*='property-card']", "[class*='listing-card']", "[class*='listing']",
			"[class*='property']", "[class*='estate']", "article",
		},
		Fields: map[string][]string{
			"title":    {"h2", "h3", "[class*='title']", "[class*='heading']", "a"},
			"price":    {"[class*='price']", "[class*='amount']"},
			"location": {"[class*='location']", "[class*='address']", "[class*='locality']"},
			"area":     {"[class*='area']", "[class*='sqft']", "[class*='size']"},
			"link":     {"a"},
		},
	},
	models.ContentEvents: {
		Containers: []string{
			"[class*='event-card']", "[class*='event-item']", "[class*='event']",
			"[itemtype*='Event']", "article",
		},
		Fields: map[string][]string{
			"title":    {"h2", "h3", "[class*='title']", "[class*='name']", "a"},
			"date":     {"time", "[class*='date']", "[class*='when']"},
			"location": {"[class*='location']", "[class*='venue']", "[class*='where']"},
			"price":    {"[class*='price']", "[class*='ticket']"},
			"link":     {"a"},
		},
	},
}

// cascadeFor picks the most specific cascade for a target: a known
// site's class selectors first, then the content-category conventions.
// A nil return means there is nothing to try before the generic pass.
func cascadeFor(domain string, contentType models.ContentType) (cascade, bool) {
	for site, c := range siteCascades {
		if strings.Contains(domain, site) {
			return c, true
		}
	}
	if c, ok := typeCascades[contentType]; ok {
		return c, true
	}
	return cascade{}, false
}

// anchorsByType lists, per content category, the fields that make a
// record worth keeping. A container yielding none of them is noise
// (nav chrome, ad slots). A product card with only a price is still a
// product; a job card with only a company is still a job.
var anchorsByType = map[models.ContentType][]string{
	models.ContentProducts:   {"title", "name", "price"},
	models.ContentRealEstate: {"title", "price"},
	models.ContentJobs:       {"title", "company"},
	models.ContentNews:       {"headline", "title"},
}

// defaultAnchors cover categories without a specific anchor rule.
var defaultAnchors = []string{"title", "name", "text", "headline", "content"}

func anchorsFor(ct models.ContentType) []string {
	if anchors, ok := anchorsByType[ct]; ok {
		return anchors
	}
	return defaultAnchors
}

func hasAnchor(r *models.Record, ct models.ContentType) bool {
	for _, f := range anchorsFor(ct) {
		if r.Has(f) {
			return true
		}
	}
	return false
}
