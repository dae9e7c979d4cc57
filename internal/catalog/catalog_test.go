package catalog

import (
	"strings"
	"testing"
)

func TestSiteByID(t *testing.T) {
	c := Default()

	site, ok := c.SiteByID("flipkart")
	if !ok {
		t.Fatal("Expected flipkart to be known")
	}
	if site.Category != "ecommerce" {
		t.Errorf("Expected ecommerce category, got %s", site.Category)
	}
	if !strings.Contains(site.SearchTemplate, "%s") {
		t.Errorf("Search template missing placeholder: %s", site.SearchTemplate)
	}

	if _, ok := c.SiteByID("nonexistent"); ok {
		t.Error("Expected unknown id to miss")
	}
}

func TestSearchTemplatesWellFormed(t *testing.T) {
	c := Default()
	for _, site := range c.Sites {
		if site.ID == "" || site.Category == "" {
			t.Errorf("Site with empty id or category: %#v", site)
		}
		if len(site.Patterns) == 0 {
			t.Errorf("Site %s has no patterns", site.ID)
		}
		if site.SearchTemplate != "" && strings.Count(site.SearchTemplate, "%s") != 1 {
			t.Errorf("Site %s template needs exactly one placeholder: %s", site.ID, site.SearchTemplate)
		}
	}
}

func TestCanonicalSitesResolve(t *testing.T) {
	c := Default()
	for ct, entries := range c.Canonical {
		for _, entry := range entries {
			if _, ok := c.SiteByID(entry.SiteID); !ok {
				t.Errorf("Canonical site %s for %s not in catalog", entry.SiteID, ct)
			}
			if entry.Confidence <= 0 || entry.Confidence >= 0.9 {
				t.Errorf("Canonical confidence for %s out of band: %f", entry.SiteID, entry.Confidence)
			}
		}
	}
}

func TestStopwordsAndDenylist(t *testing.T) {
	c := Default()

	for _, w := range []string{"the", "scrape", "please", "website"} {
		if !c.IsStopword(w) {
			t.Errorf("Expected %q to be a stopword", w)
		}
	}
	if c.IsStopword("laptop") {
		t.Error("laptop should not be a stopword")
	}

	if _, ok := c.DomainDenylist["e.g"]; !ok {
		t.Error("Expected e.g in domain denylist")
	}
}
