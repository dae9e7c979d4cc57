// Package resolver converts a parsed intent into the concrete, bounded
// list of target pages to visit.
package resolver

import (
	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/catalog"
	"github.com/law-makers/promptscrape/internal/prompt"
	urlutil "github.com/law-makers/promptscrape/internal/utils/url"
	"github.com/law-makers/promptscrape/pkg/models"
)

// MaxTargets caps how many pages one request may fan out to
const MaxTargets = 5

const literalLoadSec = 5

// Resolver builds target descriptors from parsed intents.
// Resolution is pure: same intent in, same ordered targets out.
type Resolver struct {
	catalog *catalog.Catalog
}

// New creates a Resolver over the given catalog
func New(c *catalog.Catalog) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	return &Resolver{catalog: c}
}

// Resolve orders targets as: literal URLs (confidence 1.0), then site
// pattern matches (0.9), then content-type inference (0.7-0.8) only when
// the first two stages produced nothing. Duplicate URLs are dropped and
// the list is capped at MaxTargets. An empty result is a valid outcome
// the orchestrator must surface, not an error here.
func (r *Resolver) Resolve(parsed models.ParsedIntent) []models.TargetDescriptor {
	var targets []models.TargetDescriptor
	seen := make(map[string]struct{})

	add := func(t models.TargetDescriptor) bool {
		if t.URL == "" {
			return true
		}
		if _, dup := seen[t.URL]; dup {
			return true
		}
		seen[t.URL] = struct{}{}
		targets = append(targets, t)
		return len(targets) < MaxTargets
	}

	// Stage 1: URLs the user spelled out. Highest confidence, and we
	// assume JS is needed since nothing is known about the page.
	for _, u := range parsed.URLs {
		if err := urlutil.ValidateURL(u); err != nil {
			log.Debug().Str("url", u).Err(err).Msg("Skipping invalid literal URL")
			continue
		}
		if !add(models.TargetDescriptor{
			URL:              u,
			Domain:           urlutil.RegistrableDomain(u),
			SiteCategory:     "direct",
			ContentType:      parsed.ContentType,
			RequiresDynamic:  true,
			EstimatedLoadSec: literalLoadSec,
			Confidence:       1.0,
		}) {
			return targets
		}
	}

	// Stage 2: sites recognized in the prompt text
	for _, match := range parsed.Sites {
		site, ok := r.catalog.SiteByID(match.SiteID)
		if !ok {
			continue
		}
		if !add(models.TargetDescriptor{
			URL:              match.SearchURL,
			Domain:           urlutil.RegistrableDomain(match.SearchURL),
			SiteCategory:     site.Category,
			ContentType:      parsed.ContentType,
			RequiresDynamic:  site.RequiresDynamic,
			EstimatedLoadSec: site.EstimatedLoadSec,
			Confidence:       match.Confidence,
		}) {
			return targets
		}
	}

	if len(targets) > 0 {
		return targets
	}

	// Stage 3: nothing explicit -- infer canonical sites from the content
	// type alone. General content has no canonical sites, so this can
	// legitimately return nothing.
	for _, cs := range r.catalog.Canonical[parsed.ContentType] {
		site, ok := r.catalog.SiteByID(cs.SiteID)
		if !ok {
			continue
		}
		searchURL := prompt.BuildSearchURL(r.catalog, site.ID, parsed.RawPrompt)
		if !add(models.TargetDescriptor{
			URL:              searchURL,
			Domain:           urlutil.RegistrableDomain(searchURL),
			SiteCategory:     site.Category,
			ContentType:      parsed.ContentType,
			RequiresDynamic:  site.RequiresDynamic,
			EstimatedLoadSec: site.EstimatedLoadSec,
			Confidence:       cs.Confidence,
		}) {
			return targets
		}
	}

	if len(targets) == 0 {
		log.Debug().Str("content_type", string(parsed.ContentType)).Msg("No resolvable targets")
	}

	return targets
}
