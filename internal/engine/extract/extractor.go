// Package extract turns rendered page snapshots into structured
// records. It tries known selectors first, then detects repeated
// structures, then mines inline script state, and finally falls back
// to prose so a page never yields nothing it didn't have to.
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/pkg/models"
)

// provenance carries the source attribution stamped on every record
type provenance struct {
	URL        string
	Domain     string
	Confidence float64
	At         time.Time
}

func (p provenance) newRecord() *models.Record {
	r, err := models.NewRecord(p.URL, p.Domain, p.Confidence, p.At)
	if err != nil {
		// Only possible with empty provenance, which Extract guards
		log.Warn().Err(err).Msg("Record construction failed")
		return nil
	}
	return r
}

// HTMLExtractor implements the extraction cascade over goquery
type HTMLExtractor struct {
	mineScripts bool
}

// NewExtractor creates an HTMLExtractor. Script-state mining is on by
// default; disable it for pages where inline JS is untrusted noise.
func NewExtractor(mineScripts bool) *HTMLExtractor {
	return &HTMLExtractor{mineScripts: mineScripts}
}

// Extract runs the cascade against the snapshot. It never returns an
// error; a page that defeats every phase yields an empty slice.
func (e *HTMLExtractor) Extract(html string, target models.TargetDescriptor, reqs models.Requirements) []*models.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Str("url", target.URL).Msg("Failed to parse snapshot")
		return nil
	}

	prov := provenance{
		URL:        target.URL,
		Domain:     target.Domain,
		Confidence: target.Confidence,
		At:         time.Now(),
	}
	if prov.URL == "" || prov.Domain == "" {
		log.Warn().Msg("Target missing provenance, skipping extraction")
		return nil
	}

	records := e.fromCascade(doc, target, reqs, prov)
	phase := "cascade"

	if len(records) == 0 {
		records = e.fromRepeatedStructures(doc, prov)
		phase = "generic"
	}
	if len(records) == 0 && e.mineScripts {
		records = e.fromScriptState(doc, reqs, prov)
		phase = "script"
	}
	if len(records) == 0 {
		records = e.fromProse(doc, prov)
		phase = "prose"
	}

	if reqs.MaxItems > 0 && len(records) > reqs.MaxItems {
		records = records[:reqs.MaxItems]
	}

	log.Debug().
		Str("url", target.URL).
		Str("phase", phase).
		Int("records", len(records)).
		Msg("Extraction complete")

	return records
}

// fromCascade applies the site or content-type selector cascade.
// Containers that produce no anchor field are dropped.
func (e *HTMLExtractor) fromCascade(doc *goquery.Document, target models.TargetDescriptor, reqs models.Requirements, prov provenance) []*models.Record {
	c, ok := cascadeFor(target.Domain, target.ContentType)
	if !ok {
		return nil
	}

	var containers *goquery.Selection
	for _, sel := range c.Containers {
		found := doc.Find(sel)
		if found.Length() > 0 {
			containers = found
			break
		}
	}
	if containers == nil {
		return nil
	}

	wanted := fieldFilter(reqs.Fields, target.ContentType)

	var records []*models.Record
	containers.Each(func(i int, container *goquery.Selection) {
		rec := prov.newRecord()
		if rec == nil {
			return
		}
		for field, selectors := range c.Fields {
			if field == "image" && !reqs.IncludeImages {
				continue
			}
			if field == "link" && !reqs.IncludeLinks {
				continue
			}
			if wanted != nil && !wanted[field] {
				continue
			}
			if value := firstMatch(container, field, selectors); value != "" {
				rec.Set(field, normalizeField(field, value))
			}
		}
		if hasAnchor(rec, target.ContentType) {
			records = append(records, rec)
		}
	})
	return records
}

// fieldFilter builds the requested-field set. Anchor fields are always
// kept so a narrowed request still yields identifiable records.
func fieldFilter(fields []string, ct models.ContentType) map[string]bool {
	if len(fields) == 0 {
		return nil
	}
	anchors := anchorsFor(ct)
	wanted := make(map[string]bool, len(fields)+len(anchors))
	for _, f := range fields {
		wanted[strings.ToLower(strings.TrimSpace(f))] = true
	}
	for _, f := range anchors {
		wanted[f] = true
	}
	return wanted
}

// firstMatch walks the field's selector list and returns the first
// non-empty value. Images yield src, links yield href, everything else
// yields text.
func firstMatch(container *goquery.Selection, field string, selectors []string) string {
	for _, sel := range selectors {
		found := container.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		switch field {
		case "image":
			if src, ok := found.Attr("src"); ok && src != "" {
				return src
			}
		case "link":
			if href, ok := found.Attr("href"); ok && href != "" {
				return href
			}
		case "email":
			if href, ok := found.Attr("href"); ok && strings.HasPrefix(href, "mailto:") {
				return strings.TrimPrefix(href, "mailto:")
			}
			if text := cleanText(found.Text()); text != "" {
				return text
			}
		case "phone":
			if href, ok := found.Attr("href"); ok && strings.HasPrefix(href, "tel:") {
				return strings.TrimPrefix(href, "tel:")
			}
			if text := cleanText(found.Text()); text != "" {
				return text
			}
		default:
			if text := cleanText(found.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// fromProse is the last resort: headings paired with following
// paragraphs, so even an unstructured page returns something readable
func (e *HTMLExtractor) fromProse(doc *goquery.Document, prov provenance) []*models.Record {
	var records []*models.Record

	doc.Find("h1, h2, h3").Each(func(i int, heading *goquery.Selection) {
		title := cleanText(heading.Text())
		if len(title) < minProseLen {
			return
		}
		rec := prov.newRecord()
		if rec == nil {
			return
		}
		rec.Set("title", title)
		if body := cleanText(heading.NextFiltered("p").Text()); len(body) >= minProseLen {
			rec.Set("content", body)
		}
		rec.Set("type", "heading")
		records = append(records, rec)
	})

	if len(records) > 0 {
		return records
	}

	// No usable headings: paragraphs alone
	doc.Find("p").Each(func(i int, para *goquery.Selection) {
		text := cleanText(para.Text())
		if len(text) < minProseLen {
			return
		}
		rec := prov.newRecord()
		if rec == nil {
			return
		}
		rec.Set("content", text)
		rec.Set("type", "paragraph")
		records = append(records, rec)
	})
	return records
}

const minProseLen = 10
