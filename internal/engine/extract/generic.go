package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/promptscrape/pkg/models"
)

const (
	// minGroupSize is how many siblings must share a class token before
	// the group counts as a listing
	minGroupSize = 3
	// minSampleLen filters out icon rows and spacer divs
	minSampleLen = 20
	// maxGenericRecords bounds the output of one detected group
	maxGenericRecords = 50
)

// fromRepeatedStructures detects listing pages with unknown markup by
// grouping elements on their first class token. The largest qualifying
// group is treated as the record container.
func (e *HTMLExtractor) fromRepeatedStructures(doc *goquery.Document, prov provenance) []*models.Record {
	groups := make(map[string][]*goquery.Selection)

	doc.Find("div, li, article, section, tr").Each(func(i int, sel *goquery.Selection) {
		class, ok := sel.Attr("class")
		if !ok {
			return
		}
		token := firstClassToken(class)
		if token == "" {
			return
		}
		groups[token] = append(groups[token], sel)
	})

	var best []*goquery.Selection
	for _, members := range groups {
		if len(members) < minGroupSize || len(members) <= len(best) {
			continue
		}
		if len(cleanText(members[0].Text())) < minSampleLen {
			continue
		}
		best = members
	}
	if best == nil {
		return nil
	}

	if len(best) > maxGenericRecords {
		best = best[:maxGenericRecords]
	}

	var records []*models.Record
	for _, member := range best {
		rec := prov.newRecord()
		if rec == nil {
			continue
		}
		if title := cleanText(member.Find("h1, h2, h3, h4, strong, a").First().Text()); title != "" {
			rec.Set("title", title)
		}
		if text := cleanText(member.Text()); text != "" {
			rec.Set("text", text)
		}
		// Pull obviously labelled values when present
		if price := cleanText(member.Find("[class*='price']").First().Text()); price != "" {
			rec.Set("price", normalizePrice(price))
		}
		if hasAnchor(rec, models.ContentGeneral) {
			records = append(records, rec)
		}
	}
	return records
}

// firstClassToken extracts the leading class name
func firstClassToken(class string) string {
	for _, token := range strings.Fields(class) {
		return token
	}
	return ""
}
