package models

import (
	"fmt"
	"time"
)

// ContentType classifies what kind of records a prompt is asking for
type ContentType string

const (
	ContentProducts   ContentType = "products"
	ContentNews       ContentType = "news"
	ContentJobs       ContentType = "jobs"
	ContentReviews    ContentType = "reviews"
	ContentContacts   ContentType = "contacts"
	ContentPrices     ContentType = "prices"
	ContentTables     ContentType = "tables"
	ContentRealEstate ContentType = "real_estate"
	ContentEvents     ContentType = "events"
	ContentGeneral    ContentType = "general"
)

// ContentTypes lists all content types in declaration order.
// Detection ties are broken by this order.
var ContentTypes = []ContentType{
	ContentProducts,
	ContentNews,
	ContentJobs,
	ContentReviews,
	ContentContacts,
	ContentPrices,
	ContentTables,
	ContentRealEstate,
	ContentEvents,
	ContentGeneral,
}

// Intent tags what the user wants done with the extracted data
type Intent string

const (
	IntentExtractAll      Intent = "extract_all"
	IntentExtractSpecific Intent = "extract_specific"
	IntentCompare         Intent = "compare"
	IntentFilter          Intent = "filter"
	IntentSort            Intent = "sort"
	IntentCount           Intent = "count"
	IntentLatest          Intent = "latest"
	IntentSearch          Intent = "search"
)

// PriceRange is an inferred price filter. Nil bounds are unbounded.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Filters holds constraints extracted from the prompt text
type Filters struct {
	Price     *PriceRange `json:"price,omitempty"`
	RatingMin float64     `json:"rating_min,omitempty"`
	Locations []string    `json:"locations,omitempty"`
	Keywords  []string    `json:"keywords,omitempty"`
}

// ParsedIntent is the structured interpretation of a raw prompt.
// ContentType is always assigned (general at worst) and MaxItems is
// always clamped into [1,1000].
type ParsedIntent struct {
	RawPrompt   string      `json:"raw_prompt"`
	URLs        []string    `json:"urls,omitempty"`
	ContentType ContentType `json:"content_type"`
	Intent      Intent      `json:"intent"`
	Filters     Filters     `json:"filters"`
	Fields      []string    `json:"fields"`
	Sites       []SiteMatch `json:"sites,omitempty"`
	MaxItems    int         `json:"max_items"`
}

// SiteMatch is a site recognized inside the prompt text
type SiteMatch struct {
	SiteID     string  `json:"site_id"`
	Category   string  `json:"category"`
	SearchURL  string  `json:"search_url"`
	Confidence float64 `json:"confidence"`
}

// TargetDescriptor is a resolved, concrete page to visit.
// Created once by the resolver and read-only afterwards.
type TargetDescriptor struct {
	URL              string      `json:"url"`
	Domain           string      `json:"domain"`
	SiteCategory     string      `json:"site_category"`
	ContentType      ContentType `json:"content_type"`
	RequiresDynamic  bool        `json:"requires_dynamic"`
	EstimatedLoadSec int         `json:"estimated_load_sec"`
	Confidence       float64     `json:"confidence"`
}

// OutputFormat selects how records are serialized on the way out
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatExcel OutputFormat = "excel"
)

// Requirements describes what to pull out of each target page.
// Explicit request values win over prompt-inferred ones.
type Requirements struct {
	Fields        []string     `json:"fields"`
	IncludeImages bool         `json:"include_images"`
	IncludeLinks  bool         `json:"include_links"`
	MaxItems      int          `json:"max_items"`
	Format        OutputFormat `json:"format"`
	KeepHTML      bool         `json:"-"`
}

// Record is one extracted item: a schema-free ordered field map plus
// mandatory provenance. Values stay strings at this layer.
type Record struct {
	fields map[string]string
	order  []string

	SourceURL    string    `json:"source_url"`
	SourceDomain string    `json:"source_domain"`
	ScrapedAt    time.Time `json:"scraped_at"`
	Confidence   float64   `json:"confidence"`
}

// NewRecord creates a record with validated provenance
func NewRecord(sourceURL, sourceDomain string, confidence float64, scrapedAt time.Time) (*Record, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("record requires a source URL")
	}
	if sourceDomain == "" {
		return nil, fmt.Errorf("record requires a source domain")
	}
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}
	return &Record{
		fields:       make(map[string]string),
		SourceURL:    sourceURL,
		SourceDomain: sourceDomain,
		ScrapedAt:    scrapedAt,
		Confidence:   confidence,
	}, nil
}

// Set stores a field value, preserving first-insertion order
func (r *Record) Set(field, value string) {
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	if _, exists := r.fields[field]; !exists {
		r.order = append(r.order, field)
	}
	r.fields[field] = value
}

// Get returns a field value and whether it is present
func (r *Record) Get(field string) (string, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// Has reports whether the field is present and non-empty
func (r *Record) Has(field string) bool {
	v, ok := r.fields[field]
	return ok && v != ""
}

// Fields returns field names in insertion order
func (r *Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of stored fields
func (r *Record) Len() int {
	return len(r.fields)
}

// Map flattens the record, provenance included, for serialization
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.fields)+4)
	for k, v := range r.fields {
		out[k] = v
	}
	out["source_url"] = r.SourceURL
	out["source_domain"] = r.SourceDomain
	out["scraped_at"] = r.ScrapedAt.Format(time.RFC3339)
	out["confidence"] = fmt.Sprintf("%.2f", r.Confidence)
	return out
}

// MarshalJSON emits the flattened record: extracted fields in insertion
// order, provenance keys last
func (r *Record) MarshalJSON() ([]byte, error) {
	m := r.Map()
	buf := make([]byte, 0, 128)
	buf = append(buf, '{')
	writeKV := func(k, v string) {
		if len(buf) > 1 {
			buf = append(buf, ',')
		}
		buf = appendJSONString(buf, k)
		buf = append(buf, ':')
		buf = appendJSONString(buf, v)
	}
	for _, k := range r.order {
		writeKV(k, r.fields[k])
	}
	for _, k := range []string{"source_url", "source_domain", "scraped_at", "confidence"} {
		writeKV(k, m[k])
	}
	buf = append(buf, '}')
	return buf, nil
}

func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, []byte(fmt.Sprintf("\\u%04x", r))...)
			} else {
				buf = append(buf, []byte(string(r))...)
			}
		}
	}
	return append(buf, '"')
}

// FailedTarget describes one target that could not be scraped
type FailedTarget struct {
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	ErrorKind   string `json:"error_kind"`
	ErrorDetail string `json:"error_detail"`
}

// Outcome is the aggregate result of one orchestrator run.
// Built once, never mutated after return.
type Outcome struct {
	Records       []*Record         `json:"records"`
	Succeeded     int               `json:"successful_target_count"`
	Failed        []FailedTarget    `json:"failed_targets,omitempty"`
	SuccessRate   float64           `json:"success_rate"`
	ElapsedSec    float64           `json:"elapsed_seconds"`
	PageSnapshots map[string]string `json:"-"`
}

// ScrapeRequest is the validated inbound request from the API/UI layer
type ScrapeRequest struct {
	Prompt   string `json:"prompt"`
	MaxItems int    `json:"max_items,omitempty"`
	Identity string `json:"-"`
	Admin    bool   `json:"-"`
}

// ScrapeResponse is the outbound result handed back to the API/UI layer
type ScrapeResponse struct {
	Results        []*Record      `json:"results"`
	Website        string         `json:"website"`
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	RecordCount    int            `json:"record_count"`
	FailedWebsites []FailedTarget `json:"failed_websites,omitempty"`

	// PageSnapshots holds rendered HTML per target URL when the caller
	// asked to keep it. Never serialized.
	PageSnapshots map[string]string `json:"-"`
}
