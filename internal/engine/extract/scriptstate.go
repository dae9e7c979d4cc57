package extract

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"

	"github.com/law-makers/promptscrape/pkg/models"
)

// fromScriptState runs the page's inline scripts in a sandboxed VM and
// mines the globals they leave behind. Single-page apps often ship
// their listing data as a preloaded-state assignment before any
// markup exists, which makes this worth trying when the DOM passes
// found nothing.
func (e *HTMLExtractor) fromScriptState(doc *goquery.Document, reqs models.Requirements, prov provenance) []*models.Record {
	vm := goja.New()

	// Just enough browser surface for data assignments to run; real
	// DOM access fails and is ignored
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": prov.URL},
	})
	vm.Set("location", map[string]interface{}{"href": prov.URL})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"warn":  func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if content := sel.Text(); content != "" {
			// Most scripts fail on missing DOM; that's fine
			_, _ = vm.RunString(content)
		}
	})

	var records []*models.Record
	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		val := vm.Get(key)
		if val == nil {
			continue
		}
		records = append(records, recordsFromExport(val.Export(), prov)...)
		if reqs.MaxItems > 0 && len(records) >= reqs.MaxItems {
			records = records[:reqs.MaxItems]
			break
		}
	}
	return records
}

// recordsFromExport converts an exported global into records when it
// is an array of flat objects. Anything else is ignored.
func recordsFromExport(v interface{}, prov provenance) []*models.Record {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}

	var records []*models.Record
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rec := prov.newRecord()
		if rec == nil {
			continue
		}
		// Map iteration order would shuffle fields run to run
		fields := make([]string, 0, len(obj))
		for field := range obj {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			switch value := obj[field].(type) {
			case string:
				rec.Set(field, cleanText(value))
			case float64, int64, bool:
				rec.Set(field, fmt.Sprintf("%v", value))
			}
		}
		if rec.Len() > 0 {
			records = append(records, rec)
		}
	}
	return records
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	return standards[key]
}
