package extract

import (
	"reflect"
	"testing"

	"github.com/law-makers/promptscrape/pkg/models"
)

func TestExtractScriptState(t *testing.T) {
	e := NewExtractor(true)
	html := `<html><body>
		<div id="root"></div>
		<script src="https://cdn.example.com/app.js"></script>
		<script>
			var __PRELOADED_ITEMS__ = [
				{title: "Item one", price: 499, inStock: true},
				{title: "Item two", price: 999, inStock: false}
			];
		</script>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://spa.example.com/list",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 2 {
		t.Fatalf("Expected 2 records from script state, got %d", len(records))
	}
	if title, _ := records[0].Get("title"); title != "Item one" {
		t.Errorf("Unexpected title: %s", title)
	}
	if price, _ := records[0].Get("price"); price != "499" {
		t.Errorf("Unexpected price: %s", price)
	}
	if stock, _ := records[0].Get("inStock"); stock != "true" {
		t.Errorf("Unexpected inStock: %s", stock)
	}
	want := []string{"inStock", "price", "title"}
	for _, rec := range records {
		if got := rec.Fields(); !reflect.DeepEqual(got, want) {
			t.Errorf("Mined fields not in stable order: got %v, want %v", got, want)
		}
	}
}

func TestScriptStateIgnoresBrokenScripts(t *testing.T) {
	e := NewExtractor(true)
	html := `<html><body>
		<script>document.querySelector("#x").innerHTML = "boom";</script>
		<script>this is not even javascript</script>
		<script>var listings = [{name: "Survivor entry"}];</script>
	</body></html>`
	target := models.TargetDescriptor{
		URL:         "https://spa.example.com/",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	records := e.Extract(html, target, models.Requirements{MaxItems: 10})
	if len(records) != 1 {
		t.Fatalf("Expected the surviving script's record, got %d", len(records))
	}
	if name, _ := records[0].Get("name"); name != "Survivor entry" {
		t.Errorf("Unexpected name: %s", name)
	}
}

func TestScriptStateDisabled(t *testing.T) {
	e := NewExtractor(false)
	html := `<html><body><script>var items = [{title: "Hidden item"}];</script></body></html>`
	target := models.TargetDescriptor{
		URL:         "https://spa.example.com/",
		Domain:      "example.com",
		ContentType: models.ContentGeneral,
		Confidence:  1.0,
	}

	if records := e.Extract(html, target, models.Requirements{MaxItems: 10}); len(records) != 0 {
		t.Errorf("Expected no records with mining disabled, got %d", len(records))
	}
}
