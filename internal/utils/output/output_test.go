package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/promptscrape/pkg/models"
)

func testRecord(t *testing.T, fields ...string) *models.Record {
	t.Helper()
	rec, err := models.NewRecord("https://example.com/p", "example.com", 0.9, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		rec.Set(fields[i], fields[i+1])
	}
	return rec
}

func TestColumnOrder(t *testing.T) {
	records := []*models.Record{
		testRecord(t, "title", "First", "price", "100"),
		testRecord(t, "title", "Second", "rating", "4.2"),
	}

	want := []string{"title", "price", "rating", "source_url", "source_domain", "scraped_at", "confidence"}
	if got := columnOrder(records); !reflect.DeepEqual(got, want) {
		t.Errorf("columnOrder = %v, want %v", got, want)
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := []*models.Record{
		testRecord(t, "title", "Phone, cheap", "price", "9,999"),
		testRecord(t, "title", "Laptop"),
	}

	if err := SaveCSV(records, path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV unreadable: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "title" || rows[0][1] != "price" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Phone, cheap" {
		t.Errorf("Comma in value mangled: %q", rows[1][0])
	}
	// Second record has no price; the cell stays empty
	if rows[2][1] != "" {
		t.Errorf("Expected empty price cell, got %q", rows[2][1])
	}
	if rows[1][2] != "https://example.com/p" {
		t.Errorf("Provenance column missing: %v", rows[1])
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	resp := &models.ScrapeResponse{
		Results: []*models.Record{testRecord(t, "title", "Item")},
		Website: "example.com",
		Success: true,
		Message: "extracted 1 records from 1 of 1 targets",
	}

	if err := SaveJSON(resp, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Output not valid JSON: %v", err)
	}
	if parsed["website"] != "example.com" {
		t.Errorf("Unexpected website: %v", parsed["website"])
	}
	results, ok := parsed["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("Unexpected results: %v", parsed["results"])
	}
	first := results[0].(map[string]interface{})
	if first["title"] != "Item" || first["source_domain"] != "example.com" {
		t.Errorf("Record flattening broken: %v", first)
	}
}

func TestSaveExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	records := []*models.Record{testRecord(t, "title", "Item", "price", "50")}

	if err := SaveExcel(records, path); err != nil {
		t.Fatalf("SaveExcel failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Workbook missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Workbook is empty")
	}
}

func TestSavePageMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.md")
	html := `<html><body>
		<h1>Catalog</h1>
		<p>Browse <a href="/items/1">the first item</a> here.</p>
		<script>var noise = 1;</script>
	</body></html>`

	if err := SavePageMarkdown("https://example.com/catalog", html, path); err != nil {
		t.Fatalf("SavePageMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.Contains(text, "# Catalog") {
		t.Errorf("Heading missing: %s", text)
	}
	if !strings.Contains(text, "https://example.com/items/1") {
		t.Errorf("Relative link not resolved: %s", text)
	}
	if strings.Contains(text, "var noise") {
		t.Errorf("Script content leaked: %s", text)
	}
}
