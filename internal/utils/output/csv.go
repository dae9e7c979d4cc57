package output

import (
	"encoding/csv"
	"os"

	"github.com/law-makers/promptscrape/pkg/models"
)

// provenanceColumns are appended after the extracted fields
var provenanceColumns = []string{"source_url", "source_domain", "scraped_at", "confidence"}

// SaveCSV writes records to a CSV file. Columns are the union of all
// record fields in first-seen order, then the provenance columns.
func SaveCSV(records []*models.Record, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := columnOrder(records)
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, rec := range records {
		flat := rec.Map()
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = flat[h]
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// columnOrder unions field names across records, preserving the order
// they first appeared in
func columnOrder(records []*models.Record) []string {
	var headers []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, f := range rec.Fields() {
			if !seen[f] {
				seen[f] = true
				headers = append(headers, f)
			}
		}
	}
	return append(headers, provenanceColumns...)
}
