package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/promptscrape/pkg/models"
)

// SaveJSON writes the scrape response to filepath as indented JSON.
// Record fields keep their extraction order.
func SaveJSON(resp *models.ScrapeResponse, filepath string) error {
	content, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
