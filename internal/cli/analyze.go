// internal/cli/analyze.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/ui"
	"github.com/law-makers/promptscrape/pkg/models"
)

var analyzeJSON bool

// analyzeCmd shows what a prompt would resolve to without scraping
var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt>",
	Short: "Show how a prompt would be interpreted, without scraping",
	Example: `  promptscrape analyze "top 30 mobiles from Flipkart with price and rating"
  promptscrape analyze "latest government notifications" --as-json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "as-json", false, "Print the full analysis as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	parsed, err := a.Service.Analyze(args[0])
	if err != nil {
		return err
	}
	targets := a.Resolver.Resolve(parsed)

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"intent":  parsed,
			"targets": targets,
		})
	}

	fmt.Printf("\n%s\n", ui.Bold("Prompt analysis"))
	fmt.Printf("  %s %s\n", ui.Bold("content type:"), parsed.ContentType)
	fmt.Printf("  %s %s\n", ui.Bold("intent:"), parsed.Intent)
	fmt.Printf("  %s %v\n", ui.Bold("fields:"), parsed.Fields)
	fmt.Printf("  %s %d\n", ui.Bold("max items:"), parsed.MaxItems)
	if len(parsed.URLs) > 0 {
		fmt.Printf("  %s %v\n", ui.Bold("urls:"), parsed.URLs)
	}
	if pr := parsed.Filters.Price; pr != nil {
		fmt.Printf("  %s %s\n", ui.Bold("price range:"), formatPriceRange(pr))
	}
	if parsed.Filters.RatingMin > 0 {
		fmt.Printf("  %s %.1f\n", ui.Bold("rating above:"), parsed.Filters.RatingMin)
	}

	fmt.Printf("\n%s\n", ui.Bold("Resolved targets"))
	if len(targets) == 0 {
		fmt.Printf("  %s\n", ui.Error("none"))
	}
	for _, t := range targets {
		fmt.Printf("  %s (%s, confidence %.1f)\n", ui.Success(t.URL), t.SiteCategory, t.Confidence)
	}
	fmt.Println()
	return nil
}

func formatPriceRange(pr *models.PriceRange) string {
	switch {
	case pr.Min != nil && pr.Max != nil:
		return fmt.Sprintf("%.0f to %.0f", *pr.Min, *pr.Max)
	case pr.Min != nil:
		return fmt.Sprintf("above %.0f", *pr.Min)
	case pr.Max != nil:
		return fmt.Sprintf("under %.0f", *pr.Max)
	default:
		return "any"
	}
}
