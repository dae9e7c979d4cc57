// internal/cli/run.go
package cli

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/ui"
	"github.com/law-makers/promptscrape/internal/utils/headers"
	"github.com/law-makers/promptscrape/internal/utils/output"
	urlutil "github.com/law-makers/promptscrape/internal/utils/url"
	"github.com/law-makers/promptscrape/pkg/models"
)

var (
	runMaxItems  int
	runFormat    string
	runOutput    string
	runFields    []string
	runImages    bool
	runLinks     bool
	runSavePages string
	runHeaders   []string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Scrape the web from a plain-language prompt",
	Long: `Analyzes the prompt, resolves the websites to scrape, drives stealth
browser sessions against them and prints or saves the extracted records.`,
	Example: `  # Scrape a known marketplace
  promptscrape run "top 30 mobiles from Flipkart with price and rating"

  # Scrape a literal URL
  promptscrape run "get all job listings from https://example.com/careers"

  # Save results as CSV
  promptscrape run "latest tech news" --output=news.csv

  # Keep page snapshots as Markdown
  promptscrape run "laptops under 50000" --save-pages=./pages`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runMaxItems, "max-items", "n", 0, "Cap on returned records (default: inferred from prompt)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "json", "Output format: json, csv, or excel")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "File path to save results (extension may override --format)")
	runCmd.Flags().StringSliceVar(&runFields, "fields", nil, "Override the fields to extract (comma-separated)")
	runCmd.Flags().BoolVar(&runImages, "images", false, "Include image URLs in records")
	runCmd.Flags().BoolVar(&runLinks, "links", false, "Include item links in records")
	runCmd.Flags().StringVar(&runSavePages, "save-pages", "", "Directory to save page snapshots as Markdown")
	runCmd.Flags().StringArrayVarP(&runHeaders, "header", "H", []string{}, "Custom headers (e.g., -H \"X-Token: abc\")")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	if len(runHeaders) > 0 {
		a.Config.ExtraHeaders = headers.ParseHeaders(runHeaders)
	}

	req := models.ScrapeRequest{
		Prompt:   args[0],
		MaxItems: runMaxItems,
		Identity: localIdentity(),
		Admin:    os.Getenv("PROMPTSCRAPE_ADMIN") == "1",
	}

	reqs := models.Requirements{
		Fields:        runFields,
		IncludeImages: runImages,
		IncludeLinks:  runLinks,
		Format:        parseFormat(runFormat, runOutput),
		KeepHTML:      runSavePages != "",
	}

	bar := spinner("Scraping")
	start := time.Now()
	resp, err := a.Service.Scrape(cmd.Context(), req, reqs)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	printSummary(resp, time.Since(start))

	if runSavePages != "" {
		if err := savePages(resp.PageSnapshots, runSavePages); err != nil {
			log.Warn().Err(err).Msg("Failed to save page snapshots")
		}
	}

	if runOutput != "" {
		return saveResults(resp, reqs.Format, runOutput)
	}

	return nil
}

// spinner shows indeterminate progress on stderr while the pipeline runs
func spinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// parseFormat resolves the output format from the flag and file extension
func parseFormat(flag, outPath string) models.OutputFormat {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".csv":
		return models.FormatCSV
	case ".xlsx":
		return models.FormatExcel
	case ".json":
		return models.FormatJSON
	}

	switch strings.ToLower(flag) {
	case "csv":
		return models.FormatCSV
	case "excel", "xlsx":
		return models.FormatExcel
	default:
		return models.FormatJSON
	}
}

func printSummary(resp *models.ScrapeResponse, elapsed time.Duration) {
	fmt.Println()
	if resp.Success {
		fmt.Printf("%s %s\n", ui.Success("✓"), resp.Message)
	} else {
		fmt.Printf("%s %s\n", ui.Error("✗"), resp.Message)
	}
	fmt.Printf("%s %s\n", ui.Bold("Website:"), resp.Website)
	fmt.Printf("%s %d\n", ui.Bold("Records:"), resp.RecordCount)
	fmt.Printf("%s %s\n", ui.Bold("Elapsed:"), elapsed.Round(time.Millisecond))

	for _, failed := range resp.FailedWebsites {
		fmt.Printf("%s %s (%s)\n", ui.Error("failed:"), failed.URL, failed.ErrorKind)
	}

	// Preview the first few records
	preview := resp.Results
	if len(preview) > 5 {
		preview = preview[:5]
	}
	for i, rec := range preview {
		fmt.Printf("\n%s\n", ui.Info(fmt.Sprintf("--- record %d ---", i+1)))
		for _, field := range rec.Fields() {
			value, _ := rec.Get(field)
			if len(value) > 120 {
				value = value[:120] + "..."
			}
			fmt.Printf("  %s%s:%s %s\n", ui.ColorCyan, field, ui.ColorReset, value)
		}
	}
	if len(resp.Results) > len(preview) {
		fmt.Printf("\n%s\n", ui.Info(fmt.Sprintf("... and %d more", len(resp.Results)-len(preview))))
	}
	fmt.Println()
}

func saveResults(resp *models.ScrapeResponse, format models.OutputFormat, path string) error {
	var err error
	switch format {
	case models.FormatCSV:
		err = output.SaveCSV(resp.Results, path)
	case models.FormatExcel:
		err = output.SaveExcel(resp.Results, path)
	default:
		err = output.SaveJSON(resp, path)
	}
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Info().Str("file", path).Msg("Results saved")
	fmt.Printf("%s Saved to %s\n", ui.Success("✓"), path)
	return nil
}

// savePages exports the run's page snapshots as Markdown
func savePages(snaps map[string]string, dir string) error {
	if len(snaps) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for pageURL, html := range snaps {
		name := urlutil.Host(pageURL)
		if name == "" {
			name = "page"
		}
		path := filepath.Join(dir, name+".md")
		if err := output.SavePageMarkdown(pageURL, html, path); err != nil {
			return err
		}
		fmt.Printf("%s Snapshot saved to %s\n", ui.Success("✓"), path)
	}
	return nil
}

// localIdentity keys the quota ledger to the OS user
func localIdentity() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
