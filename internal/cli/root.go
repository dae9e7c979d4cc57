// internal/cli/root.go
package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/app"
	"github.com/law-makers/promptscrape/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "promptscrape",
	Short: "Scrape websites from a plain-language prompt",
	Long: `Promptscrape turns a natural-language request like "top 30 mobiles
from Flipkart under 20000 with price and rating" into resolved scrape
targets, drives stealth browser sessions against them, and returns
structured records.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		appCtx, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetAppFromCmd(cmd)
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := appCtx.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown error")
		}
		SetApp(cmd, nil)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("help", "h", false, "Help for promptscrape")
	rootCmd.Flags().Bool("version", false, "Version for promptscrape")
}
