// internal/cli/sites.go
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/catalog"
	"github.com/law-makers/promptscrape/internal/ui"
)

// sitesCmd lists the sites the resolver knows how to target directly
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the known sites and their categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		list := append([]catalog.Site(nil), a.Catalog.Sites...)
		sort.Slice(list, func(i, j int) bool {
			if list[i].Category != list[j].Category {
				return list[i].Category < list[j].Category
			}
			return list[i].ID < list[j].ID
		})

		lastCategory := ""
		for _, site := range list {
			if site.Category != lastCategory {
				fmt.Printf("\n%s\n", ui.Bold(site.Category))
				lastCategory = site.Category
			}
			dynamic := ""
			if site.RequiresDynamic {
				dynamic = ui.Info(" (dynamic)")
			}
			fmt.Printf("  %s%s\n", ui.Success(site.ID), dynamic)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
