// internal/cli/quota.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/ui"
)

// quotaCmd shows the remaining daily scrape allowance
var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's remaining scrape allowance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		identity := localIdentity()
		remaining, err := a.Quota.Remaining(identity)
		if err != nil {
			return err
		}

		fmt.Printf("%s %d of %d scrapes remaining today for %s\n",
			ui.Bold("Quota:"), remaining, a.Config.QuotaLimit, identity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
