package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Comma-separated HTTP/SOCKS5 proxies to rotate through")
	cmd.PersistentFlags().String("timeout", "30s", "Hard timeout per page navigation")
	cmd.PersistentFlags().String("user-agent", "", "Fixed user agent (default: random per session)")
	cmd.PersistentFlags().Int("concurrency", DefaultConcurrency, "Concurrent browser sessions")
	cmd.PersistentFlags().Bool("no-headless", false, "Show the browser window")
	cmd.PersistentFlags().Bool("no-robots", false, "Skip robots.txt checks for direct URLs")
}
