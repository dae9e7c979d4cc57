// Package cli provides the command-line interface for the promptscrape application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/law-makers/promptscrape/internal/app"
)

// SetApp stores the Application for command handlers
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the stored Application
func GetApp() *app.Application {
	return globalApp
}

// GetAppFromCmd retrieves the Application for the given command
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}

var globalApp *app.Application
