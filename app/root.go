// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "estatedesk",
	Short: "EstateDesk is a real-estate CRM backend",
	Long: `EstateDesk is a real-estate CRM backend that exposes a JSON API
for managing builders, properties, categories, property types, users
and role/permission assignments.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
