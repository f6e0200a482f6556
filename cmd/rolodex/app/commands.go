// Package app provides the entry point for the rolodex command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:               "rolodex",
	DisableAutoGenTag: true,
	Short:             "Rolodex is a demo contact manager with externalized authorization",
	Long: `Rolodex is a demonstration contact-management service. Authentication is
delegated to an OAuth2/PKCE identity provider and every contact operation is
gated by an external policy decision point; the service itself is the glue
between the two.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// NewRootCmd creates a new root command for the rolodex CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	// viper carries the flag so the logger can pick it up at Initialize time.
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
