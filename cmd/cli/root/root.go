package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = New()

// New builds an empty root command. Subcommand packages attach to it.
func New() *cobra.Command {
	return &cobra.Command{
		Use:           "inventa",
		Short:         "IT asset inventory CLI",
		Long:          "Operator commands for the asset inventory: spreadsheet import, migrations and read-only reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
