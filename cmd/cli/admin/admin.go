package admin

import (
	"errors"
	"fmt"

	"github.com/crucial707/inventory/cmd/cli/config"
	"github.com/crucial707/inventory/cmd/cli/output"
	appconfig "github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/db"
	"github.com/crucial707/inventory/internal/importer"
	"github.com/spf13/cobra"
)

// InitAdmin registers the import and migrate commands.
func InitAdmin(rootCmd *cobra.Command) {
	rootCmd.AddCommand(importCmd(), migrateCmd())
}

// ==========================
// IMPORT
// ==========================
func importCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Import collaborators and assets from a spreadsheet",
		Long: `Reads the "Collaborators" and "Inventory" sheets of an Excel workbook.
Rows are normalized like manual entries; duplicate keys are skipped and counted.
Existing data is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := importer.New(sess.Svc, sess.Logger, actor).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			output.RenderTable(cmd.OutOrStdout(),
				[]string{"Sheet", "Imported", "Duplicates", "Invalid", "Blank"},
				[][]interface{}{
					{importer.SheetCollaborators, res.Collaborators.Imported, res.Collaborators.Duplicates, res.Collaborators.Invalid, res.Collaborators.Blank},
					{importer.SheetInventory, res.Assets.Imported, res.Assets.Duplicates, res.Assets.Invalid, res.Assets.Blank},
				})
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "import", "actor recorded on creation history entries")
	return cmd
}

// ==========================
// MIGRATE
// ==========================
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.StoreDriver != appconfig.StorePostgres {
				return errors.New("migrate requires STORE_DRIVER=postgres")
			}
			if err := db.Run(cfg.DatabaseURL()); err != nil {
				return err
			}
			version, dirty, err := db.Version(cfg.DatabaseURL())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}
