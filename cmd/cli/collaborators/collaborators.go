package collaborators

import (
	"github.com/crucial707/inventory/cmd/cli/config"
	"github.com/crucial707/inventory/cmd/cli/output"
	"github.com/crucial707/inventory/internal/query"
	"github.com/spf13/cobra"
)

// InitCollaborators registers the collaborators command group.
func InitCollaborators(rootCmd *cobra.Command) {
	collaboratorsCmd := &cobra.Command{
		Use:   "collaborators",
		Short: "Inspect collaborators",
	}
	collaboratorsCmd.AddCommand(listCmd(), showCmd())
	rootCmd.AddCommand(collaboratorsCmd)
}

func listCmd() *cobra.Command {
	var params query.CollaboratorParams
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collaborators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			list, err := sess.Svc.ListCollaborators(cmd.Context(), params)
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), list)
			}

			rows := make([][]interface{}, 0, len(list.Collaborators))
			for _, c := range list.Collaborators {
				rows = append(rows, []interface{}{c.EmployeeID, c.FullName, c.Email, c.Area, c.WorkMode, c.Status})
			}
			output.RenderTableWithFooter(cmd.OutOrStdout(),
				[]string{"Employee ID", "Full Name", "Email", "Area", "Work Mode", "Status"},
				rows,
				[]interface{}{"", "", "", "", "Total", list.Total})
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Area, "area", "", "filter by area")
	cmd.Flags().StringVar(&params.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&params.WorkMode, "work-mode", "", "filter by work mode")
	cmd.Flags().StringVar(&params.Search, "search", "", "case-insensitive text search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id or employee id]",
		Short: "Show a collaborator and the equipment they hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			detail, err := sess.Svc.GetCollaborator(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), detail)
			}

			output.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]interface{}{
				{"ID", detail.ID},
				{"Employee ID", detail.EmployeeID},
				{"Full Name", detail.FullName},
				{"Email", detail.Email},
				{"Phone", detail.Phone},
				{"Area", detail.Area},
				{"Work Mode", detail.WorkMode},
				{"Status", detail.Status},
				{"Notes", detail.Notes},
			})
			rows := make([][]interface{}, 0, len(detail.Equipment))
			for _, a := range detail.Equipment {
				rows = append(rows, []interface{}{a.ID, a.EquipmentType, a.Brand, a.Model, a.Status})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Asset", "Type", "Brand", "Model", "Status"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}
