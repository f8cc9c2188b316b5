package assets

import (
	"fmt"
	"sort"

	"github.com/crucial707/inventory/cmd/cli/config"
	"github.com/crucial707/inventory/cmd/cli/output"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/spf13/cobra"
)

// ==========================
// Init Assets
// ==========================
func InitAssets(rootCmd *cobra.Command) {

	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Inspect assets",
	}

	assetsCmd.AddCommand(
		listAssetsCmd(),
		showAssetCmd(),
		historyCmd(),
	)

	rootCmd.AddCommand(assetsCmd, statsCmd())
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ==========================
// LIST
// ==========================
func listAssetsCmd() *cobra.Command {
	var params query.AssetParams
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			list, err := sess.Svc.ListAssets(cmd.Context(), params)
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), list)
			}

			rows := make([][]interface{}, 0, len(list.Assets))
			for _, a := range list.Assets {
				rows = append(rows, []interface{}{
					a.ID, a.EquipmentType, a.Brand, a.Model, a.Status, a.Location, a.AssignedUserName, a.Area,
				})
			}
			output.RenderTableWithFooter(cmd.OutOrStdout(),
				[]string{"ID", "Type", "Brand", "Model", "Status", "Location", "Assigned To", "Area"},
				rows,
				[]interface{}{"", "", "", "", "", "", "Total", list.Total})
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&params.Location, "location", "", "filter by location")
	cmd.Flags().StringVar(&params.Area, "area", "", "filter by area")
	cmd.Flags().StringVar(&params.EquipmentType, "type", "", "filter by equipment type")
	cmd.Flags().StringVar(&params.Search, "search", "", "case-insensitive text search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

// ==========================
// SHOW
// ==========================
func showAssetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			a, err := sess.Svc.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), a)
			}

			ref := ""
			if a.CollaboratorRef != nil {
				ref = *a.CollaboratorRef
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]interface{}{
				{"ID", a.ID},
				{"Equipment Type", a.EquipmentType},
				{"Brand", a.Brand},
				{"Model", a.Model},
				{"Serial Number", a.SerialNumber},
				{"Status", a.Status},
				{"Location", a.Location},
				{"Assigned To", a.AssignedUserName},
				{"Collaborator", ref},
				{"Area", a.Area},
				{"Delivery Date", dateString(a.DeliveryDate)},
				{"Proof of Delivery", a.ProofOfDelivery},
				{"Proof of Exchange", a.ProofOfExchange},
				{"Proof of Return", a.ProofOfReturn},
				{"Notes", a.Notes},
				{"Updated", a.UpdatedAt.Format("2006-01-02 15:04")},
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// HISTORY
// ==========================
func historyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show the newest history entries of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			entries, err := sess.Svc.HistoryFor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history for", models.NormalizeAssetID(args[0]))
				return nil
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{e.Timestamp.Format("2006-01-02 15:04:05"), e.Kind, e.Description, e.Actor})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"When", "Kind", "Description", "Actor"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// STATS
// ==========================
func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Asset counts by status, type, area and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			stats, err := sess.Svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), stats)
			}

			for _, group := range []struct {
				title  string
				counts map[string]int
			}{
				{"Status", stats.ByStatus},
				{"Equipment Type", stats.ByEquipmentType},
				{"Area", stats.ByArea},
				{"Location", stats.ByLocation},
			} {
				output.RenderTableWithFooter(cmd.OutOrStdout(), []string{group.title, "Count"},
					countRows(group.counts), []interface{}{"Total", stats.Total})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

// countRows sorts by count descending, then key.
func countRows(counts map[string]int) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []interface{}{k, counts[k]})
	}
	return rows
}
