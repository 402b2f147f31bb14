package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var colJSON bool

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the normalized columns and the detected roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		out, err := svc.Columns(cmd.Context(), sel)
		if err != nil {
			return err
		}
		if colJSON {
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Println("Columns:")
		for _, c := range out.Names {
			fmt.Printf("  %-32s %s\n", c, out.Kinds[c])
		}
		fmt.Println("Roles:")
		for _, r := range columns.Roles() {
			col := out.Roles[r.String()]
			if col == "" {
				col = "-"
			}
			fmt.Printf("  %-10s %s\n", r, col)
		}
		printNotices(out.Notices)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	addSelectionFlags(columnsCmd)
	columnsCmd.Flags().BoolVar(&colJSON, "json", false, "print as JSON")
}
