package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var (
	sumOutputPath string
	sumJSON       bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show KPIs, the Top-N distribution and a preview of the filtered rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		v, err := svc.View(cmd.Context(), sel)
		if err != nil {
			return err
		}
		var out []byte
		if sumJSON {
			if out, err = utils.PrettyJSON(v); err != nil {
				return err
			}
		} else {
			out = []byte(v.Markdown())
		}
		if sumOutputPath != "" {
			if err := utils.SafeWriteFile(sumOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", sumOutputPath)
		} else {
			fmt.Println(string(out))
		}
		printNotices(v.Notices)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addSelectionFlags(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit JSON instead of Markdown")
}
