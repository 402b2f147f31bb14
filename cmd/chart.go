package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/render"
	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var chartOutputPath string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the Top-N distribution as an HTML bar chart",
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
		printNotices(v.Notices)
		if v.GroupBy == "" {
			return nil
		}
		path := outputPath(chartOutputPath, "top.html")
		if err := utils.WriteWith(path, func(w io.Writer) error {
			return render.WritePage(w, render.TopBar(v.GroupBy, v.Top))
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote chart to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	addSelectionFlags(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutputPath, "output", "o", "", "output HTML path (default <output_dir>/top.html)")
}
