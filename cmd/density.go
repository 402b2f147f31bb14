package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/render"
	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var (
	denHTMLPath string
	denJSON     bool
)

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Find the districts with the most and fewest establishments within the buffer radius",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		dv, err := svc.Density(cmd.Context(), sel)
		if err != nil {
			return err
		}
		printNotices(dv.Notices)
		if denJSON {
			b, err := utils.PrettyJSON(dv)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			fmt.Printf("Radius: %.0f m (%s)\n", dv.Radius, svc.Options().Projection.Name())
			for _, e := range dv.Extremes {
				fmt.Printf("%s\n  max: %s (%d)\n  min: %s (%d)\n", e.Group, e.Max.Name, e.Max.Density, e.Min.Name, e.Min.Density)
			}
		}
		if denHTMLPath != "" && len(dv.Extremes) > 0 {
			if err := utils.WriteWith(denHTMLPath, func(w io.Writer) error {
				return render.WritePage(w, render.ProximityMap(dv.Extremes, dv.Radius))
			}); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote proximity map to %s\n", denHTMLPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(densityCmd)
	addSelectionFlags(densityCmd)
	densityCmd.Flags().StringVar(&denHTMLPath, "html", "", "also write the proximity map to this HTML path")
	densityCmd.Flags().BoolVar(&denJSON, "json", false, "print as JSON")
}
