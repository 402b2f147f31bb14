package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/render"
	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var mapOutputPath string

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render interactive HTML maps",
}

var mapPointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Map the filtered establishments with valid coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		pv, err := svc.Points(cmd.Context(), sel)
		if err != nil {
			return err
		}
		printNotices(pv.Notices)
		if len(pv.Points) == 0 {
			return nil
		}
		markers := make([]render.Marker, len(pv.Points))
		for i, p := range pv.Points {
			title, details := pv.Popup(p)
			markers[i] = render.Marker{Lat: p.Lat, Lng: p.Lng, Title: title, Details: details}
		}
		path := outputPath(mapOutputPath, "points.html")
		if err := utils.WriteWith(path, func(w io.Writer) error {
			return render.WritePage(w, render.PointMap(markers))
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d points (center %.5f, %.5f) to %s\n", len(markers), pv.Lat, pv.Lng, path)
		return nil
	},
}

var mapChoroplethCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Map the number of establishments per district",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		areas, notices, err := svc.Choropleth(cmd.Context(), sel)
		if err != nil {
			return err
		}
		printNotices(notices)
		if areas == nil {
			return nil
		}
		path := outputPath(mapOutputPath, "choropleth.html")
		if err := utils.WriteWith(path, func(w io.Writer) error {
			return render.WritePage(w, render.ChoroplethMap(areas))
		}); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d districts to %s\n", len(areas), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	for _, c := range []*cobra.Command{mapPointsCmd, mapChoroplethCmd} {
		mapCmd.AddCommand(c)
		addSelectionFlags(c)
		c.Flags().StringVarP(&mapOutputPath, "output", "o", "", "output HTML path (default <output_dir>/<map>.html)")
	}
}
