package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/render"
	"github.com/KaramelBytes/hospimap-cli/internal/utils"
)

var staticOutputDir string

var staticCmd = &cobra.Command{
	Use:   "static",
	Short: "Write the static PNG maps and the department chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}
		svc, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		sv, err := svc.Static(cmd.Context(), sel)
		if err != nil {
			return err
		}
		printNotices(sv.Notices)
		dir := staticOutputDir
		if dir == "" {
			dir = outputPath("", "")
		}
		outputs := []struct {
			name string
			draw func(io.Writer) error
		}{
			{"districts.png", func(w io.Writer) error {
				return render.ChoroplethPNG(w, "Hospitales por distrito", sv.Districts)
			}},
			{"districts_without_hospitals.png", func(w io.Writer) error {
				return render.HighlightPNG(w, "Distritos sin hospitales", sv.Districts, sv.Zero)
			}},
			{"top_districts.png", func(w io.Writer) error {
				return render.HighlightPNG(w, "Top distritos con más hospitales", sv.Districts, sv.TopDistricts)
			}},
			{"departments.png", func(w io.Writer) error {
				return render.BarsPNG(w, "Hospitales por departamento", sv.Departments)
			}},
		}
		for _, o := range outputs {
			path := filepath.Join(dir, o.name)
			err := utils.WriteWith(path, o.draw)
			if errors.Is(err, render.ErrNothingToDraw) {
				fmt.Printf("- Skipped %s (no data)\n", o.name)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", o.name, err)
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(staticCmd)
	addSelectionFlags(staticCmd)
	staticCmd.Flags().StringVar(&staticOutputDir, "output-dir", "", "directory for the PNG files (default output_dir)")
}
