package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/hospimap-cli/internal/config"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set hospimap configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("source_url: %s\n", cfg.SourceURL)
		fmt.Printf("areas_path: %s\n", cfg.AreasPath)
		fmt.Printf("area_name_property: %s\n", cfg.AreaNameProperty)
		fmt.Printf("area_group_property: %s\n", cfg.AreaGroupProperty)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("preview_rows: %d\n", cfg.PreviewRows)
		fmt.Printf("buffer_radius_m: %.0f\n", cfg.BufferRadiusM)
		fmt.Printf("projection: %s\n", cfg.Projection)
		fmt.Printf("density_groups: %s\n", strings.Join(cfg.DensityGroups, ","))
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	positive := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "source_url":
		c.SourceURL = val
	case "areas_path":
		c.AreasPath = val
	case "area_name_property":
		c.AreaNameProperty = val
	case "area_group_property":
		c.AreaGroupProperty = val
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = positive()
	case "top_n":
		c.TopN, err = positive()
	case "preview_rows":
		c.PreviewRows, err = positive()
	case "buffer_radius_m":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil || f <= 0 {
			return fmt.Errorf("invalid radius for buffer_radius_m: %v", val)
		}
		c.BufferRadiusM = f
	case "projection":
		p, perr := geo.ParseProjection(val)
		if perr != nil {
			return perr
		}
		c.Projection = p.Name()
	case "density_groups":
		var groups []string
		for _, g := range strings.Split(val, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		c.DensityGroups = groups
	case "listen_addr":
		c.ListenAddr = val
	case "output_dir":
		c.OutputDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
