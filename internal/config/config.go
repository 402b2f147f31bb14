package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/hospimap-cli/internal/aggregate"
	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
	"github.com/KaramelBytes/hospimap-cli/internal/source"
)

// DefaultSourceURL is the published sheet of Peruvian health establishments.
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/1xOkeqlTCWVifWmfcVlvo2geTjDvoTAS8DIvkaCW9u64/export?format=csv&gid=287328050"

// Global configuration structure.
type Global struct {
	SourceURL string `mapstructure:"source_url" yaml:"source_url"`
	// District boundaries (GeoJSON); geographic views are disabled when unreadable.
	AreasPath         string `mapstructure:"areas_path" yaml:"areas_path"`
	AreaNameProperty  string `mapstructure:"area_name_property" yaml:"area_name_property"`
	AreaGroupProperty string `mapstructure:"area_group_property" yaml:"area_group_property"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	TopN        int `mapstructure:"top_n" yaml:"top_n"`
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Proximity analysis
	BufferRadiusM float64  `mapstructure:"buffer_radius_m" yaml:"buffer_radius_m"`
	Projection    string   `mapstructure:"projection" yaml:"projection"`
	DensityGroups []string `mapstructure:"density_groups" yaml:"density_groups"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
}

// HTTPTimeout returns the fetch timeout as a duration.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".hospimap"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.hospimap/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags > env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HOSPIMAP")
	v.AutomaticEnv()

	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("areas_path", "districts.geojson")
	v.SetDefault("area_name_property", geo.DefaultNameProperty)
	v.SetDefault("area_group_property", geo.DefaultGroupProperty)
	v.SetDefault("http_timeout_sec", int(source.DefaultTimeout/time.Second))
	v.SetDefault("top_n", aggregate.DefaultTopN)
	v.SetDefault("preview_rows", dashboard.DefaultPreviewRows)
	v.SetDefault("buffer_radius_m", geo.DefaultRadiusMeters)
	v.SetDefault("projection", geo.ProjectionWebMercator)
	v.SetDefault("density_groups", append([]string(nil), geo.DefaultDensityGroups...))
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("output_dir", ".")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
